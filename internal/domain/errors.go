package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrEmptyTicket        = errors.New("ticket vacío")
	ErrTicketBusy         = errors.New("el ticket se está cobrando")
	ErrFinalizeInProgress = errors.New("cobro en curso")
	ErrRejected           = errors.New("operación rechazada por el servidor")
	ErrTransport          = errors.New("error de comunicación con el servidor")
	ErrMalformedResponse  = errors.New("respuesta del servidor inválida")
	ErrImageTooLarge      = errors.New("la imagen es demasiado grande")
)

// BusinessError rechazo de negocio devuelto por el backend (success=false o {"error": ...}).
// Message se muestra tal cual al usuario.
type BusinessError struct {
	Status  int
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// Unwrap permite errors.Is(err, ErrRejected).
func (e *BusinessError) Unwrap() error { return ErrRejected }

// ValidationError falta o error en un dato antes de enviar la petición; la petición nunca sale.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
