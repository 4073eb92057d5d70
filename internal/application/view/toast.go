package view

import (
	"errors"

	"github.com/jhoicas/nexus-tpv/internal/domain"
)

// ToastKind tipo de aviso.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast aviso breve al usuario.
type Toast struct {
	Kind    ToastKind
	Message string
}

// Success aviso de éxito.
func Success(msg string) Toast { return Toast{Kind: ToastSuccess, Message: msg} }

// Failure aviso de error.
func Failure(msg string) Toast { return Toast{Kind: ToastError, Message: msg} }

// Mensajes genéricos.
const (
	NotFoundMessage  = "No encontrado"
	BusyMessage      = "Cobro en curso, espera un momento"
	EmptySaleMessage = "Ticket vacío"
)

// ToastFromError traduce un error a aviso:
//   - rechazo de negocio y validación: mensaje literal;
//   - no encontrado: "No encontrado";
//   - ticket ocupado o vacío: mensaje fijo;
//   - transporte, respuesta inválida o cualquier otro: fallback.
func ToastFromError(err error, fallback string) Toast {
	var be *domain.BusinessError
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return Toast{}
	case errors.As(err, &be):
		return Failure(be.Message)
	case errors.As(err, &ve):
		return Failure(ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		return Failure(NotFoundMessage)
	case errors.Is(err, domain.ErrTicketBusy), errors.Is(err, domain.ErrFinalizeInProgress):
		return Failure(BusyMessage)
	case errors.Is(err, domain.ErrEmptyTicket):
		return Failure(EmptySaleMessage)
	default:
		return Failure(fallback)
	}
}
