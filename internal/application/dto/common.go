package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Códigos de error del asistente móvil.
const (
	CodeMissingToken = "MISSING_TOKEN"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeBusy         = "TICKET_BUSY"
	CodeRejected     = "REJECTED"
	CodeUpstream     = "UPSTREAM"
	CodeNoBarcode    = "NO_BARCODE"
	CodeInternal     = "INTERNAL"
)
