package dto

import "github.com/jhoicas/nexus-tpv/internal/application/view"

// ScanRequest cuerpo de POST /api/caja/scan.
type ScanRequest struct {
	Code string `json:"code"`
}

// TicketLineDTO línea del ticket para el móvil.
type TicketLineDTO struct {
	Index    int    `json:"index"`
	Codigo   string `json:"codigo"`
	Nombre   string `json:"nombre"`
	Detail   string `json:"detail"`
	Subtotal string `json:"subtotal"`
}

// TicketDTO ticket en curso tal como lo pinta la página del móvil.
type TicketDTO struct {
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
	Lines    []TicketLineDTO `json:"lines"`
	Units    int             `json:"units"`
	Total    string          `json:"total"`
	Cobrando bool            `json:"cobrando"`
}

// ScanResponse resultado de un escaneo desde el móvil.
type ScanResponse struct {
	Codigo  string    `json:"codigo"`
	Nombre  string    `json:"nombre"`
	Formato string    `json:"formato,omitempty"` // sólo en escaneo por foto
	Message string    `json:"message"`
	Ticket  TicketDTO `json:"ticket"`
}

// NewTicketDTO convierte la vista del ticket.
func NewTicketDTO(v view.TicketView, cobrando bool) TicketDTO {
	out := TicketDTO{
		Empty:    v.Empty,
		Message:  v.Message,
		Lines:    make([]TicketLineDTO, 0, len(v.Lines)),
		Units:    v.Units,
		Total:    v.Total,
		Cobrando: cobrando,
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, TicketLineDTO{
			Index:    l.Index,
			Codigo:   l.Codigo,
			Nombre:   l.Nombre,
			Detail:   l.Detail,
			Subtotal: l.Subtotal,
		})
	}
	return out
}
