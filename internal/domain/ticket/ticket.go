// Package ticket modela la venta en curso del terminal: líneas escaneadas que
// todavía no se han cobrado.
//
// Ciclo de vida:
//
//	Empty ──AddLine──▶ Building ──BeginFinalize──▶ Finalizing
//	  ▲                   ▲                            │
//	  │                   └────────FailFinalize────────┤
//	  └──────────────────────CompleteFinalize──────────┘
//
// Clear vuelve a Empty desde cualquier estado. Session no es segura para uso
// concurrente: la posee un único goroutine (el bucle de la caja).
package ticket

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
)

// State estado de la sesión de ticket.
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateFinalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Line una línea del ticket. Precio queda fijado al escanear por primera vez.
type Line struct {
	Codigo   string
	Nombre   string
	Precio   decimal.Decimal
	Cantidad int
}

// Subtotal Precio × Cantidad sin redondear.
func (l Line) Subtotal() decimal.Decimal {
	return l.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Snapshot copia inmutable del ticket en el momento de cobrar.
type Snapshot struct {
	Lines []Line
	Total decimal.Decimal
}

// Session ticket en curso.
type Session struct {
	lines []Line
	state State
}

// NewSession crea un ticket vacío.
func NewSession() *Session {
	return &Session{state: StateEmpty}
}

// State estado actual.
func (s *Session) State() State { return s.state }

// Len número de líneas.
func (s *Session) Len() int { return len(s.lines) }

// Lines copia de las líneas en orden de inserción.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// AddLine añade una unidad del producto. Si el código ya está en el ticket suma
// una unidad a esa línea; el precio de la línea no cambia aunque el servidor
// haya cambiado el precio de venta desde el primer escaneo.
func (s *Session) AddLine(p entity.Producto) error {
	if s.state == StateFinalizing {
		return domain.ErrTicketBusy
	}
	if p.Codigo == "" {
		return domain.Invalid("codigo", "producto sin código")
	}
	for i := range s.lines {
		if s.lines[i].Codigo == p.Codigo {
			s.lines[i].Cantidad++
			s.state = StateBuilding
			return nil
		}
	}
	s.lines = append(s.lines, Line{
		Codigo:   p.Codigo,
		Nombre:   p.Nombre,
		Precio:   p.Venta,
		Cantidad: 1,
	})
	s.state = StateBuilding
	return nil
}

// RemoveLine elimina la línea en la posición index (base 0).
func (s *Session) RemoveLine(index int) error {
	if s.state == StateFinalizing {
		return domain.ErrTicketBusy
	}
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("%w: línea %d fuera de rango", domain.ErrInvalidInput, index)
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	if len(s.lines) == 0 {
		s.lines = nil
		s.state = StateEmpty
	}
	return nil
}

// Clear vacía el ticket sin condiciones.
func (s *Session) Clear() {
	s.lines = nil
	s.state = StateEmpty
}

// Total suma de Precio × Cantidad de todas las líneas.
func (s *Session) Total() decimal.Decimal {
	return total(s.lines)
}

// Snapshot copia inmutable del ticket actual.
func (s *Session) Snapshot() Snapshot {
	lines := s.Lines()
	return Snapshot{Lines: lines, Total: total(lines)}
}

// BeginFinalize pasa a Finalizing y devuelve la instantánea a enviar.
// Un ticket vacío devuelve ErrEmptyTicket y no cambia de estado.
func (s *Session) BeginFinalize() (Snapshot, error) {
	switch s.state {
	case StateEmpty:
		return Snapshot{}, domain.ErrEmptyTicket
	case StateFinalizing:
		return Snapshot{}, domain.ErrFinalizeInProgress
	}
	snap := s.Snapshot()
	s.state = StateFinalizing
	return snap, nil
}

// CompleteFinalize venta confirmada: el ticket queda vacío.
func (s *Session) CompleteFinalize() {
	if s.state != StateFinalizing {
		return
	}
	s.Clear()
}

// FailFinalize venta rechazada: el ticket vuelve a Building con las mismas líneas.
func (s *Session) FailFinalize() {
	if s.state != StateFinalizing {
		return
	}
	if len(s.lines) == 0 {
		s.state = StateEmpty
		return
	}
	s.state = StateBuilding
}

func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
