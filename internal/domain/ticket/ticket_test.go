package ticket_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
)

func prod(code, name, venta string) entity.Producto {
	return entity.Producto{Codigo: code, Nombre: name, Venta: decimal.RequireFromString(venta)}
}

func TestAddLine_EjemploEscaneo(t *testing.T) {
	s := ticket.NewSession()
	a1 := prod("A1", "Agua", "5.00")
	b2 := prod("B2", "Bollo", "3.50")

	require.NoError(t, s.AddLine(a1))
	require.NoError(t, s.AddLine(a1))
	require.NoError(t, s.AddLine(b2))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "A1", lines[0].Codigo)
	assert.Equal(t, 2, lines[0].Cantidad)
	assert.Equal(t, "10.00", lines[0].Subtotal().StringFixed(2))
	assert.Equal(t, "B2", lines[1].Codigo)
	assert.Equal(t, 1, lines[1].Cantidad)
	assert.Equal(t, "13.50", s.Total().StringFixed(2))
	assert.Equal(t, ticket.StateBuilding, s.State())
}

func TestAddLine_UnaLineaPorCodigo(t *testing.T) {
	s := ticket.NewSession()
	seq := []string{"X", "Y", "X", "Z", "Y", "X", "X"}
	want := map[string]int{}
	for _, code := range seq {
		require.NoError(t, s.AddLine(prod(code, code, "1.10")))
		want[code]++
	}

	lines := s.Lines()
	assert.Len(t, lines, len(want))
	seen := map[string]bool{}
	for _, l := range lines {
		assert.False(t, seen[l.Codigo], "código duplicado %s", l.Codigo)
		seen[l.Codigo] = true
		assert.Equal(t, want[l.Codigo], l.Cantidad)
	}
	assert.Equal(t, []string{"X", "Y", "Z"}, codes(lines), "orden de inserción")
}

func TestAddLine_PrecioFijadoAlPrimerEscaneo(t *testing.T) {
	s := ticket.NewSession()
	require.NoError(t, s.AddLine(prod("A1", "Agua", "5.00")))
	require.NoError(t, s.AddLine(prod("A1", "Agua", "6.00")))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Precio.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, "10.00", s.Total().StringFixed(2))
}

func TestTotal_IndependienteDelOrden(t *testing.T) {
	a := ticket.NewSession()
	b := ticket.NewSession()
	items := []entity.Producto{prod("1", "a", "0.10"), prod("2", "b", "0.20"), prod("3", "c", "19.99")}

	for _, p := range items {
		require.NoError(t, a.AddLine(p))
	}
	for i := len(items) - 1; i >= 0; i-- {
		require.NoError(t, b.AddLine(items[i]))
	}
	assert.True(t, a.Total().Equal(b.Total()))
	assert.Equal(t, "20.29", a.Total().String())
}

func TestTotal_SinErrorAcumulado(t *testing.T) {
	s := ticket.NewSession()
	for i := 0; i < 1000; i++ {
		require.NoError(t, s.AddLine(prod("C", "Chicle", "0.10")))
	}
	assert.True(t, s.Total().Equal(decimal.NewFromInt(100)))
}

func TestRemoveLine(t *testing.T) {
	s := ticket.NewSession()
	require.NoError(t, s.AddLine(prod("A", "a", "1")))
	require.NoError(t, s.AddLine(prod("B", "b", "2")))

	require.NoError(t, s.RemoveLine(0))
	assert.Equal(t, []string{"B"}, codes(s.Lines()))
	assert.Equal(t, ticket.StateBuilding, s.State())

	err := s.RemoveLine(5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, s.RemoveLine(0))
	assert.Equal(t, ticket.StateEmpty, s.State())
	assert.Zero(t, s.Len())
}

func TestClear(t *testing.T) {
	s := ticket.NewSession()
	require.NoError(t, s.AddLine(prod("A", "a", "1")))
	s.Clear()
	assert.Equal(t, ticket.StateEmpty, s.State())
	assert.True(t, s.Total().IsZero())
}

func TestBeginFinalize_TicketVacio(t *testing.T) {
	s := ticket.NewSession()
	_, err := s.BeginFinalize()
	assert.ErrorIs(t, err, domain.ErrEmptyTicket)
	assert.Equal(t, ticket.StateEmpty, s.State())
}

func TestFinalize_ExitoVaciaElTicket(t *testing.T) {
	s := ticket.NewSession()
	require.NoError(t, s.AddLine(prod("A", "a", "1.50")))

	snap, err := s.BeginFinalize()
	require.NoError(t, err)
	assert.Equal(t, ticket.StateFinalizing, s.State())
	assert.Equal(t, "1.50", snap.Total.StringFixed(2))

	assert.ErrorIs(t, s.AddLine(prod("B", "b", "1")), domain.ErrTicketBusy)
	assert.ErrorIs(t, s.RemoveLine(0), domain.ErrTicketBusy)
	_, err = s.BeginFinalize()
	assert.ErrorIs(t, err, domain.ErrFinalizeInProgress)

	s.CompleteFinalize()
	assert.Equal(t, ticket.StateEmpty, s.State())
	assert.Zero(t, s.Len())
	require.Len(t, snap.Lines, 1, "la instantánea no se ve afectada al vaciar")
}

func TestFinalize_FalloConservaLasLineas(t *testing.T) {
	s := ticket.NewSession()
	require.NoError(t, s.AddLine(prod("A", "a", "1")))
	require.NoError(t, s.AddLine(prod("B", "b", "2")))
	require.NoError(t, s.AddLine(prod("A", "a", "1")))
	before := s.Lines()

	_, err := s.BeginFinalize()
	require.NoError(t, err)
	s.FailFinalize()

	assert.Equal(t, ticket.StateBuilding, s.State())
	assert.Equal(t, before, s.Lines())
}

func codes(lines []ticket.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Codigo)
	}
	return out
}
