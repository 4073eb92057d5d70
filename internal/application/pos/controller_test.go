package pos_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeCatalog struct {
	products map[string]entity.Producto
	err      error
	calls    int
}

func (f *fakeCatalog) ScanProduct(_ context.Context, code string) (*entity.Producto, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) ListProducts(context.Context, string) ([]entity.Producto, error) {
	return nil, nil
}

func (f *fakeCatalog) SaveProduct(context.Context, dto.ProductoInput) (string, error) {
	return "", nil
}

func (f *fakeCatalog) DeleteProduct(context.Context, int64) error { return nil }

type fakeSales struct {
	mu      sync.Mutex
	err     error
	sent    [][]entity.VentaItem
	release chan struct{} // si no es nil, SubmitSale espera a que se cierre
	entered chan struct{}
}

func (f *fakeSales) SubmitSale(_ context.Context, items []entity.VentaItem) (*entity.VentaConfirmada, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, items)
	if f.err != nil {
		return nil, f.err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Precio.Mul(decimal.NewFromInt(int64(it.Cantidad))))
	}
	return &entity.VentaConfirmada{Total: total}, nil
}

func (f *fakeSales) SalesHistory(context.Context) ([]entity.Venta, error) { return nil, nil }

type fakePrinter struct {
	printed []receipt.Receipt
	err     error
}

func (f *fakePrinter) Print(_ context.Context, r receipt.Receipt) (string, error) {
	f.printed = append(f.printed, r)
	return "tickets/" + r.Operacion + ".txt", f.err
}

type fakeMetrics struct {
	mu    sync.Mutex
	scans []string
	sales []string
}

func (m *fakeMetrics) ScanObserved(source, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, source+":"+result)
}

func (m *fakeMetrics) SaleObserved(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, result)
}

type fixture struct {
	ctrl    *pos.Controller
	catalog *fakeCatalog
	sales   *fakeSales
	printer *fakePrinter
	metrics *fakeMetrics
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		catalog: &fakeCatalog{products: map[string]entity.Producto{
			"A1": {ID: 1, Codigo: "A1", Nombre: "Pan", Venta: dec("5.00")},
			"B2": {ID: 2, Codigo: "B2", Nombre: "Sal", Venta: dec("3.50")},
		}},
		sales:   &fakeSales{},
		printer: &fakePrinter{},
		metrics: &fakeMetrics{},
	}
	f.ctrl = pos.NewController(pos.Deps{
		Catalog: f.catalog,
		Sales:   f.sales,
		Printer: f.printer,
		Metrics: f.metrics,
		Receipt: receipt.Settings{StoreName: "Nexus Store", CIF: "B12345678", TaxRate: dec("0.21")},
		Now:     func() time.Time { return fixedNow },
	})
	return f
}

func (f *fixture) scan(t *testing.T, codes ...string) {
	t.Helper()
	for _, c := range codes {
		_, err := f.ctrl.Scan(context.Background(), c, pos.SourceKeyboard)
		require.NoError(t, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escaneo
// ──────────────────────────────────────────────────────────────────────────────

func TestScan_AgrupaPorCodigo(t *testing.T) {
	f := newFixture()
	f.scan(t, "A1", "A1", "B2")

	lines := f.ctrl.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Cantidad)
	assert.True(t, dec("13.50").Equal(f.ctrl.Total()))
	assert.Equal(t, ticket.StateBuilding, f.ctrl.State())
}

func TestScan_NoEncontradoNoTocaElTicket(t *testing.T) {
	f := newFixture()
	f.scan(t, "A1")

	_, err := f.ctrl.Scan(context.Background(), "ZZ", pos.SourceKeyboard)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, f.ctrl.Lines(), 1)
	assert.Contains(t, f.metrics.scans, "teclado:not_found")
}

func TestScan_CodigoVacioNoConsulta(t *testing.T) {
	f := newFixture()
	_, err := f.ctrl.Scan(context.Background(), "   ", pos.SourceKeyboard)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.catalog.calls)
}

func TestScan_ErrorDeTransporte(t *testing.T) {
	f := newFixture()
	f.catalog.err = domain.ErrTransport

	_, err := f.ctrl.Scan(context.Background(), "A1", pos.SourceScanner)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Empty(t, f.ctrl.Lines())
	assert.Equal(t, []string{"lector:error"}, f.metrics.scans)
}

func TestKey_LectorRapidoCompletaCodigo(t *testing.T) {
	f := newFixture()
	at := fixedNow
	var code string
	var ok bool
	for _, r := range "A1X" {
		code, ok = f.ctrl.Key(scan.Key{Rune: r, At: at})
		assert.False(t, ok)
		at = at.Add(10 * time.Millisecond)
	}
	code, ok = f.ctrl.Key(scan.Key{Enter: true, At: at})
	require.True(t, ok)
	assert.Equal(t, "A1X", code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cobro
// ──────────────────────────────────────────────────────────────────────────────

func TestFinalize_TicketVacioNoEnviaNada(t *testing.T) {
	f := newFixture()

	co, err := f.ctrl.Finalize(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, co)
	assert.Empty(t, f.sales.sent)
	assert.Empty(t, f.printer.printed)
}

func TestFinalize_Exito(t *testing.T) {
	f := newFixture()
	f.scan(t, "A1", "A1", "B2")
	recv := dec("20")
	require.NoError(t, f.ctrl.SetReceived(&recv))
	assert.True(t, dec("6.50").Equal(f.ctrl.ChangePreview()))

	co, err := f.ctrl.Finalize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, co)

	require.Len(t, f.sales.sent, 1)
	sent := f.sales.sent[0]
	require.Len(t, sent, 2)
	assert.Equal(t, entity.VentaItem{Codigo: "A1", Nombre: "Pan", Precio: dec("5.00"), Cantidad: 2}, sent[0])

	assert.Equal(t, ticket.StateEmpty, f.ctrl.State())
	assert.Nil(t, f.ctrl.Received(), "el importe entregado se olvida tras cobrar")

	assert.True(t, dec("13.50").Equal(co.Receipt.Total), "el ticket sale de la instantánea, no del ticket vacío")
	assert.True(t, dec("6.50").Equal(co.Receipt.Cambio))
	require.Len(t, f.printer.printed, 1)
	assert.Equal(t, "tickets/"+co.Receipt.Operacion+".txt", co.Printed)
	assert.Equal(t, []string{"ok"}, f.metrics.sales)
}

func TestFinalize_RechazoConservaLineas(t *testing.T) {
	f := newFixture()
	f.scan(t, "A1", "B2", "A1")
	before := f.ctrl.Lines()
	f.sales.err = &domain.BusinessError{Status: 400, Message: "Stock insuficiente"}

	co, err := f.ctrl.Finalize(context.Background())
	assert.Nil(t, co)
	var be *domain.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Stock insuficiente", be.Message)

	assert.Equal(t, before, f.ctrl.Lines(), "mismas líneas en el mismo orden")
	assert.Equal(t, ticket.StateBuilding, f.ctrl.State())
	assert.Empty(t, f.printer.printed)
	assert.Equal(t, []string{"rejected"}, f.metrics.sales)

	// Se puede seguir escaneando y volver a cobrar.
	f.sales.err = nil
	f.scan(t, "B2")
	co, err = f.ctrl.Finalize(context.Background())
	require.NoError(t, err)
	assert.True(t, dec("17.00").Equal(co.Total))
}

func TestFinalize_ErrorDeImpresionNoAnulaLaVenta(t *testing.T) {
	f := newFixture()
	f.printer.err = errors.New("disco lleno")
	f.scan(t, "A1")

	co, err := f.ctrl.Finalize(context.Background())
	require.NoError(t, err)
	assert.EqualError(t, co.PrintErr, "disco lleno")
	assert.Equal(t, ticket.StateEmpty, f.ctrl.State())
}

func TestSetReceived_Negativo(t *testing.T) {
	f := newFixture()
	neg := dec("-1")
	assert.ErrorIs(t, f.ctrl.SetReceived(&neg), domain.ErrInvalidInput)
	assert.True(t, f.ctrl.ChangePreview().IsZero())
}

func TestSetReceived_CeroEsImporteExacto(t *testing.T) {
	f := newFixture()
	f.scan(t, "A1")
	zero := decimal.Zero
	require.NoError(t, f.ctrl.SetReceived(&zero))
	assert.Nil(t, f.ctrl.Received())

	co, err := f.ctrl.Finalize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, co)
	assert.True(t, co.Receipt.Total.Equal(co.Receipt.Entregado))
	assert.True(t, co.Receipt.Cambio.IsZero())
}

func TestClear_OlvidaEntregado(t *testing.T) {
	f := newFixture()
	f.scan(t, "A1")
	recv := dec("10")
	require.NoError(t, f.ctrl.SetReceived(&recv))

	require.NoError(t, f.ctrl.Clear())
	assert.Empty(t, f.ctrl.Lines())
	assert.Nil(t, f.ctrl.Received())
}
