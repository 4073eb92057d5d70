package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/nexus-tpv/internal/interfaces/http"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]entity.Producto
	err      error
}

func (s *stubCatalog) ScanProduct(_ context.Context, code string) (*entity.Producto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubCatalog) ListProducts(context.Context, string) ([]entity.Producto, error) {
	return nil, nil
}

func (s *stubCatalog) SaveProduct(context.Context, dto.ProductoInput) (string, error) {
	return "", nil
}

func (s *stubCatalog) DeleteProduct(context.Context, int64) error { return nil }

func (s *stubCatalog) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// stubSales bloquea SubmitSale hasta que se cierra release.
type stubSales struct {
	entered chan struct{}
	release chan struct{}
}

func (s *stubSales) SubmitSale(_ context.Context, items []entity.VentaItem) (*entity.VentaConfirmada, error) {
	close(s.entered)
	<-s.release
	return &entity.VentaConfirmada{Total: decimal.NewFromInt(5)}, nil
}

func (s *stubSales) SalesHistory(context.Context) ([]entity.Venta, error) { return nil, nil }

type stubDecoder struct{}

func (stubDecoder) DecodeImage(data []byte) (string, string, error) {
	switch string(data) {
	case "foto-A1":
		return "A1", "EAN_13", nil
	case "foto-enorme":
		return "", "", fmt.Errorf("barcode: 100000x100000: %w", domain.ErrImageTooLarge)
	}
	return "", "", errors.New("sin código")
}

type stubQR struct{}

func (stubQR) QRPNG(content string, _ int) ([]byte, error) { return []byte("qr:" + content), nil }

// ──────────────────────────────────────────────────────────────────────────────
// Montaje
// ──────────────────────────────────────────────────────────────────────────────

type assistant struct {
	app     *fiber.App
	loop    *pos.Loop
	catalog *stubCatalog
	sales   *stubSales
	token   string
}

func newAssistant(t *testing.T) *assistant {
	t.Helper()
	a := &assistant{
		catalog: &stubCatalog{products: map[string]entity.Producto{
			"A1": {ID: 1, Codigo: "A1", Nombre: "Pan", Venta: decimal.RequireFromString("5.00")},
		}},
		sales: &stubSales{entered: make(chan struct{}), release: make(chan struct{})},
		token: pairingToken(t),
	}
	m := metrics.New()
	ctrl := pos.NewController(pos.Deps{Catalog: a.catalog, Sales: a.sales, Metrics: m})
	a.loop = pos.NewLoop(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	a.app = apphttp.NewApp("test", "", logger.Nop())
	apphttp.Router(a.app, apphttp.RouterDeps{
		Loop:        a.loop,
		Decoder:     stubDecoder{},
		QR:          stubQR{},
		Formatter:   view.NewFormatter("es-ES", "€", time.UTC),
		MobileURL:   "http://192.168.1.20:5050/movil?token=" + a.token,
		TokenSecret: testSecret,
		Metrics:     m.Handler(),
		Log:         logger.Nop(),
	})
	return a
}

func (a *assistant) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+a.token)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *assistant) scan(t *testing.T, code string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/caja/scan", strings.NewReader(`{"code":"`+code+`"}`))
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req)
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas públicas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	a := newAssistant(t)
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMobilePage(t *testing.T) {
	a := newAssistant(t)
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/movil", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "/api/caja/scan")
}

func TestMobileQR_RequiereEmparejar(t *testing.T) {
	a := newAssistant(t)
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/movil/qr", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, httptest.NewRequest(http.MethodGet, "/movil/qr", nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "qr:http://192.168.1.20:5050/movil?token="+a.token, string(body))
}

func TestTicket_SinToken(t *testing.T) {
	a := newAssistant(t)
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/api/caja/ticket", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ticket
// ──────────────────────────────────────────────────────────────────────────────

func TestTicket_Vacio(t *testing.T) {
	a := newAssistant(t)
	tk := decodeJSON[dto.TicketDTO](t, a.do(t, httptest.NewRequest(http.MethodGet, "/api/caja/ticket", nil)))

	assert.True(t, tk.Empty)
	assert.Equal(t, view.EmptyTicketMessage, tk.Message)
	assert.Empty(t, tk.Lines)
	assert.Equal(t, "0,00 €", tk.Total)
}

func TestScan_AgrupaYDevuelveTicket(t *testing.T) {
	a := newAssistant(t)
	resp := a.scan(t, "A1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeJSON[dto.ScanResponse](t, resp)
	assert.Equal(t, "Añadido: Pan", first.Message)

	resp = a.scan(t, " A1 ")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeJSON[dto.ScanResponse](t, resp)

	require.Len(t, second.Ticket.Lines, 1)
	assert.Equal(t, "2 x 5,00 €", second.Ticket.Lines[0].Detail)
	assert.Equal(t, "10,00 €", second.Ticket.Total)
	assert.Equal(t, 2, second.Ticket.Units)
}

func TestScan_Errores(t *testing.T) {
	a := newAssistant(t)

	resp := a.scan(t, "ZZ")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, view.NotFoundMessage, decodeJSON[dto.ErrorResponse](t, resp).Message)

	resp = a.scan(t, "  ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	a.catalog.fail(&domain.BusinessError{Status: 400, Message: "Producto bloqueado"})
	resp = a.scan(t, "A1")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Producto bloqueado", decodeJSON[dto.ErrorResponse](t, resp).Message)

	a.catalog.fail(domain.ErrTransport)
	resp = a.scan(t, "A1")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Error al escanear", decodeJSON[dto.ErrorResponse](t, resp).Message)
}

func TestScan_JSONInvalido(t *testing.T) {
	a := newAssistant(t)
	req := httptest.NewRequest(http.MethodPost, "/api/caja/scan", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	resp := a.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func photoRequest(t *testing.T, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(apphttp.PhotoField, "foto.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/caja/scan-image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestScanImage(t *testing.T) {
	a := newAssistant(t)

	resp := a.do(t, photoRequest(t, "foto-A1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[dto.ScanResponse](t, resp)
	assert.Equal(t, "A1", out.Codigo)
	assert.Equal(t, "EAN_13", out.Formato)
	assert.Len(t, out.Ticket.Lines, 1)

	resp = a.do(t, photoRequest(t, "borrosa"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, dto.CodeNoBarcode, decodeJSON[dto.ErrorResponse](t, resp).Code)

	resp = a.do(t, httptest.NewRequest(http.MethodPost, "/api/caja/scan-image", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanImage_ResolucionExcesiva(t *testing.T) {
	a := newAssistant(t)

	resp := a.do(t, photoRequest(t, "foto-enorme"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, dto.CodeBadRequest, decodeJSON[dto.ErrorResponse](t, resp).Code)

	tk := decodeJSON[dto.TicketDTO](t, a.do(t, httptest.NewRequest(http.MethodGet, "/api/caja/ticket", nil)))
	assert.Empty(t, tk.Lines)
}

func TestRemoveLine(t *testing.T) {
	a := newAssistant(t)
	require.Equal(t, http.StatusOK, a.scan(t, "A1").StatusCode)

	resp := a.do(t, httptest.NewRequest(http.MethodDelete, "/api/caja/lineas/5", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = a.do(t, httptest.NewRequest(http.MethodDelete, "/api/caja/lineas/0", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = a.do(t, httptest.NewRequest(http.MethodDelete, "/api/caja/lineas/1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeJSON[dto.TicketDTO](t, resp).Empty)
}

// Mientras la venta viaja al servidor el móvil no puede tocar el ticket.
func TestScan_DuranteElCobro(t *testing.T) {
	a := newAssistant(t)
	require.Equal(t, http.StatusOK, a.scan(t, "A1").StatusCode)

	checkoutDone := make(chan error, 1)
	go func() {
		_, err := a.loop.Checkout(context.Background())
		checkoutDone <- err
	}()
	<-a.sales.entered

	resp := a.scan(t, "A1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, view.BusyMessage, decodeJSON[dto.ErrorResponse](t, resp).Message)

	tk := decodeJSON[dto.TicketDTO](t, a.do(t, httptest.NewRequest(http.MethodGet, "/api/caja/ticket", nil)))
	assert.True(t, tk.Cobrando)

	close(a.sales.release)
	require.NoError(t, <-checkoutDone)

	tk = decodeJSON[dto.TicketDTO](t, a.do(t, httptest.NewRequest(http.MethodGet, "/api/caja/ticket", nil)))
	assert.True(t, tk.Empty)
	assert.False(t, tk.Cobrando)
}

func TestMetrics(t *testing.T) {
	a := newAssistant(t)
	require.Equal(t, http.StatusOK, a.scan(t, "A1").StatusCode)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `tpv_caja_scans_total{result="ok",source="movil"} 1`)
}
