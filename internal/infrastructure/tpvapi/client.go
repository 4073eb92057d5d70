// Package tpvapi es el adaptador REST del backend del TPV. Implementa todos los
// puertos de application/ports sobre net/http, serializando las peticiones en
// la forma que espera el servidor (campos en español, importes como números JSON).
package tpvapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa los puertos.
var (
	_ ports.CatalogGateway   = (*Client)(nil)
	_ ports.SaleGateway      = (*Client)(nil)
	_ ports.ExpenseGateway   = (*Client)(nil)
	_ ports.DashboardGateway = (*Client)(nil)
	_ ports.ImportGateway    = (*Client)(nil)
	_ ports.ConfigGateway    = (*Client)(nil)
)

// maxBodyBytes límite de lectura de respuestas.
const maxBodyBytes = 4 << 20

// Outcome etiquetas de resultado para métricas.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport"
	OutcomeMalformed = "malformed"
)

// RequestObserver recibe la duración y el resultado de cada llamada.
type RequestObserver interface {
	ObserveRequest(endpoint, outcome string, seconds float64)
}

// Client cliente HTTP del backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	observer   RequestObserver
}

// Option configura el cliente.
type Option func(*Client)

// WithHTTPClient sustituye el *http.Client (tests, proxys).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registra métricas por petición.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient construye el cliente. timeout 0 = sin límite (una petición colgada
// deja la operación esperando hasta que el contexto se cancele).
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// ScanProduct GET /api/producto/scan?code=
func (c *Client) ScanProduct(ctx context.Context, code string) (*entity.Producto, error) {
	path := "/api/producto/scan?code=" + url.QueryEscape(code)
	var w *productoWire
	if err := c.doJSON(ctx, "producto_scan", http.MethodGet, path, nil, &w); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	p := w.toEntity()
	return &p, nil
}

// ListProducts GET /api/productos[?search=]
func (c *Client) ListProducts(ctx context.Context, search string) ([]entity.Producto, error) {
	path := "/api/productos"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var ws []productoWire
	if err := c.doJSON(ctx, "productos_list", http.MethodGet, path, nil, &ws); err != nil {
		return nil, err
	}
	return productos(ws), nil
}

// SaveProduct POST /api/productos
func (c *Client) SaveProduct(ctx context.Context, in dto.ProductoInput) (string, error) {
	body := productoRequest{
		Codigo: in.Codigo,
		Nombre: in.Nombre,
		Costo:  in.Costo.InexactFloat64(),
		Venta:  in.Venta.InexactFloat64(),
		Stock:  in.Stock,
	}
	var out saveProductResponse
	if err := c.doJSON(ctx, "productos_save", http.MethodPost, "/api/productos", body, &out); err != nil {
		return "", err
	}
	return out.Action, nil
}

// DeleteProduct DELETE /api/productos/:id
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "productos_delete", http.MethodDelete, "/api/productos/"+strconv.FormatInt(id, 10), nil, nil)
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// SubmitSale POST /api/venta
func (c *Client) SubmitSale(ctx context.Context, items []entity.VentaItem) (*entity.VentaConfirmada, error) {
	req := ventaRequest{Items: make([]ventaItemRequest, 0, len(items))}
	for _, it := range items {
		req.Items = append(req.Items, ventaItemRequest{
			Codigo:   it.Codigo,
			Nombre:   it.Nombre,
			Precio:   it.Precio.InexactFloat64(),
			Cantidad: it.Cantidad,
		})
	}
	var out ventaResponse
	if err := c.doJSON(ctx, "venta", http.MethodPost, "/api/venta", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejection(http.StatusOK, out.Error)
	}
	return &entity.VentaConfirmada{Total: out.Total}, nil
}

// SalesHistory GET /api/ventas/historial
func (c *Client) SalesHistory(ctx context.Context) ([]entity.Venta, error) {
	var ws []ventaWire
	if err := c.doJSON(ctx, "ventas_historial", http.MethodGet, "/api/ventas/historial", nil, &ws); err != nil {
		return nil, err
	}
	out := make([]entity.Venta, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toEntity())
	}
	return out, nil
}

// ── Gastos ────────────────────────────────────────────────────────────────────

// ListExpenses GET /api/gastos
func (c *Client) ListExpenses(ctx context.Context) ([]entity.Gasto, error) {
	var ws []gastoWire
	if err := c.doJSON(ctx, "gastos_list", http.MethodGet, "/api/gastos", nil, &ws); err != nil {
		return nil, err
	}
	out := make([]entity.Gasto, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toEntity())
	}
	return out, nil
}

// AddExpense POST /api/gastos
func (c *Client) AddExpense(ctx context.Context, in dto.GastoInput) error {
	body := gastoRequest{Concepto: in.Concepto, Monto: in.Monto.InexactFloat64(), Categoria: in.Categoria}
	var out statusResponse
	if err := c.doJSON(ctx, "gastos_add", http.MethodPost, "/api/gastos", body, &out); err != nil {
		return err
	}
	if !out.Success {
		return rejection(http.StatusOK, out.Error)
	}
	return nil
}

// DeleteExpense DELETE /api/gastos/:id
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "gastos_delete", http.MethodDelete, "/api/gastos/"+strconv.FormatInt(id, 10), nil, nil)
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

// Dashboard GET /api/dashboard
func (c *Client) Dashboard(ctx context.Context) (*entity.Dashboard, error) {
	var w dashboardWire
	if err := c.doJSON(ctx, "dashboard", http.MethodGet, "/api/dashboard", nil, &w); err != nil {
		return nil, err
	}
	return w.toEntity(), nil
}

// ── Importación ───────────────────────────────────────────────────────────────

// UploadDeliveryNote POST /api/upload (multipart, campo "file").
func (c *Client) UploadDeliveryNote(ctx context.Context, filename string, r io.Reader) ([]entity.ProductoDetectado, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("tpvapi: crear multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("tpvapi: leer archivo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("tpvapi: cerrar multipart: %w", err)
	}

	var out uploadResponse
	if err := c.do(ctx, "upload", http.MethodPost, "/api/upload", &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejection(http.StatusOK, out.Error)
	}
	items := make([]entity.ProductoDetectado, 0, len(out.Productos))
	for _, p := range out.Productos {
		items = append(items, p.toEntity())
	}
	return items, nil
}

// ── Configuración ─────────────────────────────────────────────────────────────

// SetAPIKey POST /api/config/apikey
func (c *Client) SetAPIKey(ctx context.Context, key string) error {
	var out statusResponse
	if err := c.doJSON(ctx, "config_apikey", http.MethodPost, "/api/config/apikey", apiKeyRequest{Key: key}, &out); err != nil {
		return err
	}
	if !out.Success {
		return rejection(http.StatusOK, out.Error)
	}
	return nil
}

// LocalIP GET /api/config/ip
func (c *Client) LocalIP(ctx context.Context) (string, error) {
	var out ipResponse
	if err := c.doJSON(ctx, "config_ip", http.MethodGet, "/api/config/ip", nil, &out); err != nil {
		return "", err
	}
	if out.IP == "" {
		return "", fmt.Errorf("%w: ip vacía", domain.ErrMalformedResponse)
	}
	return out.IP, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

func (c *Client) doJSON(ctx context.Context, endpoint, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("tpvapi: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, endpoint, method, path, body, contentType, out)
}

// do ejecuta la petición y clasifica el resultado:
//   - error de red → domain.ErrTransport
//   - 404 → domain.ErrNotFound
//   - otro status ≥ 400 → *domain.BusinessError con el campo "error" del cuerpo
//   - 2xx con cuerpo no decodificable → domain.ErrMalformedResponse
func (c *Client) do(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string, out any) (err error) {
	start := time.Now()
	outcome := OutcomeOK
	requestID := uuid.NewString()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRequest(endpoint, outcome, time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		outcome = OutcomeTransport
		return fmt.Errorf("%w: crear request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = OutcomeTransport
		c.log.Warn().Err(err).Str("request_id", requestID).Str("endpoint", endpoint).Msg("petición al backend fallida")
		if ctx.Err() != nil {
			return fmt.Errorf("%w: cancelada: %v", domain.ErrTransport, ctx.Err())
		}
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		outcome = OutcomeTransport
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrTransport, err)
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend")

	if resp.StatusCode == http.StatusNotFound {
		outcome = OutcomeNotFound
		return domain.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		outcome = OutcomeRejected
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		return rejection(resp.StatusCode, e.Error)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		outcome = OutcomeMalformed
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, endpoint, err)
	}
	return nil
}

func rejection(status int, msg string) error {
	if msg == "" {
		msg = fmt.Sprintf("error del servidor (HTTP %d)", status)
	}
	return &domain.BusinessError{Status: status, Message: msg}
}

// IsTransport indica si err es un fallo de red.
func IsTransport(err error) bool { return errors.Is(err, domain.ErrTransport) }
