// Package pos coordina la caja: el ticket en curso, el importe entregado, el
// desambiguador del lector y el cobro contra el backend.
//
// Controller no es seguro para uso concurrente. En la aplicación lo posee un
// Loop, que serializa en un único goroutine las órdenes del teclado, del lector
// y del asistente móvil. Las llamadas de red (búsqueda de producto y registro
// de la venta) se hacen fuera del bucle para que la caja siga respondiendo.
package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// Origen de un escaneo (etiqueta de métricas y logs).
const (
	SourceKeyboard  = "teclado"
	SourceScanner   = "lector"
	SourceAssistant = "movil"
	SourceCatalog   = "catalogo"
)

// Resultado de un escaneo o de un cobro (etiqueta de métricas).
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultBusy     = "busy"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Deps dependencias del controlador.
type Deps struct {
	Catalog ports.CatalogGateway
	Sales   ports.SaleGateway
	Printer ports.ReceiptPrinter // opcional
	Metrics ports.PosMetrics     // opcional
	Log     *logger.Logger
	Receipt receipt.Settings
	Scanner scan.Config
	Now     func() time.Time // nil = time.Now
}

// Checkout resultado de un cobro confirmado por el servidor.
type Checkout struct {
	Receipt  receipt.Receipt
	Total    decimal.Decimal // total confirmado por el servidor
	Printed  string          // ubicación del ticket impreso, si lo hay
	PrintErr error           // la venta está registrada aunque falle la impresión
}

// Controller estado de la caja.
type Controller struct {
	catalog  ports.CatalogGateway
	sales    ports.SaleGateway
	printer  ports.ReceiptPrinter
	metrics  ports.PosMetrics
	log      *logger.Logger
	settings receipt.Settings
	now      func() time.Time

	session  *ticket.Session
	received *decimal.Decimal
	keys     *scan.Disambiguator
}

// NewController crea la caja con un ticket vacío.
func NewController(d Deps) *Controller {
	c := &Controller{
		catalog:  d.Catalog,
		sales:    d.Sales,
		printer:  d.Printer,
		metrics:  d.Metrics,
		log:      d.Log,
		settings: d.Receipt,
		now:      d.Now,
		session:  ticket.NewSession(),
		keys:     scan.NewDisambiguator(d.Scanner),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.metrics == nil {
		c.metrics = nopMetrics{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c
}

// ── Ticket ────────────────────────────────────────────────────────────────────

// State estado del ticket.
func (c *Controller) State() ticket.State { return c.session.State() }

// Snapshot copia del ticket actual.
func (c *Controller) Snapshot() ticket.Snapshot { return c.session.Snapshot() }

// Lines líneas del ticket en orden de inserción.
func (c *Controller) Lines() []ticket.Line { return c.session.Lines() }

// Total total del ticket.
func (c *Controller) Total() decimal.Decimal { return c.session.Total() }

// Scan busca el código en el catálogo y añade una unidad al ticket. Si el
// producto no existe devuelve domain.ErrNotFound y el ticket no cambia.
func (c *Controller) Scan(ctx context.Context, code, source string) (*entity.Producto, error) {
	if err := c.checkScannable(code, source); err != nil {
		return nil, err
	}
	p, err := c.Lookup(ctx, code, source)
	if err != nil {
		return nil, err
	}
	if err := c.AddProduct(*p, source); err != nil {
		return nil, err
	}
	return p, nil
}

// Lookup consulta el producto sin tocar el ticket. Sólo usa el gateway, por lo
// que puede ejecutarse fuera del bucle de la caja.
func (c *Controller) Lookup(ctx context.Context, code, source string) (*entity.Producto, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Invalid("codigo", "Código vacío")
	}
	p, err := c.catalog.ScanProduct(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.metrics.ScanObserved(source, ResultNotFound)
			c.log.Info().Str("codigo", code).Str("origen", source).Msg("producto no encontrado")
			return nil, domain.ErrNotFound
		}
		c.metrics.ScanObserved(source, ResultError)
		c.log.Warn().Err(err).Str("codigo", code).Str("origen", source).Msg("error buscando producto")
		return nil, fmt.Errorf("buscar producto %q: %w", code, err)
	}
	return p, nil
}

// AddProduct añade una unidad de un producto ya conocido (catálogo rápido o
// resultado de Lookup).
func (c *Controller) AddProduct(p entity.Producto, source string) error {
	if err := c.session.AddLine(p); err != nil {
		if errors.Is(err, domain.ErrTicketBusy) {
			c.metrics.ScanObserved(source, ResultBusy)
		}
		return err
	}
	c.metrics.ScanObserved(source, ResultOK)
	c.log.Debug().Str("codigo", p.Codigo).Str("origen", source).Int("lineas", c.session.Len()).Msg("producto añadido")
	return nil
}

func (c *Controller) checkScannable(code, source string) error {
	if strings.TrimSpace(code) == "" {
		return domain.Invalid("codigo", "Código vacío")
	}
	if c.session.State() == ticket.StateFinalizing {
		c.metrics.ScanObserved(source, ResultBusy)
		return domain.ErrTicketBusy
	}
	return nil
}

// Key entrega una pulsación del lector. Devuelve el código completo cuando el
// desambiguador cierra un escaneo.
func (c *Controller) Key(k scan.Key) (string, bool) {
	return c.keys.Feed(k)
}

// RemoveLine elimina la línea index (base 0).
func (c *Controller) RemoveLine(index int) error {
	return c.session.RemoveLine(index)
}

// Clear vacía el ticket y olvida el importe entregado. No se puede vaciar
// mientras la venta viaja al servidor.
func (c *Controller) Clear() error {
	if c.session.State() == ticket.StateFinalizing {
		return domain.ErrTicketBusy
	}
	c.session.Clear()
	c.received = nil
	return nil
}

// ── Cobro ─────────────────────────────────────────────────────────────────────

// SetReceived fija el importe entregado por el cliente; nil o 0 = importe exacto.
func (c *Controller) SetReceived(v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return domain.Invalid("entregado", "El importe entregado no puede ser negativo")
	}
	if v != nil && v.IsZero() {
		v = nil
	}
	c.received = v
	return nil
}

// Received importe entregado, nil si no se ha indicado.
func (c *Controller) Received() *decimal.Decimal { return c.received }

// ChangePreview cambio a devolver según el importe entregado, nunca negativo.
func (c *Controller) ChangePreview() decimal.Decimal {
	if c.received == nil {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, c.received.Sub(c.session.Total()))
}

// Finalize cobra el ticket. Un ticket vacío no envía nada y devuelve (nil, nil).
// Si el servidor rechaza la venta el ticket conserva sus líneas.
func (c *Controller) Finalize(ctx context.Context) (*Checkout, error) {
	sale, err := c.BeginSale()
	if err != nil || sale == nil {
		return nil, err
	}
	conf, err := c.Submit(ctx, sale)
	return c.EndSale(ctx, sale, conf, err)
}

// Sale cobro en curso entre BeginSale y EndSale.
type Sale struct {
	snap     ticket.Snapshot
	received *decimal.Decimal
}

// Snapshot líneas enviadas al servidor.
func (s *Sale) Snapshot() ticket.Snapshot { return s.snap }

// BeginSale congela el ticket. Devuelve (nil, nil) si el ticket está vacío.
func (c *Controller) BeginSale() (*Sale, error) {
	snap, err := c.session.BeginFinalize()
	if errors.Is(err, domain.ErrEmptyTicket) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Sale{snap: snap, received: c.received}, nil
}

// Submit envía la venta. Sólo usa el gateway, por lo que puede ejecutarse fuera
// del bucle de la caja.
func (c *Controller) Submit(ctx context.Context, s *Sale) (*entity.VentaConfirmada, error) {
	items := make([]entity.VentaItem, 0, len(s.snap.Lines))
	for _, l := range s.snap.Lines {
		items = append(items, entity.VentaItem{
			Codigo:   l.Codigo,
			Nombre:   l.Nombre,
			Precio:   l.Precio,
			Cantidad: l.Cantidad,
		})
	}
	return c.sales.SubmitSale(ctx, items)
}

// EndSale aplica la respuesta del servidor al ticket.
func (c *Controller) EndSale(ctx context.Context, s *Sale, conf *entity.VentaConfirmada, err error) (*Checkout, error) {
	if err != nil {
		c.session.FailFinalize()
		result := ResultError
		if errors.Is(err, domain.ErrRejected) {
			result = ResultRejected
		}
		c.metrics.SaleObserved(result)
		c.log.Warn().Err(err).Int("lineas", len(s.snap.Lines)).Msg("venta no registrada")
		return nil, fmt.Errorf("registrar venta: %w", err)
	}

	c.session.CompleteFinalize()
	c.received = nil
	c.metrics.SaleObserved(ResultOK)

	rec := receipt.Build(s.snap, s.received, c.settings, c.now())
	out := &Checkout{Receipt: rec, Total: rec.Total}
	if conf != nil && !conf.Total.IsZero() {
		out.Total = conf.Total
	}
	c.log.Info().Str("operacion", rec.Operacion).Str("total", rec.Total.StringFixed(2)).Msg("venta registrada")

	if c.printer != nil {
		out.Printed, out.PrintErr = c.printer.Print(ctx, rec)
		if out.PrintErr != nil {
			c.log.Error().Err(out.PrintErr).Str("operacion", rec.Operacion).Msg("error imprimiendo ticket")
		}
	}
	return out, nil
}

type nopMetrics struct{}

func (nopMetrics) ScanObserved(string, string) {}
func (nopMetrics) SaleObserved(string)         {}
