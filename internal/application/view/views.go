package view

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
)

// Mensajes fijos de la interfaz.
const (
	EmptyTicketMessage = "Ticket vacío"
	StockOKMessage     = "Todo el inventario está bien"
)

// ── Ticket ────────────────────────────────────────────────────────────────────

// TicketLine una línea del ticket tal como se muestra.
type TicketLine struct {
	Index    int // posición 1-based mostrada al usuario
	Codigo   string
	Nombre   string
	Detail   string // "2 x 5,00 €"
	Subtotal string
}

// TicketView panel del ticket en curso.
type TicketView struct {
	Empty   bool
	Message string
	Lines   []TicketLine
	Units   int
	Total   string
}

// Ticket renderiza las líneas del ticket en orden de inserción.
func Ticket(lines []ticket.Line, f *Formatter) TicketView {
	v := TicketView{Total: f.Money(decimal.Zero)}
	if len(lines) == 0 {
		v.Empty = true
		v.Message = EmptyTicketMessage
		return v
	}
	total := decimal.Zero
	for i, l := range lines {
		v.Lines = append(v.Lines, TicketLine{
			Index:    i + 1,
			Codigo:   l.Codigo,
			Nombre:   l.Nombre,
			Detail:   strconv.Itoa(l.Cantidad) + " x " + f.Money(l.Precio),
			Subtotal: f.Money(l.Subtotal()),
		})
		v.Units += l.Cantidad
		total = total.Add(l.Subtotal())
	}
	v.Total = f.Money(total)
	return v
}

// ── Cambio ────────────────────────────────────────────────────────────────────

// ChangeView vista previa del cambio mientras se introduce el importe entregado.
type ChangeView struct {
	Total     string
	Entregado string
	Cambio    string
	Short     bool // el importe entregado no cubre el total
}

// Change calcula max(0, entregado − total). received nil = todavía no se ha indicado.
func Change(total decimal.Decimal, received *decimal.Decimal, f *Formatter) ChangeView {
	v := ChangeView{Total: f.Money(total), Cambio: f.Money(decimal.Zero)}
	if received == nil {
		return v
	}
	v.Entregado = f.Money(*received)
	diff := received.Sub(total)
	if diff.IsNegative() {
		v.Short = true
		return v
	}
	v.Cambio = f.Money(diff)
	return v
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

// Bar punto del histórico de ventas.
type Bar struct {
	Label string
	Value string
	Ratio float64 // 0..1 respecto al máximo de la serie
}

// TopItem producto más vendido.
type TopItem struct {
	Nombre   string
	Cantidad string
}

// StockAlert producto con stock bajo.
type StockAlert struct {
	Codigo string
	Nombre string
	Stock  string
}

// DashboardView resumen del día.
type DashboardView struct {
	VentasHoy         string
	GastosHoy         string
	BeneficioHoy      string
	BeneficioPositivo bool
	History           []Bar
	TopSelling        []TopItem
	ValorVenta        string
	ValorCosto        string
	TotalItems        string
	LowStock          []StockAlert
	StockMessage      string // sólo cuando no hay alertas
}

// Dashboard renderiza las métricas del día.
func Dashboard(d *entity.Dashboard, f *Formatter) DashboardView {
	v := DashboardView{
		VentasHoy:         f.Money(d.VentasHoy),
		GastosHoy:         f.Money(d.GastosHoy),
		BeneficioHoy:      f.Money(d.BeneficioHoy),
		BeneficioPositivo: !d.BeneficioHoy.IsNegative(),
		ValorVenta:        f.Money(d.Inventory.ValorVenta),
		ValorCosto:        f.Money(d.Inventory.ValorCosto),
		TotalItems:        f.Integer(d.Inventory.TotalItems),
	}

	maxTotal := decimal.Zero
	for _, h := range d.History {
		if h.Total.GreaterThan(maxTotal) {
			maxTotal = h.Total
		}
	}
	for _, h := range d.History {
		ratio := 0.0
		if maxTotal.IsPositive() {
			ratio = h.Total.Div(maxTotal).InexactFloat64()
		}
		v.History = append(v.History, Bar{Label: DayLabel(h.Dia), Value: f.Money(h.Total), Ratio: ratio})
	}

	for _, t := range d.TopSelling {
		v.TopSelling = append(v.TopSelling, TopItem{Nombre: t.Nombre, Cantidad: f.Units(t.Cantidad)})
	}

	if len(d.LowStock) == 0 {
		v.StockMessage = StockOKMessage
	}
	for _, p := range d.LowStock {
		v.LowStock = append(v.LowStock, StockAlert{Codigo: p.Codigo, Nombre: p.Nombre, Stock: f.Units(p.Stock)})
	}
	return v
}

// ── Inventario ────────────────────────────────────────────────────────────────

// InventoryRow fila del listado de inventario.
type InventoryRow struct {
	ID       int64
	Codigo   string
	Nombre   string
	Stock    int
	LowStock bool
	Costo    string
	Venta    string
}

// Inventory marca como stock bajo los productos con stock < lowStock.
func Inventory(ps []entity.Producto, lowStock int, f *Formatter) []InventoryRow {
	rows := make([]InventoryRow, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, InventoryRow{
			ID:       p.ID,
			Codigo:   p.Codigo,
			Nombre:   p.Nombre,
			Stock:    p.Stock,
			LowStock: p.Stock < lowStock,
			Costo:    f.Number(p.Costo),
			Venta:    f.Number(p.Venta),
		})
	}
	return rows
}

// ── Gastos ────────────────────────────────────────────────────────────────────

// ExpenseRow fila del listado de gastos.
type ExpenseRow struct {
	ID        int64
	Fecha     string
	Concepto  string
	Categoria string
	Monto     string // "-12,00 €"
}

// Expenses renderiza los gastos en el orden recibido.
func Expenses(gs []entity.Gasto, f *Formatter) []ExpenseRow {
	rows := make([]ExpenseRow, 0, len(gs))
	for _, g := range gs {
		rows = append(rows, ExpenseRow{
			ID:        g.ID,
			Fecha:     f.Date(g.Fecha),
			Concepto:  g.Concepto,
			Categoria: g.Categoria,
			Monto:     f.Signed(g.Monto, "-"),
		})
	}
	return rows
}

// ── Historial de ventas ───────────────────────────────────────────────────────

// SaleRow fila del historial.
type SaleRow struct {
	ID      string // "#12"
	Fecha   string
	Total   string // "+19,98 €"
	Summary string // "2x Pan, 1x Sal"
}

// SalesHistory renderiza el historial de ventas.
func SalesHistory(vs []entity.Venta, f *Formatter) []SaleRow {
	rows := make([]SaleRow, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, SaleRow{
			ID:      "#" + strconv.FormatInt(v.ID, 10),
			Fecha:   f.DateTime(v.Fecha),
			Total:   f.Signed(v.Total, "+"),
			Summary: ItemsSummary(v.Items),
		})
	}
	return rows
}

// ItemsSummary "2x Pan, 1x Sal".
func ItemsSummary(items []entity.VentaItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, strconv.Itoa(it.Cantidad)+"x "+it.Nombre)
	}
	return strings.Join(parts, ", ")
}

// ── Catálogo rápido ───────────────────────────────────────────────────────────

// CatalogCard tarjeta del catálogo rápido de la caja.
type CatalogCard struct {
	Codigo string
	Nombre string
	Venta  string
}

// QuickCatalog los primeros n productos como tarjetas.
func QuickCatalog(ps []entity.Producto, n int, f *Formatter) []CatalogCard {
	if n >= 0 && len(ps) > n {
		ps = ps[:n]
	}
	cards := make([]CatalogCard, 0, len(ps))
	for _, p := range ps {
		cards = append(cards, CatalogCard{Codigo: p.Codigo, Nombre: p.Nombre, Venta: f.Money(p.Venta)})
	}
	return cards
}

// ── Importador ────────────────────────────────────────────────────────────────

// DetectedRow fila de revisión de un albarán importado.
type DetectedRow struct {
	Index    int
	Codigo   string
	Nombre   string
	Unidades int
	Costo    string
	Venta    string
}

// Detected renderiza los productos extraídos; unidades no positivas se muestran como 1.
func Detected(items []entity.ProductoDetectado, f *Formatter) []DetectedRow {
	rows := make([]DetectedRow, 0, len(items))
	for i, p := range items {
		unidades := p.Unidades
		if unidades <= 0 {
			unidades = 1
		}
		rows = append(rows, DetectedRow{
			Index:    i + 1,
			Codigo:   p.Codigo,
			Nombre:   p.Nombre,
			Unidades: unidades,
			Costo:    f.Number(p.Costo),
			Venta:    f.Number(p.Venta),
		})
	}
	return rows
}
