package tpvapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
)

// ── Estructuras del contrato JSON del backend (campos en español) ─────────────

type productoWire struct {
	ID     int64           `json:"id"`
	Codigo flexString      `json:"codigo"`
	Nombre string          `json:"nombre"`
	Costo  decimal.Decimal `json:"costo"`
	Venta  decimal.Decimal `json:"venta"`
	Stock  int             `json:"stock"`
}

type productoRequest struct {
	Codigo string  `json:"codigo"`
	Nombre string  `json:"nombre"`
	Costo  float64 `json:"costo"`
	Venta  float64 `json:"venta"`
	Stock  int     `json:"stock"`
}

type saveProductResponse struct {
	Message string `json:"message"`
	Action  string `json:"action"`
}

type gastoWire struct {
	ID        int64           `json:"id"`
	Fecha     string          `json:"fecha"`
	Concepto  string          `json:"concepto"`
	Monto     decimal.Decimal `json:"monto"`
	Categoria string          `json:"categoria"`
}

type gastoRequest struct {
	Concepto  string  `json:"concepto"`
	Monto     float64 `json:"monto"`
	Categoria string  `json:"categoria"`
}

type ventaItemWire struct {
	Codigo   flexString      `json:"codigo"`
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Cantidad decimal.Decimal `json:"cantidad"`
}

type ventaWire struct {
	ID    int64           `json:"id"`
	Fecha string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
	Items []ventaItemWire `json:"items"`
}

type ventaItemRequest struct {
	Codigo   string  `json:"codigo"`
	Nombre   string  `json:"nombre"`
	Precio   float64 `json:"precio"`
	Cantidad int     `json:"cantidad"`
}

type ventaRequest struct {
	Items []ventaItemRequest `json:"items"`
}

type ventaResponse struct {
	Success bool            `json:"success"`
	Total   decimal.Decimal `json:"total"`
	Error   string          `json:"error"`
}

type dashboardWire struct {
	VentasHoy    decimal.Decimal `json:"ventas_hoy"`
	GastosHoy    decimal.Decimal `json:"gastos_hoy"`
	BeneficioHoy decimal.Decimal `json:"beneficio_hoy"`
	LowStock     []productoWire  `json:"low_stock"`
	History      []struct {
		Dia   string          `json:"dia"`
		Total decimal.Decimal `json:"total"`
	} `json:"history"`
	Inventory struct {
		TotalItems decimal.Decimal `json:"total_items"`
		ValorCosto decimal.Decimal `json:"valor_costo"`
		ValorVenta decimal.Decimal `json:"valor_venta"`
	} `json:"inventory"`
	TopSelling []struct {
		Nombre   string          `json:"nombre"`
		Cantidad decimal.Decimal `json:"cantidad"`
	} `json:"top_selling"`
}

type detectadoWire struct {
	Codigo   flexString      `json:"codigo"`
	Nombre   string          `json:"nombre"`
	Costo    decimal.Decimal `json:"costo"`
	Venta    decimal.Decimal `json:"venta"`
	Unidades decimal.Decimal `json:"unidades"`
}

type uploadResponse struct {
	Success   bool            `json:"success"`
	Productos []detectadoWire `json:"productos"`
	Error     string          `json:"error"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type apiKeyRequest struct {
	Key string `json:"key"`
}

type ipResponse struct {
	IP string `json:"ip"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// flexString acepta texto o número (los códigos extraídos por IA a veces llegan como número).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ── Conversión wire → dominio ─────────────────────────────────────────────────

func (w productoWire) toEntity() entity.Producto {
	return entity.Producto{
		ID:     w.ID,
		Codigo: strings.TrimSpace(string(w.Codigo)),
		Nombre: w.Nombre,
		Costo:  w.Costo,
		Venta:  w.Venta,
		Stock:  w.Stock,
	}
}

func productos(ws []productoWire) []entity.Producto {
	out := make([]entity.Producto, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toEntity())
	}
	return out
}

func (w gastoWire) toEntity() entity.Gasto {
	return entity.Gasto{
		ID:        w.ID,
		Fecha:     parseFecha(w.Fecha),
		Concepto:  w.Concepto,
		Monto:     w.Monto,
		Categoria: w.Categoria,
	}
}

func (w ventaWire) toEntity() entity.Venta {
	items := make([]entity.VentaItem, 0, len(w.Items))
	for _, it := range w.Items {
		items = append(items, entity.VentaItem{
			Codigo:   string(it.Codigo),
			Nombre:   it.Nombre,
			Precio:   it.Precio,
			Cantidad: int(it.Cantidad.IntPart()),
		})
	}
	return entity.Venta{
		ID:    w.ID,
		Fecha: parseFecha(w.Fecha),
		Total: w.Total,
		Items: items,
	}
}

func (w dashboardWire) toEntity() *entity.Dashboard {
	d := &entity.Dashboard{
		VentasHoy:    w.VentasHoy,
		GastosHoy:    w.GastosHoy,
		BeneficioHoy: w.BeneficioHoy,
		LowStock:     productos(w.LowStock),
		Inventory: entity.ValorInventario{
			TotalItems: int(w.Inventory.TotalItems.IntPart()),
			ValorCosto: w.Inventory.ValorCosto,
			ValorVenta: w.Inventory.ValorVenta,
		},
	}
	for _, h := range w.History {
		d.History = append(d.History, entity.VentasDia{Dia: h.Dia, Total: h.Total})
	}
	for _, t := range w.TopSelling {
		d.TopSelling = append(d.TopSelling, entity.MasVendido{Nombre: t.Nombre, Cantidad: int(t.Cantidad.IntPart())})
	}
	return d
}

func (w detectadoWire) toEntity() entity.ProductoDetectado {
	unidades := int(w.Unidades.IntPart())
	if unidades <= 0 {
		unidades = 1
	}
	return entity.ProductoDetectado{
		Codigo:   strings.TrimSpace(string(w.Codigo)),
		Nombre:   strings.TrimSpace(w.Nombre),
		Costo:    w.Costo,
		Venta:    w.Venta,
		Unidades: unidades,
	}
}

// fechaLayouts formatos de fecha que devuelve el backend (SQLite CURRENT_TIMESTAMP en UTC).
var fechaLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseFecha(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range fechaLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
