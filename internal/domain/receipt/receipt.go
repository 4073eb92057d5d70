// Package receipt construye la factura simplificada de una venta cobrada.
// Build es una función pura: no guarda estado entre llamadas y no redondea;
// el redondeo a 2 decimales lo hace cada renderizador al imprimir.
package receipt

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
)

// Title título fijo del documento.
const Title = "FACTURA SIMPLIFICADA"

// Settings datos de la tienda y del impuesto incluido en los precios.
type Settings struct {
	StoreName string
	CIF       string
	TaxRate   decimal.Decimal // ej. 0.21
	Footer    string
}

// Item línea impresa.
type Item struct {
	Cantidad int
	Nombre   string
	Importe  decimal.Decimal
}

// Receipt documento listo para renderizar.
type Receipt struct {
	StoreName string
	CIF       string
	Title     string
	Operacion string
	Fecha     time.Time
	Items     []Item
	TaxRate   decimal.Decimal
	Base      decimal.Decimal // Total / (1 + TaxRate)
	Cuota     decimal.Decimal // Total - Base
	Total     decimal.Decimal
	Entregado decimal.Decimal
	Cambio    decimal.Decimal // Entregado - Total
	Footer    string
}

// Build genera el ticket a partir de la instantánea cobrada. received nil
// significa "importe exacto" (Entregado = Total, Cambio = 0).
func Build(snap ticket.Snapshot, received *decimal.Decimal, s Settings, now time.Time) Receipt {
	total := snap.Total
	base := total
	if !s.TaxRate.IsZero() {
		base = total.Div(decimal.NewFromInt(1).Add(s.TaxRate))
	}

	entregado := total
	if received != nil {
		entregado = *received
	}

	items := make([]Item, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, Item{Cantidad: l.Cantidad, Nombre: l.Nombre, Importe: l.Subtotal()})
	}

	return Receipt{
		StoreName: s.StoreName,
		CIF:       s.CIF,
		Title:     Title,
		Operacion: OperationNumber(now),
		Fecha:     now,
		Items:     items,
		TaxRate:   s.TaxRate,
		Base:      base,
		Cuota:     total.Sub(base),
		Total:     total,
		Entregado: entregado,
		Cambio:    entregado.Sub(total),
		Footer:    s.Footer,
	}
}

// OperationNumber "T-" seguido de los 5 últimos dígitos del reloj en milisegundos.
func OperationNumber(now time.Time) string {
	return fmt.Sprintf("T-%05d", now.UnixMilli()%100000)
}

// TaxPercent IVA en porcentaje entero para la cabecera de impuestos, ej. "21%".
func (r Receipt) TaxPercent() string {
	return r.TaxRate.Mul(decimal.NewFromInt(100)).Round(2).String() + "%"
}
