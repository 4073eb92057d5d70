// Package pdf genera el ticket de venta en PDF para impresora de rollo.
//
// Layout del rollo de 80 mm:
//
//	┌──────────────────────────┐
//	│   Tienda / CIF / título  │
//	│   Nº operación + fecha   │
//	│ ──────────────────────── │
//	│ 2 x Producto      10,00  │
//	│ ──────────────────────── │
//	│ IVA: base y cuota        │
//	│ TOTAL / Entregado/Cambio │
//	│ ||||| código de barras   │
//	│   pie de página          │
//	└──────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
)

// Ancho del rollo y alto base en milímetros.
const (
	rollWidth  = 80
	baseHeight = 110
	lineHeight = 5
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// ReceiptPDF genera tickets en PDF con Maroto v2.
type ReceiptPDF struct {
	f *view.Formatter
}

// NewReceiptPDF construye el generador.
func NewReceiptPDF(f *view.Formatter) *ReceiptPDF { return &ReceiptPDF{f: f} }

// Render devuelve los bytes del PDF.
func (g *ReceiptPDF) Render(r receipt.Receipt) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(rollWidth, float64(baseHeight+lineHeight*len(r.Items))).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(r.Title+" "+r.Operacion, true).
		WithAuthor(r.StoreName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(r)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))
	m.AddRows(g.itemRows(r)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))
	m.AddRows(g.totalRows(r)...)
	m.AddRows(footerRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func centered(s string, size float64, style fontstyle.Type) core.Row {
	return row.New(size/2+1).Add(col.New(12).Add(text.New(s, props.Text{
		Size: size, Style: style, Align: align.Center,
	})))
}

func headerRows(r receipt.Receipt) []core.Row {
	return []core.Row{
		centered(r.StoreName, 11, fontstyle.Bold),
		centered("CIF: "+r.CIF, 8, fontstyle.Normal),
		centered(r.Title, 9, fontstyle.Bold),
		row.New(lineHeight).Add(
			col.New(5).Add(text.New("Nº: "+r.Operacion, props.Text{Size: 7})),
			col.New(7).Add(text.New(r.Fecha.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Color: colorGray,
			})),
		),
	}
}

func (g *ReceiptPDF) itemRows(r receipt.Receipt) []core.Row {
	rows := make([]core.Row, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, row.New(lineHeight).Add(
			col.New(8).Add(text.New(strconv.Itoa(it.Cantidad)+" x "+it.Nombre, props.Text{Size: 8})),
			col.New(4).Add(text.New(g.f.Money(it.Importe), props.Text{Size: 8, Align: align.Right})),
		))
	}
	return rows
}

func (g *ReceiptPDF) totalRows(r receipt.Receipt) []core.Row {
	pair := func(label, value string, style fontstyle.Type, size float64) core.Row {
		return row.New(size/2+1).Add(
			col.New(7).Add(text.New(label, props.Text{Size: size, Style: style})),
			col.New(5).Add(text.New(value, props.Text{Size: size, Style: style, Align: align.Right})),
		)
	}
	return []core.Row{
		pair("IVA "+r.TaxPercent()+" Base", g.f.Money(r.Base), fontstyle.Normal, 7),
		pair("Cuota", g.f.Money(r.Cuota), fontstyle.Normal, 7),
		pair("TOTAL", g.f.Money(r.Total), fontstyle.Bold, 11),
		pair("Entregado", g.f.Money(r.Entregado), fontstyle.Normal, 8),
		pair("Cambio", g.f.Money(r.Cambio), fontstyle.Normal, 8),
	}
}

func footerRows(r receipt.Receipt) []core.Row {
	return []core.Row{
		row.New(3),
		row.New(14).Add(col.New(12).Add(code.NewBar(r.Operacion, props.Barcode{
			Percent: 80,
			Center:  true,
		}))),
		centered(r.Footer, 9, fontstyle.Italic),
	}
}
