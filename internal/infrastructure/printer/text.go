// Package printer guarda los tickets de venta en disco en formato texto
// (impresora térmica de 42 columnas) y/o PDF.
package printer

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
)

// DefaultWidth columnas de un rollo de 72 mm con fuente estándar.
const DefaultWidth = 42

// TextRenderer ticket en texto plano de ancho fijo.
type TextRenderer struct {
	f     *view.Formatter
	width int
}

// NewTextRenderer crea el renderizador; width <= 0 usa DefaultWidth.
func NewTextRenderer(f *view.Formatter, width int) *TextRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &TextRenderer{f: f, width: width}
}

// Render texto del ticket, una línea por fila, terminado en salto de línea.
func (t *TextRenderer) Render(r receipt.Receipt) []byte {
	var b bytes.Buffer
	sep := strings.Repeat("-", t.width)

	t.center(&b, r.StoreName)
	t.center(&b, "CIF: "+r.CIF)
	t.center(&b, r.Title)
	t.pair(&b, "Nº: "+r.Operacion, r.Fecha.Format("02/01/2006 15:04"))
	b.WriteString(sep + "\n")

	for _, it := range r.Items {
		t.pair(&b, strconv.Itoa(it.Cantidad)+" x "+it.Nombre, t.f.Money(it.Importe))
	}
	b.WriteString(sep + "\n")

	t.pair(&b, "IVA "+r.TaxPercent()+" Base", t.f.Money(r.Base))
	t.pair(&b, "Cuota", t.f.Money(r.Cuota))
	t.pair(&b, "TOTAL", t.f.Money(r.Total))
	t.pair(&b, "Entregado", t.f.Money(r.Entregado))
	t.pair(&b, "Cambio", t.f.Money(r.Cambio))
	b.WriteString(sep + "\n")
	t.center(&b, r.Footer)
	return b.Bytes()
}

func (t *TextRenderer) center(b *bytes.Buffer, s string) {
	s = truncate(s, t.width)
	pad := (t.width - utf8.RuneCountInString(s)) / 2
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

// pair etiqueta a la izquierda y valor a la derecha; la etiqueta se recorta si no cabe.
func (t *TextRenderer) pair(b *bytes.Buffer, label, value string) {
	vw := utf8.RuneCountInString(value)
	label = truncate(label, t.width-vw-1)
	gap := t.width - utf8.RuneCountInString(label) - vw
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label + strings.Repeat(" ", gap) + value + "\n")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
