// Package view convierte el estado de la caja y las respuestas del backend en
// modelos de presentación ya formateados. Todas las funciones son puras: no
// hacen I/O y se pueden probar sin terminal ni servidor.
package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formatea importes, cantidades y fechas según la configuración regional.
type Formatter struct {
	printer  *message.Printer
	currency string
	loc      *time.Location
}

// NewFormatter crea un formateador. locale es una etiqueta BCP 47 ("es-ES");
// si no se reconoce se usa español. loc nil = hora local.
func NewFormatter(locale, currency string, loc *time.Location) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: currency,
		loc:      loc,
	}
}

// Number importe redondeado a 2 decimales sin símbolo.
func (f *Formatter) Number(d decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Money importe con símbolo, ej. "13,50 €".
func (f *Formatter) Money(d decimal.Decimal) string {
	if f.currency == "" {
		return f.Number(d)
	}
	return f.Number(d) + " " + f.currency
}

// Signed importe con signo explícito, ej. "+19,98 €" o "-12,00 €".
func (f *Formatter) Signed(d decimal.Decimal, sign string) string {
	return sign + f.Money(d.Abs())
}

// Units "N uds".
func (f *Formatter) Units(n int) string {
	return f.printer.Sprintf("%d uds", n)
}

// Integer entero con separadores de la configuración regional.
func (f *Formatter) Integer(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Date fecha local dd/mm/aaaa; cadena vacía si t es cero.
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format("02/01/2006")
}

// DateTime fecha y hora local.
func (f *Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format("02/01/2006 15:04:05")
}

// DayLabel "2024-01-05" → "05/01" (etiqueta del gráfico de ventas).
func DayLabel(dia string) string {
	parts := strings.Split(dia, "-")
	if len(parts) != 3 {
		return dia
	}
	return parts[2] + "/" + parts[1]
}
