// Package scan separa las lecturas de un lector de códigos de barras tipo
// teclado de las pulsaciones humanas sueltas.
//
// Un lector "teclea" el código completo y un Enter con pausas de pocos
// milisegundos entre teclas. Cualquier pausa mayor que GapThreshold descarta lo
// acumulado hasta ese momento.
package scan

import (
	"time"
	"unicode"
)

// Valores por defecto.
const (
	DefaultGapThreshold = 50 * time.Millisecond
	DefaultMinLength    = 3
)

// Key una pulsación con su instante de llegada.
type Key struct {
	Rune  rune
	Enter bool
	At    time.Time
}

// Config parámetros del desambiguador.
type Config struct {
	GapThreshold time.Duration
	MinLength    int
}

// Disambiguator acumula pulsaciones y devuelve códigos completos.
type Disambiguator struct {
	cfg     Config
	buf     []rune
	lastKey time.Time
}

// NewDisambiguator crea el desambiguador; valores no positivos toman los defaults.
func NewDisambiguator(cfg Config) *Disambiguator {
	if cfg.GapThreshold <= 0 {
		cfg.GapThreshold = DefaultGapThreshold
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	return &Disambiguator{cfg: cfg}
}

// Feed procesa una pulsación. Devuelve el código y true cuando un Enter cierra
// un búfer de al menos MinLength caracteres.
func (d *Disambiguator) Feed(k Key) (string, bool) {
	if !d.lastKey.IsZero() && k.At.Sub(d.lastKey) > d.cfg.GapThreshold {
		d.buf = d.buf[:0]
	}
	d.lastKey = k.At

	if k.Enter {
		if len(d.buf) >= d.cfg.MinLength {
			code := string(d.buf)
			d.buf = d.buf[:0]
			return code, true
		}
		return "", false
	}
	if unicode.IsPrint(k.Rune) {
		d.buf = append(d.buf, k.Rune)
	}
	return "", false
}

// Pending contenido acumulado sin cerrar.
func (d *Disambiguator) Pending() string { return string(d.buf) }

// Reset descarta el búfer.
func (d *Disambiguator) Reset() {
	d.buf = d.buf[:0]
	d.lastKey = time.Time{}
}
