// Package scanner lee un lector de códigos de barras conectado como puerto
// serie o dispositivo de caracteres y convierte cada carácter en una pulsación
// con su instante de llegada.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
)

// Reader fuente de pulsaciones.
type Reader struct {
	src *bufio.Reader
	now func() time.Time
}

// NewReader envuelve r. now nil = time.Now.
func NewReader(r io.Reader, now func() time.Time) *Reader {
	if now == nil {
		now = time.Now
	}
	return &Reader{src: bufio.NewReader(r), now: now}
}

// Open abre el dispositivo del lector en sólo lectura.
func Open(device string) (*os.File, error) {
	f, err := os.OpenFile(device, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("scanner: abrir %s: %w", device, err)
	}
	return f, nil
}

// Run envía una scan.Key por carácter hasta fin de datos o cancelación de ctx.
// '\r' y '\n' se convierten en Enter. Cierra keys al terminar.
func (r *Reader) Run(ctx context.Context, keys chan<- scan.Key) error {
	defer close(keys)
	for {
		ch, _, err := r.src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("scanner: leer: %w", err)
		}
		k := scan.Key{At: r.now()}
		if ch == '\r' || ch == '\n' {
			k.Enter = true
		} else {
			k.Rune = ch
		}
		select {
		case keys <- k:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
