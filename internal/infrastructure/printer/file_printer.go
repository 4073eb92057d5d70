package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

var _ ports.ReceiptPrinter = (*FilePrinter)(nil)

// Formatos de salida.
const (
	FormatText = "text"
	FormatPDF  = "pdf"
	FormatBoth = "both"
)

// PDFRenderer genera el PDF de un ticket.
type PDFRenderer interface {
	Render(r receipt.Receipt) ([]byte, error)
}

// FilePrinter escribe cada ticket en Dir como <fecha>_<operación>.txt y/o .pdf.
type FilePrinter struct {
	dir    string
	format string
	text   *TextRenderer
	pdf    PDFRenderer
	log    *logger.Logger
}

// NewFilePrinter construye la impresora. pdf puede ser nil si format es "text".
func NewFilePrinter(dir, format string, text *TextRenderer, pdf PDFRenderer, log *logger.Logger) (*FilePrinter, error) {
	switch format {
	case FormatText:
	case FormatPDF, FormatBoth:
		if pdf == nil {
			return nil, fmt.Errorf("printer: formato %q sin generador PDF", format)
		}
	default:
		return nil, fmt.Errorf("printer: formato desconocido %q", format)
	}
	return &FilePrinter{dir: dir, format: format, text: text, pdf: pdf, log: log}, nil
}

// Print guarda el ticket y devuelve las rutas escritas separadas por coma.
func (p *FilePrinter) Print(ctx context.Context, r receipt.Receipt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("printer: crear directorio: %w", err)
	}
	base := filepath.Join(p.dir, r.Fecha.Format("20060102-150405")+"_"+r.Operacion)

	var written []string
	if p.format == FormatText || p.format == FormatBoth {
		path := base + ".txt"
		if err := os.WriteFile(path, p.text.Render(r), 0o644); err != nil {
			return strings.Join(written, ", "), fmt.Errorf("printer: escribir %s: %w", path, err)
		}
		written = append(written, path)
	}
	if p.format == FormatPDF || p.format == FormatBoth {
		data, err := p.pdf.Render(r)
		if err != nil {
			return strings.Join(written, ", "), err
		}
		path := base + ".pdf"
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return strings.Join(written, ", "), fmt.Errorf("printer: escribir %s: %w", path, err)
		}
		written = append(written, path)
	}

	p.log.Debug().Strs("archivos", written).Str("operacion", r.Operacion).Msg("ticket guardado")
	return strings.Join(written, ", "), nil
}
