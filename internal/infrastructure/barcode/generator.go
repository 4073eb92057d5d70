package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
)

var _ ports.LabelRenderer = (*Generator)(nil)

// Generator genera etiquetas y códigos QR en PNG.
type Generator struct {
	moduleWidth int // píxeles por módulo de barra
	barHeight   int
	quietZone   int // margen blanco alrededor del código
}

// NewGenerator generador con tamaños adecuados para etiquetas de estantería.
func NewGenerator() *Generator {
	return &Generator{moduleWidth: 3, barHeight: 90, quietZone: 30}
}

// Code128PNG etiqueta Code128 del código con margen blanco para los lectores.
func (g *Generator) Code128PNG(code string) ([]byte, error) {
	bc, err := code128.Encode(code)
	if err != nil {
		return nil, fmt.Errorf("barcode: codificar %q: %w", code, err)
	}
	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*g.moduleWidth, g.barHeight)
	if err != nil {
		return nil, fmt.Errorf("barcode: escalar: %w", err)
	}

	b := scaled.Bounds()
	canvas := image.NewGray(image.Rect(0, 0, b.Dx()+2*g.quietZone, b.Dy()+2*g.quietZone))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, b.Add(image.Pt(g.quietZone, g.quietZone)), scaled, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("barcode: codificar PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// QRPNG código QR en PNG de size×size píxeles.
func (g *Generator) QRPNG(content string, size int) ([]byte, error) {
	data, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("barcode: generar QR: %w", err)
	}
	return data, nil
}

// QRTerminal QR dibujado con medios bloques para mostrarlo en el terminal
// (dos filas de módulos por línea).
func (g *Generator) QRTerminal(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("barcode: generar QR: %w", err)
	}
	bits := q.Bitmap() // incluye la zona blanca; true = módulo negro
	var sb strings.Builder
	for y := 0; y < len(bits); y += 2 {
		for x := range bits[y] {
			top := bits[y][x]
			bottom := y+1 < len(bits) && bits[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune(' ')
			case top:
				sb.WriteRune('▄')
			case bottom:
				sb.WriteRune('▀')
			default:
				sb.WriteRune('█')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}
