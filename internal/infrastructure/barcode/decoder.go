// Package barcode lectura y generación de códigos: decodifica fotos enviadas
// desde el móvil (gozxing), genera etiquetas Code128 para productos y el QR de
// emparejamiento del asistente.
package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // fotos de cámara
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	_ "golang.org/x/image/webp" // fotos de Android

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain"
)

var _ ports.BarcodeDecoder = (*Decoder)(nil)

// MaxPixels tamaño máximo de foto aceptado (40 MP).
const MaxPixels = 40_000_000

// ErrNoBarcode la imagen no contiene ningún código legible.
var ErrNoBarcode = errors.New("no se encontró ningún código en la imagen")

// Decoder prueba los lectores de formatos de comercio (EAN/UPC, Code128,
// Code39, ITF) y QR sobre una imagen. Es seguro para uso concurrente.
type Decoder struct {
	maxPixels int
}

// NewDecoder crea el decodificador.
func NewDecoder() *Decoder {
	return &Decoder{maxPixels: MaxPixels}
}

// newReaders crea un juego de lectores por llamada: los de gozxing guardan
// estado entre decodificaciones.
func newReaders() []gozxing.Reader {
	return []gozxing.Reader{
		oned.NewEAN13Reader(),
		oned.NewEAN8Reader(),
		oned.NewUPCAReader(),
		oned.NewUPCEReader(),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
		oned.NewITFReader(),
		qrcode.NewQRCodeReader(),
	}
}

// DecodeImage decodifica PNG, JPEG o WebP y devuelve el texto y el formato ("EAN_13", "QR_CODE"...).
func (d *Decoder) DecodeImage(data []byte) (string, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("barcode: imagen no válida: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > d.maxPixels/cfg.Height {
		return "", "", fmt.Errorf("barcode: %dx%d: %w", cfg.Width, cfg.Height, domain.ErrImageTooLarge)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("barcode: imagen no válida: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", "", fmt.Errorf("barcode: preparar imagen: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	for _, r := range newReaders() {
		res, err := r.Decode(bmp, hints)
		if err == nil && res != nil && res.GetText() != "" {
			return res.GetText(), formatName(res.GetBarcodeFormat()), nil
		}
	}
	return "", "", ErrNoBarcode
}

func formatName(f gozxing.BarcodeFormat) string {
	switch f {
	case gozxing.BarcodeFormat_EAN_13:
		return "EAN_13"
	case gozxing.BarcodeFormat_EAN_8:
		return "EAN_8"
	case gozxing.BarcodeFormat_UPC_A:
		return "UPC_A"
	case gozxing.BarcodeFormat_UPC_E:
		return "UPC_E"
	case gozxing.BarcodeFormat_CODE_128:
		return "CODE_128"
	case gozxing.BarcodeFormat_CODE_39:
		return "CODE_39"
	case gozxing.BarcodeFormat_ITF:
		return "ITF"
	case gozxing.BarcodeFormat_QR_CODE:
		return "QR_CODE"
	default:
		return "UNKNOWN"
	}
}
