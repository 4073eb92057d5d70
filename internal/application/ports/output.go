package ports

import (
	"context"

	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
)

// ReceiptPrinter imprime (o guarda) el ticket de una venta confirmada.
type ReceiptPrinter interface {
	Print(ctx context.Context, r receipt.Receipt) (location string, err error)
}

// LabelRenderer genera la etiqueta con código de barras de un producto.
type LabelRenderer interface {
	Code128PNG(code string) ([]byte, error)
}

// BarcodeDecoder extrae el código de una foto (PNG o JPEG).
type BarcodeDecoder interface {
	DecodeImage(data []byte) (text string, format string, err error)
}

// PosMetrics contadores de la caja.
type PosMetrics interface {
	ScanObserved(source, result string)
	SaleObserved(result string)
}
