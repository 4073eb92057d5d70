package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta ticket cobrado tal como lo devuelve el historial.
type Venta struct {
	ID    int64
	Fecha time.Time
	Total decimal.Decimal
	Items []VentaItem
}

// VentaItem línea de una venta enviada o devuelta por el servidor.
type VentaItem struct {
	Codigo   string
	Nombre   string
	Precio   decimal.Decimal
	Cantidad int
}

// VentaConfirmada respuesta del servidor al registrar una venta.
type VentaConfirmada struct {
	Total decimal.Decimal
}
