package entity

import "github.com/shopspring/decimal"

// Producto vista de solo lectura de un producto del backend.
// El cliente nunca calcula stock localmente; toda mutación pasa por el servidor.
type Producto struct {
	ID     int64
	Codigo string // código de barras / SKU, único
	Nombre string
	Costo  decimal.Decimal
	Venta  decimal.Decimal // precio de venta con IVA incluido
	Stock  int
}

// ProductoDetectado fila extraída de un albarán (foto o CSV) por el importador del servidor.
type ProductoDetectado struct {
	Codigo   string
	Nombre   string
	Costo    decimal.Decimal
	Venta    decimal.Decimal
	Unidades int
}
