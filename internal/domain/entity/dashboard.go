package entity

import "github.com/shopspring/decimal"

// Dashboard métricas del día calculadas por el servidor.
type Dashboard struct {
	VentasHoy    decimal.Decimal
	GastosHoy    decimal.Decimal
	BeneficioHoy decimal.Decimal
	LowStock     []Producto
	History      []VentasDia // últimos 7 días, orden ascendente
	Inventory    ValorInventario
	TopSelling   []MasVendido
}

// VentasDia total vendido en un día (Dia en formato YYYY-MM-DD).
type VentasDia struct {
	Dia   string
	Total decimal.Decimal
}

// ValorInventario valoración del stock actual.
type ValorInventario struct {
	TotalItems int
	ValorCosto decimal.Decimal
	ValorVenta decimal.Decimal
}

// MasVendido producto del top de ventas.
type MasVendido struct {
	Nombre   string
	Cantidad int
}
