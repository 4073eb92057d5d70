package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gasto registro de un gasto de caja.
type Gasto struct {
	ID        int64
	Fecha     time.Time
	Concepto  string
	Monto     decimal.Decimal
	Categoria string
}
