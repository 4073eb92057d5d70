package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nexus-tpv/internal/domain"
)

// ProductoInput alta manual o actualización de un producto (POST /api/productos).
// Stock es la cantidad a sumar al stock existente, no el stock absoluto.
type ProductoInput struct {
	Codigo string
	Nombre string
	Costo  decimal.Decimal
	Venta  decimal.Decimal
	Stock  int
}

// Normalize recorta espacios.
func (in *ProductoInput) Normalize() {
	in.Codigo = strings.TrimSpace(in.Codigo)
	in.Nombre = strings.TrimSpace(in.Nombre)
}

// Validate comprueba los campos obligatorios antes de enviar nada.
func (in ProductoInput) Validate() error {
	if in.Codigo == "" || in.Nombre == "" {
		return domain.Invalid("codigo", "Código y Nombre obligatorios")
	}
	if in.Costo.IsNegative() || in.Venta.IsNegative() {
		return domain.Invalid("venta", "Los precios no pueden ser negativos")
	}
	return nil
}

// GastoInput alta de gasto (POST /api/gastos).
type GastoInput struct {
	Concepto  string
	Monto     decimal.Decimal
	Categoria string
}

// DefaultCategoria categoría si no se indica otra.
const DefaultCategoria = "General"

// Normalize recorta espacios y aplica la categoría por defecto.
func (in *GastoInput) Normalize() {
	in.Concepto = strings.TrimSpace(in.Concepto)
	in.Categoria = strings.TrimSpace(in.Categoria)
	if in.Categoria == "" {
		in.Categoria = DefaultCategoria
	}
}

// Validate comprueba los campos obligatorios.
func (in GastoInput) Validate() error {
	if in.Concepto == "" || !in.Monto.IsPositive() {
		return domain.Invalid("monto", "Rellena los datos")
	}
	return nil
}
