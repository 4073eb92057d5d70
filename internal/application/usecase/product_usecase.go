package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// ProductUseCase mantenimiento del inventario. El stock nunca se calcula aquí:
// toda mutación es un POST al backend, que suma la cantidad indicada.
type ProductUseCase struct {
	catalog ports.CatalogGateway
	labels  ports.LabelRenderer
	log     *logger.Logger
}

// NewProductUseCase construye el caso de uso. labels puede ser nil si no se
// generan etiquetas.
func NewProductUseCase(catalog ports.CatalogGateway, labels ports.LabelRenderer, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{catalog: catalog, labels: labels, log: log}
}

// List lista productos; search vacío = todos.
func (uc *ProductUseCase) List(ctx context.Context, search string) ([]entity.Producto, error) {
	return uc.catalog.ListProducts(ctx, strings.TrimSpace(search))
}

// Save alta manual o suma de stock. Código y nombre son obligatorios; costo,
// venta y stock por defecto 0.
func (uc *ProductUseCase) Save(ctx context.Context, in dto.ProductoInput) (string, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}
	action, err := uc.catalog.SaveProduct(ctx, in)
	if err != nil {
		return "", fmt.Errorf("guardar producto %s: %w", in.Codigo, err)
	}
	uc.log.Info().Str("codigo", in.Codigo).Str("accion", action).Int("stock", in.Stock).Msg("producto guardado")
	return action, nil
}

// AdjustStock suma delta unidades al producto id. Se relee el listado para
// reenviar el resto de campos tal como están en el servidor.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, id int64, delta int) (*entity.Producto, error) {
	if delta == 0 {
		return nil, domain.Invalid("stock", "La variación de stock no puede ser 0")
	}
	list, err := uc.catalog.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	var found *entity.Producto
	for i := range list {
		if list[i].ID == id {
			found = &list[i]
			break
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}

	in := dto.ProductoInput{
		Codigo: found.Codigo,
		Nombre: found.Nombre,
		Costo:  found.Costo,
		Venta:  found.Venta,
		Stock:  delta,
	}
	if _, err := uc.catalog.SaveProduct(ctx, in); err != nil {
		return nil, fmt.Errorf("ajustar stock de %s: %w", found.Codigo, err)
	}
	found.Stock += delta
	return found, nil
}

// Delete elimina el producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.catalog.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("eliminar producto %d: %w", id, err)
	}
	uc.log.Info().Int64("id", id).Msg("producto eliminado")
	return nil
}

// Label genera la etiqueta Code128 del código indicado (PNG).
func (uc *ProductUseCase) Label(code string) ([]byte, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Invalid("codigo", "Código vacío")
	}
	if uc.labels == nil {
		return nil, fmt.Errorf("etiquetas no configuradas")
	}
	png, err := uc.labels.Code128PNG(code)
	if err != nil {
		return nil, fmt.Errorf("etiqueta %s: %w", code, err)
	}
	return png, nil
}
