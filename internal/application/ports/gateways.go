package ports

import (
	"context"
	"io"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
)

// Puertos de salida hacia el backend del TPV. El adaptador REST vive en
// infrastructure/tpvapi; los tests usan dobles en memoria.
//
// Contrato de errores común a todos los métodos:
//   - domain.ErrTransport          fallo de red o de transporte.
//   - *domain.BusinessError        el servidor rechazó la operación (mensaje literal).
//   - domain.ErrMalformedResponse  la respuesta no se pudo interpretar.

// CatalogGateway consulta y mantiene el catálogo de productos.
type CatalogGateway interface {
	// ScanProduct busca un producto por código. domain.ErrNotFound si no existe.
	ScanProduct(ctx context.Context, code string) (*entity.Producto, error)
	// ListProducts lista productos; search vacío = todos.
	ListProducts(ctx context.Context, search string) ([]entity.Producto, error)
	// SaveProduct crea el producto o, si el código existe, lo actualiza sumando in.Stock al stock actual.
	SaveProduct(ctx context.Context, in dto.ProductoInput) (action string, err error)
	DeleteProduct(ctx context.Context, id int64) error
}

// SaleGateway registra ventas y consulta el historial.
type SaleGateway interface {
	SubmitSale(ctx context.Context, items []entity.VentaItem) (*entity.VentaConfirmada, error)
	SalesHistory(ctx context.Context) ([]entity.Venta, error)
}

// ExpenseGateway gastos de caja.
type ExpenseGateway interface {
	ListExpenses(ctx context.Context) ([]entity.Gasto, error)
	AddExpense(ctx context.Context, in dto.GastoInput) error
	DeleteExpense(ctx context.Context, id int64) error
}

// DashboardGateway métricas del día.
type DashboardGateway interface {
	Dashboard(ctx context.Context) (*entity.Dashboard, error)
}

// ImportGateway sube un albarán (foto o CSV) para que el servidor extraiga los productos.
type ImportGateway interface {
	UploadDeliveryNote(ctx context.Context, filename string, r io.Reader) ([]entity.ProductoDetectado, error)
}

// ConfigGateway ajustes del servidor.
type ConfigGateway interface {
	SetAPIKey(ctx context.Context, key string) error
	LocalIP(ctx context.Context) (string, error)
}
