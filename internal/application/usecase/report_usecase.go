package usecase

import (
	"context"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
)

// ReportUseCase consultas de sólo lectura: resumen del día e historial de ventas.
type ReportUseCase struct {
	dashboard ports.DashboardGateway
	sales     ports.SaleGateway
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(dashboard ports.DashboardGateway, sales ports.SaleGateway) *ReportUseCase {
	return &ReportUseCase{dashboard: dashboard, sales: sales}
}

// Dashboard métricas del día.
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*entity.Dashboard, error) {
	return uc.dashboard.Dashboard(ctx)
}

// SalesHistory ventas recientes tal como las ordena el servidor.
func (uc *ReportUseCase) SalesHistory(ctx context.Context) ([]entity.Venta, error) {
	return uc.sales.SalesHistory(ctx)
}
