package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// ExpenseUseCase gastos de caja.
type ExpenseUseCase struct {
	expenses ports.ExpenseGateway
	log      *logger.Logger
}

// NewExpenseUseCase construye el caso de uso.
func NewExpenseUseCase(expenses ports.ExpenseGateway, log *logger.Logger) *ExpenseUseCase {
	return &ExpenseUseCase{expenses: expenses, log: log}
}

// List gastos registrados.
func (uc *ExpenseUseCase) List(ctx context.Context) ([]entity.Gasto, error) {
	return uc.expenses.ListExpenses(ctx)
}

// Add registra un gasto. Concepto y monto > 0 obligatorios; sin categoría se usa "General".
func (uc *ExpenseUseCase) Add(ctx context.Context, in dto.GastoInput) error {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	if err := uc.expenses.AddExpense(ctx, in); err != nil {
		return fmt.Errorf("registrar gasto: %w", err)
	}
	uc.log.Info().Str("concepto", in.Concepto).Str("monto", in.Monto.StringFixed(2)).Msg("gasto registrado")
	return nil
}

// Delete elimina un gasto.
func (uc *ExpenseUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.expenses.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("eliminar gasto %d: %w", id, err)
	}
	return nil
}
