package ledger

import (
	"context"
	"errors"

	"github.com/tiendapro/tiendapro-api/internal/domain"
)

// AdjustmentItem ítem individual de un ajuste por lotes.
type AdjustmentItem struct {
	OutletID  string
	ProductID string
	Delta     int64
	Reason    string
}

// AdjustmentResult resultado por ítem de un ajuste por lotes.
type AdjustmentResult struct {
	OutletID  string
	ProductID string
	OK        bool
	Quantity  int64  // cantidad resultante si OK
	Error     string // detalle del fallo si !OK
}

// BatchAdjust aplica cada ítem de forma independiente: un fallo (producto o
// punto de venta inexistente, resultado negativo) se registra como fallo de
// ese ítem y no aborta a los hermanos. El éxito parcial es la política
// documentada, a diferencia del traslado, que es todo-o-nada. Cada ítem corre
// en su propia transacción con su propio punto de commit.
func (uc *StockUseCase) BatchAdjust(ctx context.Context, companyID, userID string, items []AdjustmentItem) ([]AdjustmentResult, int, int) {
	results := make([]AdjustmentResult, 0, len(items))
	successCount, failureCount := 0, 0

	for _, item := range items {
		res := AdjustmentResult{OutletID: item.OutletID, ProductID: item.ProductID}
		entry, _, err := uc.Adjust(ctx, companyID, userID, item.OutletID, item.ProductID, item.Delta, item.Reason)
		if err != nil {
			res.Error = batchErrorMessage(err)
			failureCount++
			results = append(results, res)
			continue
		}
		res.OK = true
		res.Quantity = entry.Quantity
		successCount++
		results = append(results, res)
	}
	return results, successCount, failureCount
}

// batchErrorMessage reduce el error de un ítem a un mensaje estable para el caller.
func batchErrorMessage(err error) string {
	var insErr *domain.InsufficientStockError
	if errors.As(err, &insErr) {
		return insErr.Error()
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "producto o punto de venta no encontrado"
	case errors.Is(err, domain.ErrForbidden):
		return "recurso de otra empresa"
	case errors.Is(err, domain.ErrInvalidInput):
		return "ítem inválido"
	default:
		return err.Error()
	}
}
