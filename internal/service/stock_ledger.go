package service

import (
	"strings"

	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

// ApplyStockOperation computes the new stock quantity for an operation. It is
// pure: validation failures leave the caller's state untouched, and persisting
// the result plus recomputing the derived status is the caller's job.
func ApplyStockOperation(currentStock int, op models.StockOperation) (int, error) {
	if currentStock < 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidAmount, "current stock cannot be negative")
	}
	if strings.TrimSpace(op.Reason) == "" {
		return 0, appErrors.WithRef(appErrors.ErrInvalidReason, "reason")
	}

	switch op.Kind {
	case models.StockOpAdd:
		if op.Amount <= 0 {
			return 0, appErrors.WithRef(appErrors.ErrInvalidAmount, "amount")
		}
		return currentStock + op.Amount, nil
	case models.StockOpSubtract:
		if op.Amount <= 0 {
			return 0, appErrors.WithRef(appErrors.ErrInvalidAmount, "amount")
		}
		if op.Amount > currentStock {
			return 0, appErrors.ErrInsufficientStock
		}
		return currentStock - op.Amount, nil
	case models.StockOpSet:
		if op.Amount < 0 {
			return 0, appErrors.WithRef(appErrors.ErrInvalidAmount, "amount")
		}
		return op.Amount, nil
	default:
		return 0, appErrors.Clone(appErrors.ErrValidation, "unsupported stock operation kind")
	}
}
