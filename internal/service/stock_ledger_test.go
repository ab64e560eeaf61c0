package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

func TestApplyStockOperationAdd(t *testing.T) {
	got, err := ApplyStockOperation(5, models.StockOperation{Kind: models.StockOpAdd, Amount: 3, Reason: "restock"})
	require.NoError(t, err)
	require.Equal(t, 8, got)

	got, err = ApplyStockOperation(0, models.StockOperation{Kind: models.StockOpAdd, Amount: 1, Reason: "restock"})
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestApplyStockOperationSubtract(t *testing.T) {
	got, err := ApplyStockOperation(5, models.StockOperation{Kind: models.StockOpSubtract, Amount: 5, Reason: "handout"})
	require.NoError(t, err)
	require.Equal(t, 0, got)

	_, err = ApplyStockOperation(2, models.StockOperation{Kind: models.StockOpSubtract, Amount: 3, Reason: "handout"})
	require.ErrorIs(t, err, appErrors.ErrInsufficientStock)
}

func TestApplyStockOperationSet(t *testing.T) {
	got, err := ApplyStockOperation(7, models.StockOperation{Kind: models.StockOpSet, Amount: 0, Reason: "stocktake"})
	require.NoError(t, err)
	require.Equal(t, 0, got)

	_, err = ApplyStockOperation(7, models.StockOperation{Kind: models.StockOpSet, Amount: -1, Reason: "stocktake"})
	require.ErrorIs(t, err, appErrors.ErrInvalidAmount)
}

func TestApplyStockOperationValidation(t *testing.T) {
	_, err := ApplyStockOperation(5, models.StockOperation{Kind: models.StockOpAdd, Amount: 0, Reason: "restock"})
	require.ErrorIs(t, err, appErrors.ErrInvalidAmount)

	_, err = ApplyStockOperation(5, models.StockOperation{Kind: models.StockOpSubtract, Amount: -2, Reason: "handout"})
	require.ErrorIs(t, err, appErrors.ErrInvalidAmount)

	_, err = ApplyStockOperation(5, models.StockOperation{Kind: models.StockOpAdd, Amount: 1, Reason: "   "})
	require.ErrorIs(t, err, appErrors.ErrInvalidReason)

	_, err = ApplyStockOperation(5, models.StockOperation{Kind: "TRANSFER", Amount: 1, Reason: "move"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStockStatusFor(t *testing.T) {
	require.Equal(t, models.StockStatusOutOfStock, models.StockStatusFor(0, 5))
	require.Equal(t, models.StockStatusLowStock, models.StockStatusFor(5, 5))
	require.Equal(t, models.StockStatusInStock, models.StockStatusFor(6, 5))
}
