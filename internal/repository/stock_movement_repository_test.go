package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/silverbladeidn/inventopia-api/internal/models"
)

func movementRows(movements ...models.StockMovement) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "product_id", "kind", "amount", "quantity_before", "quantity_after", "reason", "notes", "actor_id", "request_id", "created_at"})
	for _, m := range movements {
		rows.AddRow(m.ID, m.ProductID, m.Kind, m.Amount, m.QuantityBefore, m.QuantityAfter, m.Reason, m.Notes, m.ActorID, m.RequestID, time.Now())
	}
	return rows
}

func TestStockMovementRepositoryListByProductCapsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStockMovementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC LIMIT 50")).
		WithArgs("prod-1").
		WillReturnRows(movementRows(
			models.StockMovement{ID: "mov-2", ProductID: "prod-1", Kind: models.StockOpSubtract, Amount: 2, QuantityBefore: 10, QuantityAfter: 8, Reason: "request approval", ActorID: "admin-1"},
			models.StockMovement{ID: "mov-1", ProductID: "prod-1", Kind: models.StockOpAdd, Amount: 10, QuantityBefore: 0, QuantityAfter: 10, Reason: "initial stock", ActorID: "admin-1"},
		))

	movements, err := repo.ListByProduct(context.Background(), "prod-1", 500)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.Equal(t, "mov-2", movements[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMovementRepositoryListByRequest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	requestID := "req-1"
	repo := NewStockMovementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM stock_movements WHERE request_id = $1 ORDER BY created_at ASC")).
		WithArgs(requestID).
		WillReturnRows(movementRows(
			models.StockMovement{ID: "mov-1", ProductID: "prod-1", Kind: models.StockOpSubtract, Amount: 4, QuantityBefore: 10, QuantityAfter: 6, Reason: "request approval", ActorID: "admin-1", RequestID: &requestID},
		))

	movements, err := repo.ListByRequest(context.Background(), requestID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, models.StockOpSubtract, movements[0].Kind)
	require.NotNil(t, movements[0].RequestID)
	require.NoError(t, mock.ExpectationsWereMet())
}
