package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/silverbladeidn/inventopia-api/internal/models"
)

const movementColumns = `id, product_id, kind, amount, quantity_before, quantity_after, reason, notes, actor_id, request_id, created_at`

// StockMovementRepository reads the stock audit trail. Writes happen inside
// the product and request repositories' transactions.
type StockMovementRepository struct {
	db *sqlx.DB
}

// NewStockMovementRepository constructs the repository.
func NewStockMovementRepository(db *sqlx.DB) *StockMovementRepository {
	return &StockMovementRepository{db: db}
}

// ListByProduct returns a product's movements, newest first.
func (r *StockMovementRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC LIMIT %d`, movementColumns, limit)
	var movements []models.StockMovement
	if err := r.db.SelectContext(ctx, &movements, query, productID); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return movements, nil
}

// ListByRequest returns the movements a request's transitions produced.
func (r *StockMovementRepository) ListByRequest(ctx context.Context, requestID string) ([]models.StockMovement, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE request_id = $1 ORDER BY created_at ASC`, movementColumns)
	var movements []models.StockMovement
	if err := r.db.SelectContext(ctx, &movements, query, requestID); err != nil {
		return nil, fmt.Errorf("list request movements: %w", err)
	}
	return movements, nil
}
