package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/silverbladeidn/inventopia-api/internal/models"
)

const productColumns = `id, sku, name, description, stock_quantity, min_stock_level, max_stock_level, status, created_at, updated_at`

// ProductRepository persists catalog products and their stock positions.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository constructs the repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID fetches one product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs fetches several products at once, keyed by id.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	if len(ids) == 0 {
		return map[string]models.Product{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM products WHERE id IN (?)`, productColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build products query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.Product
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	result := make(map[string]models.Product, len(rows))
	for _, p := range rows {
		result[p.ID] = p
	}
	return result, nil
}

// List returns products matching the filter plus the total count.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(sku) LIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name ASC LIMIT %d OFFSET %d`,
		productColumns, where, pageSize, (page-1)*pageSize)

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// StockAdjustment groups one direct stock mutation with its audit movement.
type StockAdjustment struct {
	ProductID      string
	QuantityBefore int
	QuantityAfter  int
	Status         models.StockStatus
	Movement       models.StockMovement
}

// ApplyAdjustment persists a direct stock mutation and its movement row in one
// transaction. The quantity update is conditional on the observed quantity so
// a concurrent writer surfaces as sql.ErrNoRows instead of silently clobbering.
func (r *ProductRepository) ApplyAdjustment(ctx context.Context, adj StockAdjustment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stock adjustment: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if err := applyStockUpdate(ctx, tx, adj.ProductID, adj.QuantityBefore, adj.QuantityAfter, adj.Status); err != nil {
		return err
	}
	if err := insertMovement(ctx, tx, &adj.Movement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stock adjustment: %w", err)
	}
	commit = true
	return nil
}

func applyStockUpdate(ctx context.Context, tx *sqlx.Tx, productID string, before, after int, status models.StockStatus) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = $1, status = $2, updated_at = $3 WHERE id = $4 AND stock_quantity = $5`,
		after, status, time.Now().UTC(), productID, before)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check product stock update: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertMovement(ctx context.Context, tx *sqlx.Tx, movement *models.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO stock_movements
	(id, product_id, kind, amount, quantity_before, quantity_after, reason, notes, actor_id, request_id, created_at)
	VALUES (:id, :product_id, :kind, :amount, :quantity_before, :quantity_after, :reason, :notes, :actor_id, :request_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, movement); err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}
