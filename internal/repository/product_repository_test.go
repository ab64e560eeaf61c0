package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/silverbladeidn/inventopia-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func productRows(products ...models.Product) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "sku", "name", "description", "stock_quantity", "min_stock_level", "max_stock_level", "status", "created_at", "updated_at"})
	for _, p := range products {
		rows.AddRow(p.ID, p.SKU, p.Name, p.Description, p.StockQuantity, p.MinStockLevel, p.MaxStockLevel, p.Status, time.Now(), time.Now())
	}
	return rows
}

func TestProductRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProductRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sku, name, description")).
		WithArgs("prod-1").
		WillReturnRows(productRows(models.Product{ID: "prod-1", SKU: "STP-01", Name: "Stapler", StockQuantity: 10, Status: models.StockStatusInStock}))

	product, err := repo.GetByID(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Equal(t, "STP-01", product.SKU)
	require.Equal(t, 10, product.StockQuantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepositoryGetByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProductRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id IN")).
		WithArgs("prod-1", "prod-2").
		WillReturnRows(productRows(
			models.Product{ID: "prod-1", SKU: "STP-01", Name: "Stapler", StockQuantity: 10, Status: models.StockStatusInStock},
			models.Product{ID: "prod-2", SKU: "TNR-01", Name: "Toner", StockQuantity: 3, Status: models.StockStatusLowStock},
		))

	products, err := repo.GetByIDs(context.Background(), []string{"prod-1", "prod-2"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, 3, products["prod-2"].StockQuantity)

	// no round trip for an empty id set
	empty, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProductRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE status = $1")).
		WithArgs(models.StockStatusLowStock).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE status = $1 ORDER BY name ASC")).
		WithArgs(models.StockStatusLowStock).
		WillReturnRows(productRows(models.Product{ID: "prod-2", SKU: "TNR-01", Name: "Toner", StockQuantity: 3, Status: models.StockStatusLowStock}))

	products, total, err := repo.List(context.Background(), models.ProductFilter{Status: models.StockStatusLowStock})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, products, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepositoryApplyAdjustment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProductRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock_quantity")).
		WithArgs(15, models.StockStatusInStock, sqlmock.AnyArg(), "prod-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_movements")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyAdjustment(context.Background(), StockAdjustment{
		ProductID:      "prod-1",
		QuantityBefore: 10,
		QuantityAfter:  15,
		Status:         models.StockStatusInStock,
		Movement: models.StockMovement{
			ProductID:      "prod-1",
			Kind:           models.StockOpAdd,
			Amount:         5,
			QuantityBefore: 10,
			QuantityAfter:  15,
			Reason:         "restock delivery",
			ActorID:        "admin-1",
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepositoryApplyAdjustmentConcurrentChange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProductRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock_quantity")).
		WithArgs(15, models.StockStatusInStock, sqlmock.AnyArg(), "prod-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyAdjustment(context.Background(), StockAdjustment{
		ProductID:      "prod-1",
		QuantityBefore: 10,
		QuantityAfter:  15,
		Status:         models.StockStatusInStock,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
