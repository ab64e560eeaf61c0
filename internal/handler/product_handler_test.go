package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverbladeidn/inventopia-api/internal/dto"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

type fakeProductSrv struct {
	product *models.Product
	cached  bool
	err     error

	lastOp    models.StockOperation
	lastActor string
}

func (f *fakeProductSrv) Get(context.Context, string) (*models.Product, bool, error) {
	return f.product, f.cached, f.err
}

func (f *fakeProductSrv) List(context.Context, models.ProductFilter) ([]models.Product, *models.Pagination, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return []models.Product{*f.product}, &models.Pagination{Page: 1, PageSize: 10, TotalCount: 1}, nil
}

func (f *fakeProductSrv) AdjustStock(_ context.Context, _ string, op models.StockOperation, actorID string) (*models.Product, error) {
	f.lastOp = op
	f.lastActor = actorID
	return f.product, f.err
}

func (f *fakeProductSrv) Movements(context.Context, string, int) ([]models.StockMovement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.StockMovement{{ID: "mov-1", Kind: models.StockOpAdd}}, nil
}

func TestProductHandlerGetReportsCacheState(t *testing.T) {
	srv := &fakeProductSrv{product: &models.Product{ID: "prod-1", SKU: "STP-01"}, cached: true}
	handler := NewProductHandler(srv)

	c, rec := testContext(t, http.MethodGet, "/products/prod-1", nil)
	handler.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache"])
}

func TestProductHandlerGetNotFound(t *testing.T) {
	handler := NewProductHandler(&fakeProductSrv{err: appErrors.ErrNotFound})

	c, rec := testContext(t, http.MethodGet, "/products/missing", nil)
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductHandlerAdjustStockRequiresAuth(t *testing.T) {
	handler := NewProductHandler(&fakeProductSrv{})

	c, rec := testContext(t, http.MethodPost, "/products/prod-1/stock", dto.AdjustStockRequest{Kind: "ADD", Amount: 5, Reason: "restock"})
	handler.AdjustStock(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductHandlerAdjustStockPassesOperation(t *testing.T) {
	srv := &fakeProductSrv{product: &models.Product{ID: "prod-1", StockQuantity: 15}}
	handler := NewProductHandler(srv)

	c, rec := testContext(t, http.MethodPost, "/products/prod-1/stock", dto.AdjustStockRequest{Kind: "ADD", Amount: 5, Reason: "restock", Notes: "weekly delivery"})
	withClaims(c, models.RoleStaff)
	handler.AdjustStock(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StockOpAdd, srv.lastOp.Kind)
	assert.Equal(t, 5, srv.lastOp.Amount)
	assert.Equal(t, "user-1", srv.lastActor)
}

func TestProductHandlerAdjustStockRejectsUnknownKind(t *testing.T) {
	handler := NewProductHandler(&fakeProductSrv{})

	c, rec := testContext(t, http.MethodPost, "/products/prod-1/stock", dto.AdjustStockRequest{Kind: "DOUBLE", Amount: 5, Reason: "restock"})
	withClaims(c, models.RoleAdmin)
	handler.AdjustStock(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandlerMovements(t *testing.T) {
	handler := NewProductHandler(&fakeProductSrv{})

	c, rec := testContext(t, http.MethodGet, "/products/prod-1/movements?limit=5", nil)
	handler.Movements(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.StockMovement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, models.StockOpAdd, envelope.Data[0].Kind)
}
