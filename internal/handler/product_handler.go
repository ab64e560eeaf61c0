package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/silverbladeidn/inventopia-api/internal/dto"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
	"github.com/silverbladeidn/inventopia-api/pkg/response"
)

type productService interface {
	Get(ctx context.Context, id string) (*models.Product, bool, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, *models.Pagination, error)
	AdjustStock(ctx context.Context, productID string, op models.StockOperation, actorID string) (*models.Product, error)
	Movements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error)
}

// ProductHandler exposes REST endpoints for the catalog and stock mutations.
type ProductHandler struct {
	service productService
}

// NewProductHandler constructs the handler.
func NewProductHandler(service productService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List godoc
// @Summary List catalog products
// @Tags Products
// @Produce json
// @Param status query string false "Stock status filter"
// @Param search query string false "Name or SKU search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "product service not configured"))
		return
	}
	var query dto.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid product query"))
		return
	}
	filter := models.ProductFilter{
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		filter.Status = models.StockStatus(strings.ToUpper(query.Status))
	}
	products, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, pagination)
}

// Get godoc
// @Summary Get one product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "product service not configured"))
		return
	}
	product, cached, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil, map[string]interface{}{"cache": cached})
}

// AdjustStock godoc
// @Summary Apply a stock operation to a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param payload body dto.AdjustStockRequest true "Stock operation"
// @Success 200 {object} response.Envelope
// @Router /products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "product service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid stock operation payload"))
		return
	}
	op := models.StockOperation{
		Kind:   models.StockOperationKind(req.Kind),
		Amount: req.Amount,
		Reason: req.Reason,
		Notes:  req.Notes,
	}
	product, err := h.service.AdjustStock(c.Request.Context(), c.Param("id"), op, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// Movements godoc
// @Summary List a product's stock movement history
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /products/{id}/movements [get]
func (h *ProductHandler) Movements(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "product service not configured"))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	movements, err := h.service.Movements(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, movements, nil)
}
