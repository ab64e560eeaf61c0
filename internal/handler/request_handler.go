package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silverbladeidn/inventopia-api/internal/dto"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	"github.com/silverbladeidn/inventopia-api/internal/service"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
	"github.com/silverbladeidn/inventopia-api/pkg/response"
)

type requestService interface {
	CreateDraft(ctx context.Context, req dto.CreateRequestRequest, actor *models.JWTClaims) (*models.ItemRequest, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ItemRequest, error)
	List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.ItemRequest, error)
	UpdateDraftItems(ctx context.Context, id string, update dto.DraftItemsUpdate, actor *models.JWTClaims) (*models.ItemRequest, error)
	Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.ItemRequest, error)
	Fulfill(ctx context.Context, id string, actor *models.JWTClaims) (*models.ItemRequest, error)
	Movements(ctx context.Context, id string, actor *models.JWTClaims) ([]models.StockMovement, error)
}

type actionDispatcher interface {
	Dispatch(ctx context.Context, requestID string, action dto.RequestAction, actor *models.JWTClaims) (*service.ActionResult, error)
}

// RequestHandler exposes REST endpoints for the item request lifecycle.
type RequestHandler struct {
	service     requestService
	coordinator actionDispatcher
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService, coordinator actionDispatcher) *RequestHandler {
	return &RequestHandler{service: service, coordinator: coordinator}
}

// Create godoc
// @Summary Open a new draft request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestRequest true "Draft payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.CreateDraft(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil)
}

// List godoc
// @Summary List requests visible to the caller
// @Tags Requests
// @Produce json
// @Param status query string false "Status filter"
// @Param user_id query string false "Owner filter (staff and admin only)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.RequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request query"))
		return
	}
	requests, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get one request with its lines
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Movements godoc
// @Summary List the stock movements a request produced
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/movements [get]
func (h *RequestHandler) Movements(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	movements, err := h.service.Movements(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, movements, nil)
}

// UpdateItems godoc
// @Summary Edit a draft's lines
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DraftItemsUpdate true "Draft edits"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/items [put]
func (h *RequestHandler) UpdateItems(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var update dto.DraftItemsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft edits payload"))
		return
	}
	request, err := h.service.UpdateDraftItems(c.Request.Context(), c.Param("id"), update, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit a draft for review
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/submit [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Action godoc
// @Summary Dispatch an approval action against a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RequestAction true "Action payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/actions [post]
func (h *RequestHandler) Action(c *gin.Context) {
	if h.coordinator == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "approval coordinator not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var action dto.RequestAction
	if err := c.ShouldBindJSON(&action); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid action payload"))
		return
	}
	result, err := h.coordinator.Dispatch(c.Request.Context(), c.Param("id"), action, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Fulfill godoc
// @Summary Mark an approved request as handed out
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/fulfill [post]
func (h *RequestHandler) Fulfill(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "request service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Fulfill(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
