package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/silverbladeidn/inventopia-api/internal/dto"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	"github.com/silverbladeidn/inventopia-api/internal/repository"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.ItemRequest) error
	GetByID(ctx context.Context, id string) (*models.ItemRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.ItemRequest, error)
	SaveDraft(ctx context.Context, save repository.DraftSave) error
	UpdateStatus(ctx context.Context, update repository.StatusUpdate) error
	CommitTransition(ctx context.Context, transition repository.Transition) error
}

type requestProductStore interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

type requestMovementReader interface {
	ListByRequest(ctx context.Context, requestID string) ([]models.StockMovement, error)
}

// DetailFailure names one line that blocked a transition so the approver can
// retry with adjusted quantities for just the failing lines.
type DetailFailure struct {
	DetailID  string `json:"detail_id"`
	ProductID string `json:"product_id"`
	Code      string `json:"code"`
}

// ActionResult reports a committed transition: the request's new state plus
// every product quantity change it applied.
type ActionResult struct {
	Request     *models.ItemRequest `json:"request"`
	StockDeltas []models.StockDelta `json:"stock_deltas,omitempty"`
}

const (
	reasonApproval     = "request approval"
	reasonCancellation = "request cancellation"
)

// RequestService owns the item request lifecycle: draft building and
// persistence, submission, and the reviewed transitions that move stock.
// Stock is checked at submission and decremented at approval, so rejecting or
// cancelling an unapproved request never touches a quantity.
type RequestService struct {
	repo      requestStore
	products  requestProductStore
	movements requestMovementReader
	notifier  stockNotifier
	guard     *stockGuard
	metrics   *MetricsService
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service. guard must be shared with the
// product service.
func NewRequestService(repo requestStore, products requestProductStore, movements requestMovementReader, notifier stockNotifier, guard *stockGuard, metrics *MetricsService, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = newStockGuard()
	}
	return &RequestService{
		repo:      repo,
		products:  products,
		movements: movements,
		notifier:  notifier,
		guard:     guard,
		metrics:   metrics,
		validate:  validator.New(),
		logger:    logger,
	}
}

// CreateDraft opens a new draft owned by the actor, optionally with a first
// line validated against current stock.
func (s *RequestService) CreateDraft(ctx context.Context, req dto.CreateRequestRequest, actor *models.JWTClaims) (*models.ItemRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if req.Item != nil {
		if err := s.validate.Struct(req.Item); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft item")
		}
	}

	request := &models.ItemRequest{
		UserID: actor.UserID,
		Note:   req.Note,
		Status: models.RequestStatusDraft,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create draft")
	}

	if req.Item != nil {
		update := dto.DraftItemsUpdate{Add: req.Item}
		return s.UpdateDraftItems(ctx, request.ID, update, actor)
	}
	return request, nil
}

// Get returns one request. Plain users only see their own.
func (s *RequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ItemRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleUser && request.UserID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// Movements returns the stock movements a request's transitions produced,
// scoped like Get.
func (s *RequestService) Movements(ctx context.Context, id string, actor *models.JWTClaims) ([]models.StockMovement, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	movements, err := s.movements.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list request movements")
	}
	return movements, nil
}

// List returns request headers scoped by the actor's role.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.ItemRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.Status != "" {
		filter.Status = []models.RequestStatus{models.RequestStatus(query.Status)}
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleStaff:
		filter.UserID = query.UserID
	default:
		filter.UserID = actor.UserID
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// UpdateDraftItems runs one round of builder edits against a draft and
// flushes the surviving view. Validation failures reject the whole round and
// leave the stored draft untouched.
func (s *RequestService) UpdateDraftItems(ctx context.Context, id string, update dto.DraftItemsUpdate, actor *models.JWTClaims) (*models.ItemRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.UserID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if request.Status != models.RequestStatusDraft {
		return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
	}

	builder, err := s.builderFor(ctx, request, productIDHint(update))
	if err != nil {
		return nil, err
	}

	for detailID, quantity := range update.SetQuantities {
		if err := builder.SetQuantity(detailID, quantity); err != nil {
			return nil, err
		}
	}
	for _, detailID := range update.Remove {
		if err := builder.RemoveDetail(detailID); err != nil {
			return nil, err
		}
	}
	if update.Add != nil {
		if err := builder.AddNewItem(update.Add.ProductID, update.Add.Quantity); err != nil {
			return nil, err
		}
	}

	save := repository.DraftSave{
		RequestID: id,
		Note:      update.Note,
		Edited:    update.SetQuantities,
	}
	save.RemovedIDs = append(save.RemovedIDs, update.Remove...)
	if selection := builder.Selection(); selection != nil {
		save.NewDetails = []models.RequestDetail{{
			ProductID:         selection.ProductID,
			RequestedQuantity: selection.Quantity,
		}}
	}
	if err := s.repo.SaveDraft(ctx, save); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return s.load(ctx, id)
}

// Submit moves a draft to pending. Stock is checked against the current
// quantities but not reserved; the decrement happens at approval.
func (s *RequestService) Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.ItemRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.UserID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if request.Status != models.RequestStatusDraft {
		return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
	}
	if len(request.Details) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a request needs at least one item before submission")
	}

	builder, err := s.builderFor(ctx, request, nil)
	if err != nil {
		return nil, err
	}
	if !builder.CanSubmit() {
		failures := s.coverageFailures(ctx, request)
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrQuantityOutOfRange, "stock changed underneath the draft"), failures)
	}

	update := repository.StatusUpdate{
		RequestID:    id,
		FromStatuses: []models.RequestStatus{models.RequestStatusDraft},
		Status:       models.RequestStatusPending,
	}
	if err := s.repo.UpdateStatus(ctx, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit request")
	}
	s.metrics.RecordRequestTransition(models.RequestStatusPending)
	s.logger.Info("request submitted", zap.String("request_id", id), zap.String("user_id", actor.UserID))
	return s.load(ctx, id)
}

// Approve grants every line in full and decrements stock accordingly.
func (s *RequestService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*ActionResult, error) {
	return s.decide(ctx, id, nil, true, "", actor)
}

// PartialApprove grants each line the reviewer's quantity; omitted lines
// default to their requested quantity and zero declines a line.
func (s *RequestService) PartialApprove(ctx context.Context, id string, quantities map[string]int, note string, actor *models.JWTClaims) (*ActionResult, error) {
	return s.decide(ctx, id, quantities, false, note, actor)
}

// Reject declines a pending request. Nothing was decremented for it, so no
// stock moves.
func (s *RequestService) Reject(ctx context.Context, id string, note string, actor *models.JWTClaims) (*ActionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
	}

	var adminNote *string
	if note != "" {
		adminNote = &note
	}
	update := repository.StatusUpdate{
		RequestID:    id,
		FromStatuses: []models.RequestStatus{models.RequestStatusPending},
		Status:       models.RequestStatusRejected,
		AdminNote:    adminNote,
	}
	if err := s.repo.UpdateStatus(ctx, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}
	s.metrics.RecordRequestTransition(models.RequestStatusRejected)
	s.logger.Info("request rejected", zap.String("request_id", id), zap.String("reviewer_id", actor.UserID))

	request, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Request: request}, nil
}

// Cancel closes a request. Draft and pending cancellations touch no stock;
// cancelling an approved request adds every granted quantity back.
func (s *RequestService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*ActionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleUser && request.UserID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}

	switch request.Status {
	case models.RequestStatusDraft, models.RequestStatusPending:
		update := repository.StatusUpdate{
			RequestID:    id,
			FromStatuses: []models.RequestStatus{models.RequestStatusDraft, models.RequestStatusPending},
			Status:       models.RequestStatusCancelled,
		}
		if err := s.repo.UpdateStatus(ctx, update); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel request")
		}
		s.metrics.RecordRequestTransition(models.RequestStatusCancelled)
		request, err = s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Request: request}, nil
	case models.RequestStatusApproved, models.RequestStatusPartiallyApproved:
		return s.cancelApproved(ctx, request, actor)
	default:
		return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
	}
}

// Fulfill marks an approved request as handed out. Stock already reflects the
// grant, so nothing moves.
func (s *RequestService) Fulfill(ctx context.Context, id string, actor *models.JWTClaims) (*models.ItemRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch request.Status {
	case models.RequestStatusApproved, models.RequestStatusPartiallyApproved:
	default:
		return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
	}

	update := repository.StatusUpdate{
		RequestID:    id,
		FromStatuses: []models.RequestStatus{models.RequestStatusApproved, models.RequestStatusPartiallyApproved},
		Status:       models.RequestStatusCompleted,
	}
	if err := s.repo.UpdateStatus(ctx, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fulfill request")
	}
	s.metrics.RecordRequestTransition(models.RequestStatusCompleted)
	s.logger.Info("request fulfilled", zap.String("request_id", id), zap.String("actor_id", actor.UserID))
	return s.load(ctx, id)
}

// decide is the shared approval path. Every line's subtraction is computed
// under the product locks first; the transition commits only when all of them
// succeed, otherwise the failing lines are reported and nothing changes.
func (s *RequestService) decide(ctx context.Context, id string, quantities map[string]int, full bool, note string, actor *models.JWTClaims) (*ActionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
	}

	granted := make(map[string]int, len(request.Details))
	for _, detail := range request.Details {
		qty := detail.RequestedQuantity
		if !full {
			if override, ok := quantities[detail.ID]; ok {
				qty = override
			}
		}
		if qty < 0 {
			return nil, appErrors.WithRef(appErrors.ErrValidation, detail.ID)
		}
		if qty > detail.RequestedQuantity {
			return nil, appErrors.WithRef(appErrors.ErrQuantityOutOfRange, detail.ID)
		}
		granted[detail.ID] = qty
	}
	if !full {
		for detailID := range quantities {
			if request.Detail(detailID) == nil {
				return nil, appErrors.WithRef(appErrors.ErrNotFound, detailID)
			}
		}
	}

	productIDs := make([]string, 0, len(request.Details))
	for _, detail := range request.Details {
		productIDs = append(productIDs, detail.ProductID)
	}
	release := s.guard.acquire(productIDs...)
	defer release()

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load products")
	}

	working := make(map[string]models.Product, len(products))
	for id, p := range products {
		working[id] = p
	}

	var failures []DetailFailure
	for _, detail := range request.Details {
		qty := granted[detail.ID]
		if qty == 0 {
			continue
		}
		product, ok := working[detail.ProductID]
		if !ok {
			return nil, appErrors.WithRef(appErrors.ErrNotFound, detail.ProductID)
		}
		newQty, err := ApplyStockOperation(product.StockQuantity, models.StockOperation{
			Kind:   models.StockOpSubtract,
			Amount: qty,
			Reason: reasonApproval,
		})
		if err != nil {
			if errors.Is(err, appErrors.ErrInsufficientStock) {
				failures = append(failures, DetailFailure{
					DetailID:  detail.ID,
					ProductID: detail.ProductID,
					Code:      appErrors.ErrInsufficientStock.Code,
				})
				continue
			}
			return nil, err
		}
		product.StockQuantity = newQty
		working[detail.ProductID] = product
	}
	if len(failures) > 0 {
		return nil, appErrors.WithDetails(appErrors.WithRef(appErrors.ErrInsufficientStock, id), failures)
	}

	status := models.RequestStatusApproved
	if !full {
		status = models.RequestStatusPartiallyApproved
	}

	now := time.Now().UTC()
	var adminNote *string
	if note != "" {
		adminNote = &note
	}
	transition := repository.Transition{
		Request: repository.StatusUpdate{
			RequestID:    id,
			FromStatuses: []models.RequestStatus{models.RequestStatusPending},
			Status:       status,
			AdminNote:    adminNote,
			ApprovedAt:   &now,
		},
	}

	for _, detail := range request.Details {
		qty := granted[detail.ID]
		lineStatus := models.RequestStatusApproved
		switch {
		case qty == 0:
			lineStatus = models.RequestStatusRejected
		case qty < detail.RequestedQuantity:
			lineStatus = models.RequestStatusPartiallyApproved
		}
		transition.Decisions = append(transition.Decisions, repository.DetailDecision{
			DetailID:         detail.ID,
			ApprovedQuantity: qty,
			Status:           lineStatus,
		})
	}

	deltas := make([]models.StockDelta, 0, len(products))
	requestID := id
	for productID, before := range products {
		after := working[productID]
		if after.StockQuantity == before.StockQuantity {
			continue
		}
		after.RecomputeStatus()
		working[productID] = after
		transition.Stock = append(transition.Stock, repository.StockWrite{
			ProductID:      productID,
			QuantityBefore: before.StockQuantity,
			QuantityAfter:  after.StockQuantity,
			Status:         after.Status,
		})
		transition.Movements = append(transition.Movements, models.StockMovement{
			ProductID:      productID,
			Kind:           models.StockOpSubtract,
			Amount:         before.StockQuantity - after.StockQuantity,
			QuantityBefore: before.StockQuantity,
			QuantityAfter:  after.StockQuantity,
			Reason:         reasonApproval,
			ActorID:        actor.UserID,
			RequestID:      &requestID,
		})
		deltas = append(deltas, models.StockDelta{
			ProductID:     productID,
			Delta:         after.StockQuantity - before.StockQuantity,
			QuantityAfter: after.StockQuantity,
		})
	}

	if err := s.repo.CommitTransition(ctx, transition); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit approval")
	}

	s.metrics.RecordRequestTransition(status)
	for range transition.Movements {
		s.metrics.RecordStockMovement(models.StockOpSubtract)
	}
	s.notifyStockChanged(ctx, working, transition.Stock)
	s.logger.Info("request reviewed",
		zap.String("request_id", id),
		zap.String("status", string(status)),
		zap.String("reviewer_id", actor.UserID),
	)

	request, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Request: request, StockDeltas: deltas}, nil
}

// cancelApproved reverses an approved grant by adding back every line's
// approved quantity.
func (s *RequestService) cancelApproved(ctx context.Context, request *models.ItemRequest, actor *models.JWTClaims) (*ActionResult, error) {
	productIDs := make([]string, 0, len(request.Details))
	for _, detail := range request.Details {
		productIDs = append(productIDs, detail.ProductID)
	}
	release := s.guard.acquire(productIDs...)
	defer release()

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load products")
	}

	transition := repository.Transition{
		Request: repository.StatusUpdate{
			RequestID: request.ID,
			FromStatuses: []models.RequestStatus{
				models.RequestStatusApproved,
				models.RequestStatusPartiallyApproved,
			},
			Status: models.RequestStatusCancelled,
		},
	}

	working := make(map[string]models.Product, len(products))
	for id, p := range products {
		working[id] = p
	}
	deltas := make([]models.StockDelta, 0, len(request.Details))
	requestID := request.ID
	for _, detail := range request.Details {
		if detail.ApprovedQuantity == nil || *detail.ApprovedQuantity == 0 {
			continue
		}
		restore := *detail.ApprovedQuantity
		product, ok := working[detail.ProductID]
		if !ok {
			return nil, appErrors.WithRef(appErrors.ErrNotFound, detail.ProductID)
		}
		newQty, err := ApplyStockOperation(product.StockQuantity, models.StockOperation{
			Kind:   models.StockOpAdd,
			Amount: restore,
			Reason: reasonCancellation,
		})
		if err != nil {
			return nil, err
		}
		before := product.StockQuantity
		product.StockQuantity = newQty
		product.RecomputeStatus()
		working[detail.ProductID] = product

		transition.Stock = append(transition.Stock, repository.StockWrite{
			ProductID:      detail.ProductID,
			QuantityBefore: before,
			QuantityAfter:  newQty,
			Status:         product.Status,
		})
		transition.Movements = append(transition.Movements, models.StockMovement{
			ProductID:      detail.ProductID,
			Kind:           models.StockOpAdd,
			Amount:         restore,
			QuantityBefore: before,
			QuantityAfter:  newQty,
			Reason:         reasonCancellation,
			ActorID:        actor.UserID,
			RequestID:      &requestID,
		})
		deltas = append(deltas, models.StockDelta{
			ProductID:     detail.ProductID,
			Delta:         restore,
			QuantityAfter: newQty,
		})
	}

	if err := s.repo.CommitTransition(ctx, transition); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrInvalidTransition, request.ID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel approved request")
	}

	s.metrics.RecordRequestTransition(models.RequestStatusCancelled)
	for range transition.Movements {
		s.metrics.RecordStockMovement(models.StockOpAdd)
	}
	s.notifyStockChanged(ctx, working, transition.Stock)
	s.logger.Info("approved request cancelled",
		zap.String("request_id", request.ID),
		zap.String("actor_id", actor.UserID),
	)

	updated, err := s.load(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Request: updated, StockDeltas: deltas}, nil
}

func (s *RequestService) notifyStockChanged(ctx context.Context, working map[string]models.Product, writes []repository.StockWrite) {
	if s.notifier == nil {
		return
	}
	for _, write := range writes {
		if product, ok := working[write.ProductID]; ok {
			s.notifier.StockChanged(ctx, product)
		}
	}
}

func (s *RequestService) load(ctx context.Context, id string) (*models.ItemRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WithRef(appErrors.ErrNotFound, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// builderFor snapshots the request's lines plus any extra products needed for
// a staged addition into a fresh draft builder.
func (s *RequestService) builderFor(ctx context.Context, request *models.ItemRequest, extraProductIDs []string) (*DraftBuilder, error) {
	ids := make([]string, 0, len(request.Details)+len(extraProductIDs))
	for _, detail := range request.Details {
		ids = append(ids, detail.ProductID)
	}
	ids = append(ids, extraProductIDs...)

	productsByID, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load products")
	}
	products := make([]models.Product, 0, len(productsByID))
	for _, p := range productsByID {
		products = append(products, p)
	}
	return NewDraftBuilder(request.Details, products), nil
}

// coverageFailures names the lines no longer covered by current stock.
func (s *RequestService) coverageFailures(ctx context.Context, request *models.ItemRequest) []DetailFailure {
	ids := make([]string, 0, len(request.Details))
	for _, detail := range request.Details {
		ids = append(ids, detail.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil
	}
	var failures []DetailFailure
	for _, detail := range request.Details {
		product, ok := products[detail.ProductID]
		if !ok || detail.RequestedQuantity > product.StockQuantity {
			failures = append(failures, DetailFailure{
				DetailID:  detail.ID,
				ProductID: detail.ProductID,
				Code:      appErrors.ErrInsufficientStock.Code,
			})
		}
	}
	return failures
}

func productIDHint(update dto.DraftItemsUpdate) []string {
	if update.Add == nil {
		return nil
	}
	return []string{update.Add.ProductID}
}
