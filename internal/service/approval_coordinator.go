package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/silverbladeidn/inventopia-api/internal/dto"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

type requestLifecycle interface {
	Approve(ctx context.Context, id string, actor *models.JWTClaims) (*ActionResult, error)
	PartialApprove(ctx context.Context, id string, quantities map[string]int, note string, actor *models.JWTClaims) (*ActionResult, error)
	Reject(ctx context.Context, id string, note string, actor *models.JWTClaims) (*ActionResult, error)
	Cancel(ctx context.Context, id string, actor *models.JWTClaims) (*ActionResult, error)
}

// ApprovalCoordinator serialises review actions per request: while one action
// for a request id is in flight, every other caller gets ErrActionInProgress
// instead of queueing behind it. It also enforces who may take which action
// before the lifecycle runs.
type ApprovalCoordinator struct {
	lifecycle requestLifecycle
	logger    *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewApprovalCoordinator(lifecycle requestLifecycle, logger *zap.Logger) *ApprovalCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalCoordinator{
		lifecycle: lifecycle,
		logger:    logger,
		inflight:  make(map[string]struct{}),
	}
}

// Dispatch runs one action for the request. The in-flight flag is held for
// the whole call and always released, even when the lifecycle errors.
func (c *ApprovalCoordinator) Dispatch(ctx context.Context, requestID string, action dto.RequestAction, actor *models.JWTClaims) (*ActionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := c.authorize(action.Action, actor); err != nil {
		return nil, err
	}
	if !c.begin(requestID) {
		return nil, appErrors.WithRef(appErrors.ErrActionInProgress, requestID)
	}
	defer c.end(requestID)

	switch action.Action {
	case dto.ActionApprove:
		return c.lifecycle.Approve(ctx, requestID, actor)
	case dto.ActionPartialApprove:
		return c.lifecycle.PartialApprove(ctx, requestID, action.Quantities, action.Note, actor)
	case dto.ActionReject:
		return c.lifecycle.Reject(ctx, requestID, action.Note, actor)
	case dto.ActionCancel:
		return c.lifecycle.Cancel(ctx, requestID, actor)
	default:
		return nil, appErrors.WithRef(appErrors.ErrValidation, "action")
	}
}

func (c *ApprovalCoordinator) authorize(action string, actor *models.JWTClaims) error {
	switch action {
	case dto.ActionApprove:
		if actor.Role != models.RoleAdmin {
			return appErrors.ErrForbidden
		}
	case dto.ActionPartialApprove, dto.ActionReject:
		if actor.Role != models.RoleAdmin && actor.Role != models.RoleStaff {
			return appErrors.ErrForbidden
		}
	case dto.ActionCancel:
		// ownership is checked by the lifecycle, which has the request loaded
	default:
		return appErrors.WithRef(appErrors.ErrValidation, "action")
	}
	return nil
}

func (c *ApprovalCoordinator) begin(requestID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[requestID]; busy {
		return false
	}
	c.inflight[requestID] = struct{}{}
	return true
}

func (c *ApprovalCoordinator) end(requestID string) {
	c.mu.Lock()
	delete(c.inflight, requestID)
	c.mu.Unlock()
}
