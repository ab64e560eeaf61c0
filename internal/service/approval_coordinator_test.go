package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/silverbladeidn/inventopia-api/internal/dto"
	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

// blockingLifecycle parks every action until released so tests can hold a
// request's in-flight flag open.
type blockingLifecycle struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func newBlockingLifecycle() *blockingLifecycle {
	return &blockingLifecycle{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (l *blockingLifecycle) run() (*ActionResult, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	l.started <- struct{}{}
	<-l.release
	return &ActionResult{Request: &models.ItemRequest{Status: models.RequestStatusApproved}}, nil
}

func (l *blockingLifecycle) Approve(context.Context, string, *models.JWTClaims) (*ActionResult, error) {
	return l.run()
}

func (l *blockingLifecycle) PartialApprove(context.Context, string, map[string]int, string, *models.JWTClaims) (*ActionResult, error) {
	return l.run()
}

func (l *blockingLifecycle) Reject(context.Context, string, string, *models.JWTClaims) (*ActionResult, error) {
	return l.run()
}

func (l *blockingLifecycle) Cancel(context.Context, string, *models.JWTClaims) (*ActionResult, error) {
	return l.run()
}

func TestCoordinatorSerialisesActionsPerRequest(t *testing.T) {
	lifecycle := newBlockingLifecycle()
	coord := NewApprovalCoordinator(lifecycle, nil)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := coord.Dispatch(ctx, "req-1", dto.RequestAction{Action: dto.ActionApprove}, adminClaims())
		firstDone <- err
	}()

	select {
	case <-lifecycle.started:
	case <-time.After(time.Second):
		t.Fatal("first action never started")
	}

	// second action on the same request is refused while the first holds the flag
	_, err := coord.Dispatch(ctx, "req-1", dto.RequestAction{Action: dto.ActionReject}, adminClaims())
	require.ErrorIs(t, err, appErrors.ErrActionInProgress)

	// a different request is unaffected
	otherDone := make(chan error, 1)
	go func() {
		_, err := coord.Dispatch(ctx, "req-2", dto.RequestAction{Action: dto.ActionApprove}, adminClaims())
		otherDone <- err
	}()
	select {
	case <-lifecycle.started:
	case <-time.After(time.Second):
		t.Fatal("action on second request blocked")
	}

	close(lifecycle.release)
	require.NoError(t, <-firstDone)
	require.NoError(t, <-otherDone)

	// flag released after completion, same request accepts a new action
	lifecycle.release = make(chan struct{})
	close(lifecycle.release)
	_, err = coord.Dispatch(ctx, "req-1", dto.RequestAction{Action: dto.ActionApprove}, adminClaims())
	require.NoError(t, err)
}

func TestCoordinatorRoleChecks(t *testing.T) {
	lifecycle := newBlockingLifecycle()
	close(lifecycle.release)
	coord := NewApprovalCoordinator(lifecycle, nil)
	ctx := context.Background()

	staff := &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}
	user := userClaims()

	_, err := coord.Dispatch(ctx, "req-1", dto.RequestAction{Action: dto.ActionApprove}, staff)
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = coord.Dispatch(ctx, "req-1", dto.RequestAction{Action: dto.ActionApprove}, user)
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	go func() { <-lifecycle.started }()
	_, err = coord.Dispatch(ctx, "req-1", dto.RequestAction{Action: dto.ActionPartialApprove}, staff)
	require.NoError(t, err)

	go func() { <-lifecycle.started }()
	_, err = coord.Dispatch(ctx, "req-2", dto.RequestAction{Action: dto.ActionReject}, staff)
	require.NoError(t, err)

	// cancel delegates ownership checks to the lifecycle
	go func() { <-lifecycle.started }()
	_, err = coord.Dispatch(ctx, "req-3", dto.RequestAction{Action: dto.ActionCancel}, user)
	require.NoError(t, err)

	_, err = coord.Dispatch(ctx, "req-4", dto.RequestAction{Action: "escalate"}, adminClaims())
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = coord.Dispatch(ctx, "req-5", dto.RequestAction{Action: dto.ActionApprove}, nil)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
