package repository

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/silverbladeidn/inventopia-api/internal/models"
)

func requestHeaderRows(requests ...models.ItemRequest) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "request_number", "user_id", "note", "admin_note", "status", "created_at", "updated_at", "approved_at"})
	for _, r := range requests {
		rows.AddRow(r.ID, r.RequestNumber, r.UserID, r.Note, r.AdminNote, r.Status, time.Now(), time.Now(), r.ApprovedAt)
	}
	return rows
}

func TestRequestRepositoryCreateAssignsNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO item_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ItemRequest{UserID: "user-1"}
	require.NoError(t, repo.Create(context.Background(), request))
	require.NotEmpty(t, request.ID)
	require.True(t, strings.HasPrefix(request.RequestNumber, "REQ-"))
	require.Equal(t, models.RequestStatusDraft, request.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryGetByIDLoadsDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	mock.ExpectQuery(regexp.QuoteMeta("FROM item_requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(requestHeaderRows(models.ItemRequest{
			ID: "req-1", RequestNumber: "REQ-20260830-ABCDEF01", UserID: "user-1", Status: models.RequestStatusPending,
		}))
	detailRows := sqlmock.NewRows([]string{"id", "request_id", "product_id", "requested_quantity", "approved_quantity", "status", "created_at", "updated_at"}).
		AddRow("det-1", "req-1", "prod-1", 4, nil, models.RequestStatusDraft, time.Now(), time.Now()).
		AddRow("det-2", "req-1", "prod-2", 2, nil, models.RequestStatusDraft, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM request_details WHERE request_id = $1 ORDER BY created_at ASC")).
		WithArgs("req-1").
		WillReturnRows(detailRows)

	request, err := repo.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, request.Details, 2)
	require.Equal(t, "prod-1", request.Details[0].ProductID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositorySaveDraftGuardsOnStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE item_requests SET note")).
		WithArgs(nil, sqlmock.AnyArg(), "req-1", models.RequestStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SaveDraft(context.Background(), DraftSave{RequestID: "req-1"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositorySaveDraftFlushesEdits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE item_requests SET note")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE request_details SET requested_quantity")).
		WithArgs(5, sqlmock.AnyArg(), "det-1", "req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM request_details")).
		WithArgs("req-1", "det-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO request_details")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	save := DraftSave{
		RequestID:  "req-1",
		Edited:     map[string]int{"det-1": 5},
		RemovedIDs: []string{"det-2"},
		NewDetails: []models.RequestDetail{{ProductID: "prod-3", RequestedQuantity: 1}},
	}
	require.NoError(t, repo.SaveDraft(context.Background(), save))
	require.NotEmpty(t, save.NewDetails[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateStatusGuardFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE item_requests")).
		WithArgs(models.RequestStatusPending, nil, nil, sqlmock.AnyArg(), "req-1", models.RequestStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), StatusUpdate{
		RequestID:    "req-1",
		FromStatuses: []models.RequestStatus{models.RequestStatusDraft},
		Status:       models.RequestStatusPending,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCommitTransition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE item_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE request_details SET approved_quantity")).
		WithArgs(4, models.RequestStatusApproved, sqlmock.AnyArg(), "det-1", "req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock_quantity")).
		WithArgs(6, models.StockStatusInStock, sqlmock.AnyArg(), "prod-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_movements")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CommitTransition(context.Background(), Transition{
		Request: StatusUpdate{
			RequestID:    "req-1",
			FromStatuses: []models.RequestStatus{models.RequestStatusPending},
			Status:       models.RequestStatusApproved,
			ApprovedAt:   &now,
		},
		Decisions: []DetailDecision{{DetailID: "det-1", ApprovedQuantity: 4, Status: models.RequestStatusApproved}},
		Stock:     []StockWrite{{ProductID: "prod-1", QuantityBefore: 10, QuantityAfter: 6, Status: models.StockStatusInStock}},
		Movements: []models.StockMovement{{
			ProductID: "prod-1", Kind: models.StockOpSubtract, Amount: 4,
			QuantityBefore: 10, QuantityAfter: 6, Reason: "request approval", ActorID: "admin-1",
		}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCommitTransitionRollsBackOnStockConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db, "REQ")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE item_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock_quantity")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CommitTransition(context.Background(), Transition{
		Request: StatusUpdate{
			RequestID:    "req-1",
			FromStatuses: []models.RequestStatus{models.RequestStatusPending},
			Status:       models.RequestStatusApproved,
		},
		Stock: []StockWrite{{ProductID: "prod-1", QuantityBefore: 10, QuantityAfter: 6, Status: models.StockStatusInStock}},
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
