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

const (
	requestColumns = `id, request_number, user_id, note, admin_note, status, created_at, updated_at, approved_at`
	detailColumns  = `id, request_id, product_id, requested_quantity, approved_quantity, status, created_at, updated_at`
)

// RequestRepository persists item requests and their detail lines.
type RequestRepository struct {
	db           *sqlx.DB
	numberPrefix string
}

// NewRequestRepository constructs the repository. numberPrefix seeds the
// server-assigned request numbers.
func NewRequestRepository(db *sqlx.DB, numberPrefix string) *RequestRepository {
	if numberPrefix == "" {
		numberPrefix = "REQ"
	}
	return &RequestRepository{db: db, numberPrefix: numberPrefix}
}

func (r *RequestRepository) nextRequestNumber(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", r.numberPrefix, now.Format("20060102"), fragment)
}

// Create inserts a new draft request header.
func (r *RequestRepository) Create(ctx context.Context, request *models.ItemRequest) error {
	now := time.Now().UTC()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.RequestNumber == "" {
		request.RequestNumber = r.nextRequestNumber(now)
	}
	if request.Status == "" {
		request.Status = models.RequestStatusDraft
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO item_requests
	(id, request_number, user_id, note, admin_note, status, created_at, updated_at, approved_at)
	VALUES (:id, :request_number, :user_id, :note, :admin_note, :status, :created_at, :updated_at, :approved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create item request: %w", err)
	}
	return nil
}

// GetByID fetches a request with its detail lines, oldest line first.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.ItemRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM item_requests WHERE id = $1`, requestColumns)
	var request models.ItemRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}

	detailQuery := fmt.Sprintf(`SELECT %s FROM request_details WHERE request_id = $1 ORDER BY created_at ASC, id ASC`, detailColumns)
	if err := r.db.SelectContext(ctx, &request.Details, detailQuery, id); err != nil {
		return nil, fmt.Errorf("load request details: %w", err)
	}
	return &request, nil
}

// List returns request headers matching the filter, newest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.ItemRequest, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM item_requests`, requestColumns))

	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.ItemRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list item requests: %w", err)
	}
	return requests, nil
}

// DraftSave groups the edits flushed from a draft builder.
type DraftSave struct {
	RequestID  string
	Note       *string
	Edited     map[string]int
	RemovedIDs []string
	NewDetails []models.RequestDetail
}

// SaveDraft flushes builder edits in one transaction, guarded on the request
// still being a draft.
func (r *RequestRepository) SaveDraft(ctx context.Context, save DraftSave) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draft save: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	result, err := tx.ExecContext(ctx,
		`UPDATE item_requests SET note = COALESCE($1, note), updated_at = $2 WHERE id = $3 AND status = $4`,
		save.Note, now, save.RequestID, models.RequestStatusDraft)
	if err != nil {
		return fmt.Errorf("touch draft request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check draft request: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	for detailID, quantity := range save.Edited {
		if _, err := tx.ExecContext(ctx,
			`UPDATE request_details SET requested_quantity = $1, updated_at = $2 WHERE id = $3 AND request_id = $4`,
			quantity, now, detailID, save.RequestID); err != nil {
			return fmt.Errorf("update draft detail %s: %w", detailID, err)
		}
	}

	if len(save.RemovedIDs) > 0 {
		query, args, err := sqlx.In(`DELETE FROM request_details WHERE request_id = ? AND id IN (?)`, save.RequestID, save.RemovedIDs)
		if err != nil {
			return fmt.Errorf("build draft delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("delete draft details: %w", err)
		}
	}

	for i := range save.NewDetails {
		detail := &save.NewDetails[i]
		if detail.ID == "" {
			detail.ID = uuid.NewString()
		}
		detail.RequestID = save.RequestID
		if detail.Status == "" {
			detail.Status = models.RequestStatusDraft
		}
		detail.CreatedAt = now
		detail.UpdatedAt = now
		const query = `INSERT INTO request_details
		(id, request_id, product_id, requested_quantity, approved_quantity, status, created_at, updated_at)
		VALUES (:id, :request_id, :product_id, :requested_quantity, :approved_quantity, :status, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, detail); err != nil {
			return fmt.Errorf("insert draft detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft save: %w", err)
	}
	commit = true
	return nil
}

// StatusUpdate describes a plain status move with no stock side effects.
type StatusUpdate struct {
	RequestID    string
	FromStatuses []models.RequestStatus
	Status       models.RequestStatus
	AdminNote    *string
	ApprovedAt   *time.Time
}

// UpdateStatus moves a request between statuses, guarded on the current
// status still being one of FromStatuses. Returns sql.ErrNoRows when the
// guard fails, which callers surface as an invalid transition race.
func (r *RequestRepository) UpdateStatus(ctx context.Context, update StatusUpdate) error {
	return updateRequestStatus(ctx, r.db, update)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func updateRequestStatus(ctx context.Context, e execer, update StatusUpdate) error {
	if len(update.FromStatuses) == 0 {
		return fmt.Errorf("status update for %s: missing from statuses", update.RequestID)
	}
	args := []interface{}{update.Status, update.AdminNote, update.ApprovedAt, time.Now().UTC(), update.RequestID}
	placeholders := make([]string, len(update.FromStatuses))
	for i, status := range update.FromStatuses {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE item_requests
	SET status = $1, admin_note = COALESCE($2, admin_note), approved_at = COALESCE($3, approved_at), updated_at = $4
	WHERE id = $5 AND status IN (%s)`, strings.Join(placeholders, ","))

	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check request status update: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DetailDecision is a reviewer's outcome for one line.
type DetailDecision struct {
	DetailID         string
	ApprovedQuantity int
	Status           models.RequestStatus
}

// StockWrite is one product quantity change applied by a transition.
type StockWrite struct {
	ProductID      string
	QuantityBefore int
	QuantityAfter  int
	Status         models.StockStatus
}

// Transition commits a lifecycle transition atomically: the request status
// move, the per-line decisions, every conditional product stock write, and the
// audit movements either all land or none do.
type Transition struct {
	Request   StatusUpdate
	Decisions []DetailDecision
	Stock     []StockWrite
	Movements []models.StockMovement
}

// CommitTransition executes a transition in a single transaction.
func (r *RequestRepository) CommitTransition(ctx context.Context, transition Transition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if err := updateRequestStatus(ctx, tx, transition.Request); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, decision := range transition.Decisions {
		if _, err := tx.ExecContext(ctx,
			`UPDATE request_details SET approved_quantity = $1, status = $2, updated_at = $3 WHERE id = $4 AND request_id = $5`,
			decision.ApprovedQuantity, decision.Status, now, decision.DetailID, transition.Request.RequestID); err != nil {
			return fmt.Errorf("update detail decision %s: %w", decision.DetailID, err)
		}
	}

	for _, write := range transition.Stock {
		if err := applyStockUpdate(ctx, tx, write.ProductID, write.QuantityBefore, write.QuantityAfter, write.Status); err != nil {
			return err
		}
	}

	for i := range transition.Movements {
		if err := insertMovement(ctx, tx, &transition.Movements[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	commit = true
	return nil
}
