package models

import "time"

// RequestStatus captures the item request lifecycle.
type RequestStatus string

const (
	RequestStatusDraft             RequestStatus = "DRAFT"
	RequestStatusPending           RequestStatus = "PENDING"
	RequestStatusApproved          RequestStatus = "APPROVED"
	RequestStatusPartiallyApproved RequestStatus = "PARTIALLY_APPROVED"
	RequestStatusRejected          RequestStatus = "REJECTED"
	RequestStatusCancelled         RequestStatus = "CANCELLED"
	RequestStatusCompleted         RequestStatus = "COMPLETED"
)

// Terminal reports whether no further transition is allowed from the status.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusRejected, RequestStatusCancelled, RequestStatusCompleted:
		return true
	}
	return false
}

// RequestDetail is one product line inside an item request. ApprovedQuantity
// is nil until a reviewer decides; it never exceeds RequestedQuantity.
type RequestDetail struct {
	ID                string        `db:"id" json:"id"`
	RequestID         string        `db:"request_id" json:"request_id"`
	ProductID         string        `db:"product_id" json:"product_id"`
	RequestedQuantity int           `db:"requested_quantity" json:"requested_quantity"`
	ApprovedQuantity  *int          `db:"approved_quantity" json:"approved_quantity,omitempty"`
	Status            RequestStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// ItemRequest aggregates the request header and its ordered detail lines.
type ItemRequest struct {
	ID            string          `db:"id" json:"id"`
	RequestNumber string          `db:"request_number" json:"request_number"`
	UserID        string          `db:"user_id" json:"user_id"`
	Note          string          `db:"note" json:"note,omitempty"`
	AdminNote     *string         `db:"admin_note" json:"admin_note,omitempty"`
	Status        RequestStatus   `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	ApprovedAt    *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	Details       []RequestDetail `db:"-" json:"details"`
}

// Detail returns the line with the given id, or nil.
func (r *ItemRequest) Detail(detailID string) *RequestDetail {
	for i := range r.Details {
		if r.Details[i].ID == detailID {
			return &r.Details[i]
		}
	}
	return nil
}

// RequestFilter constrains request listing queries.
type RequestFilter struct {
	Status []RequestStatus
	UserID string
	Limit  int
	Offset int
}
