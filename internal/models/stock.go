package models

import "time"

// StockOperationKind enumerates the supported stock mutations.
type StockOperationKind string

const (
	StockOpAdd      StockOperationKind = "ADD"
	StockOpSubtract StockOperationKind = "SUBTRACT"
	StockOpSet      StockOperationKind = "SET"
)

// StockOperation describes a single stock mutation. For ADD and SUBTRACT the
// amount is a delta; for SET it is the absolute target quantity.
type StockOperation struct {
	Kind   StockOperationKind `json:"kind"`
	Amount int                `json:"amount"`
	Reason string             `json:"reason"`
	Notes  string             `json:"notes,omitempty"`
}

// StockMovement is the audit trail row written for every applied stock
// mutation, whether issued directly or by a request lifecycle transition.
type StockMovement struct {
	ID             string             `db:"id" json:"id"`
	ProductID      string             `db:"product_id" json:"product_id"`
	Kind           StockOperationKind `db:"kind" json:"kind"`
	Amount         int                `db:"amount" json:"amount"`
	QuantityBefore int                `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int                `db:"quantity_after" json:"quantity_after"`
	Reason         string             `db:"reason" json:"reason"`
	Notes          *string            `db:"notes" json:"notes,omitempty"`
	ActorID        string             `db:"actor_id" json:"actor_id"`
	RequestID      *string            `db:"request_id" json:"request_id,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// StockDelta reports one product's quantity change applied by a transition so
// callers can refresh cached views without re-fetching.
type StockDelta struct {
	ProductID     string `json:"product_id"`
	Delta         int    `json:"delta"`
	QuantityAfter int    `json:"quantity_after"`
}
