package dto

// NewItem stages one product line for a draft.
type NewItem struct {
	ProductID string `json:"product_id" binding:"required" validate:"required"`
	Quantity  int    `json:"quantity" binding:"required" validate:"required,min=1"`
}

// CreateRequestRequest opens a new draft, optionally with a first line.
type CreateRequestRequest struct {
	Note string   `json:"note"`
	Item *NewItem `json:"item,omitempty"`
}

// DraftItemsUpdate carries one round of draft edits: quantity changes on
// existing lines, removals, and at most one newly staged line.
type DraftItemsUpdate struct {
	SetQuantities map[string]int `json:"set_quantities,omitempty"`
	Remove        []string       `json:"remove,omitempty"`
	Add           *NewItem       `json:"add,omitempty"`
	Note          *string        `json:"note,omitempty"`
}

// Action kinds accepted by the approval dispatch endpoint.
const (
	ActionApprove        = "approve"
	ActionPartialApprove = "partial_approve"
	ActionReject         = "reject"
	ActionCancel         = "cancel"
)

// RequestAction is the payload dispatched against a pending request.
type RequestAction struct {
	Action     string         `json:"action" binding:"required,oneof=approve partial_approve reject cancel" validate:"required,oneof=approve partial_approve reject cancel"`
	Quantities map[string]int `json:"quantities,omitempty"`
	Note       string         `json:"note,omitempty"`
}

// RequestQuery filters request listings.
type RequestQuery struct {
	Status string `form:"status"`
	UserID string `form:"user_id"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
