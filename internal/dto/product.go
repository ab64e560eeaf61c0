package dto

// AdjustStockRequest is the payload for a direct stock mutation.
type AdjustStockRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=ADD SUBTRACT SET" validate:"required,oneof=ADD SUBTRACT SET"`
	Amount int    `json:"amount"`
	Reason string `json:"reason" binding:"required" validate:"required"`
	Notes  string `json:"notes"`
}

// ProductQuery filters catalog listings.
type ProductQuery struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
