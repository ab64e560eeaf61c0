package models

import "time"

// StockStatus is derived from the stock quantity and the minimum threshold.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// StockStatusFor recomputes the derived status for a quantity. Out of stock
// wins over low stock when the quantity is zero.
func StockStatusFor(quantity, minStockLevel int) StockStatus {
	switch {
	case quantity == 0:
		return StockStatusOutOfStock
	case quantity <= minStockLevel:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// Product is a catalog entry with its current stock position. StockQuantity
// is mutated only through ledger operations or lifecycle transitions.
type Product struct {
	ID            string      `db:"id" json:"id"`
	SKU           string      `db:"sku" json:"sku"`
	Name          string      `db:"name" json:"name"`
	Description   string      `db:"description" json:"description,omitempty"`
	StockQuantity int         `db:"stock_quantity" json:"stock_quantity"`
	MinStockLevel int         `db:"min_stock_level" json:"min_stock_level"`
	MaxStockLevel int         `db:"max_stock_level" json:"max_stock_level"`
	Status        StockStatus `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// RecomputeStatus refreshes the derived status after a quantity change.
func (p *Product) RecomputeStatus() {
	p.Status = StockStatusFor(p.StockQuantity, p.MinStockLevel)
}

// ProductFilter constrains catalog listing queries.
type ProductFilter struct {
	Status   StockStatus
	Search   string
	Page     int
	PageSize int
}
