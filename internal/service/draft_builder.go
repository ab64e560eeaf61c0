package service

import (
	"github.com/silverbladeidn/inventopia-api/internal/models"
	appErrors "github.com/silverbladeidn/inventopia-api/pkg/errors"
)

// DraftSelection is a staged product line not yet attached to a persisted
// detail id.
type DraftSelection struct {
	ProductID string
	Quantity  int
}

// DraftBuilder accumulates edits to one draft request before submission. It
// never mutates the details it was constructed with: edits and removals are
// tracked separately and merged on read, so a failed validation cannot corrupt
// the draft and the original lines stay available for diffing.
type DraftBuilder struct {
	products  map[string]models.Product
	existing  []models.RequestDetail
	edits     map[string]int
	removed   map[string]struct{}
	selection *DraftSelection
}

// NewDraftBuilder snapshots the draft's persisted details together with the
// current product view used for stock checks.
func NewDraftBuilder(details []models.RequestDetail, products []models.Product) *DraftBuilder {
	b := &DraftBuilder{
		products: make(map[string]models.Product, len(products)),
		existing: make([]models.RequestDetail, len(details)),
		edits:    make(map[string]int),
		removed:  make(map[string]struct{}),
	}
	copy(b.existing, details)
	for _, p := range products {
		b.products[p.ID] = p
	}
	return b
}

// RefreshProducts replaces the product view, typically right before a
// CanSubmit check, so stock that changed underneath the draft is caught.
func (b *DraftBuilder) RefreshProducts(products []models.Product) {
	b.products = make(map[string]models.Product, len(products))
	for _, p := range products {
		b.products[p.ID] = p
	}
}

// SetQuantity records an edited quantity for an existing detail.
func (b *DraftBuilder) SetQuantity(detailID string, quantity int) error {
	detail := b.detail(detailID)
	if detail == nil {
		return appErrors.WithRef(appErrors.ErrNotFound, detailID)
	}
	if _, gone := b.removed[detailID]; gone {
		return appErrors.WithRef(appErrors.ErrNotFound, detailID)
	}
	product, ok := b.products[detail.ProductID]
	if !ok {
		return appErrors.WithRef(appErrors.ErrNotFound, detail.ProductID)
	}
	if quantity < 1 || quantity > product.StockQuantity {
		return appErrors.WithRef(appErrors.ErrQuantityOutOfRange, detailID)
	}
	b.edits[detailID] = quantity
	return nil
}

// RemoveDetail marks an existing detail for deletion.
func (b *DraftBuilder) RemoveDetail(detailID string) error {
	if b.detail(detailID) == nil {
		return appErrors.WithRef(appErrors.ErrNotFound, detailID)
	}
	b.removed[detailID] = struct{}{}
	delete(b.edits, detailID)
	return nil
}

// AddNewItem stages a product line not yet persisted to the draft. A request
// carries at most one line per product, and only one selection can be staged
// at a time; it must be saved or cleared before staging another.
func (b *DraftBuilder) AddNewItem(productID string, quantity int) error {
	product, ok := b.products[productID]
	if !ok {
		return appErrors.WithRef(appErrors.ErrNotFound, productID)
	}
	if b.selection != nil {
		return appErrors.Clone(appErrors.ErrConflict, "another item is already staged for this draft")
	}
	for _, detail := range b.existing {
		if _, gone := b.removed[detail.ID]; gone {
			continue
		}
		if detail.ProductID == productID {
			return appErrors.WithRef(appErrors.ErrDuplicateProduct, productID)
		}
	}
	if quantity < 1 || quantity > product.StockQuantity {
		return appErrors.WithRef(appErrors.ErrQuantityOutOfRange, productID)
	}
	b.selection = &DraftSelection{ProductID: productID, Quantity: quantity}
	return nil
}

// ClearSelection drops the staged line, if any.
func (b *DraftBuilder) ClearSelection() {
	b.selection = nil
}

// Selection returns a copy of the staged line, or nil.
func (b *DraftBuilder) Selection() *DraftSelection {
	if b.selection == nil {
		return nil
	}
	s := *b.selection
	return &s
}

// EffectiveDetails merges the surviving existing details (edits applied) with
// the staged selection. The view is recomputed on every call and returned as
// copies, so readers cannot corrupt the builder's state.
func (b *DraftBuilder) EffectiveDetails() []models.RequestDetail {
	result := make([]models.RequestDetail, 0, len(b.existing)+1)
	for _, detail := range b.existing {
		if _, gone := b.removed[detail.ID]; gone {
			continue
		}
		if qty, edited := b.edits[detail.ID]; edited {
			detail.RequestedQuantity = qty
		}
		result = append(result, detail)
	}
	if b.selection != nil {
		result = append(result, models.RequestDetail{
			ProductID:         b.selection.ProductID,
			RequestedQuantity: b.selection.Quantity,
		})
	}
	return result
}

// CanSubmit reports whether the effective view is non-empty and every line is
// still coverable by current stock.
func (b *DraftBuilder) CanSubmit() bool {
	details := b.EffectiveDetails()
	if len(details) == 0 {
		return false
	}
	for _, detail := range details {
		product, ok := b.products[detail.ProductID]
		if !ok || detail.RequestedQuantity > product.StockQuantity {
			return false
		}
	}
	return true
}

func (b *DraftBuilder) detail(detailID string) *models.RequestDetail {
	for i := range b.existing {
		if b.existing[i].ID == detailID {
			return &b.existing[i]
		}
	}
	return nil
}
