// Package catalog owns the canonical product records: prices, costs,
// stock counters and replenishment thresholds. Stock is mutated only by
// the ledger and sales packages; everything else is edited here.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. Deletion is always soft: movements
// and sale items keep foreign references to the row forever.
type Product struct {
	ID                int64           `json:"id"`
	SKU               string          `json:"sku"`
	Barcode           *string         `json:"barcode,omitempty"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// IsLowStock reports whether the product is at or below its threshold.
// Derived at read time, never stored.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// CreateProductRequest carries the fields accepted on product creation.
// Stock seeds an initial IN movement when positive.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,max=64"`
	Barcode           *string         `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name              string          `json:"name" validate:"required,max=200"`
	Category          string          `json:"category" validate:"required,max=100"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Stock             int             `json:"stock" validate:"gte=0"`
	LowStockThreshold *int            `json:"lowStockThreshold,omitempty" validate:"omitempty,gte=0"`
}

// UpdateProductRequest is a partial update: nil means "leave the field
// alone", a set pointer means "write this value". Barcode distinguishes a
// third state through the empty string, which clears it.
type UpdateProductRequest struct {
	SKU               *string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Barcode           *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name              *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Category          *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool            `json:"isActive,omitempty"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search   string
	Category string
	IsActive *bool
	LowStock bool
}

// ProductView is a Product plus its derived low-stock flag, the shape
// every read endpoint returns.
type ProductView struct {
	Product
	IsLowStock bool `json:"isLowStock"`
}

// NewProductView attaches the derived flag.
func NewProductView(p Product) ProductView {
	return ProductView{Product: p, IsLowStock: p.IsLowStock()}
}
