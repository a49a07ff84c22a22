// Package ledger owns the append-only stock movement trail and the
// adjustment processor that mutates a product's stock counter together
// with its ledger row in one transaction.
package ledger

import (
	"time"
)

// MovementType enumerates ledger directions.
type MovementType string

const (
	// MovementIn represents inbound stock.
	MovementIn MovementType = "IN"
	// MovementOut represents outbound stock.
	MovementOut MovementType = "OUT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// Movement is one append-only ledger row. Rows are never updated or
// deleted: signed sums must reproduce the product's stock counter.
type Movement struct {
	ID        int64        `json:"id"`
	ProductID int64        `json:"productId"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	Reason    *string      `json:"reason,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Signed returns the movement quantity with its direction applied.
func (m Movement) Signed() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

// AdjustmentInput describes a manual IN/OUT correction.
type AdjustmentInput struct {
	ProductID int64
	Quantity  int
	Type      MovementType
	Reason    *string
}

// AdjustStockRequest is the HTTP body for stock adjustments.
type AdjustStockRequest struct {
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Type     string  `json:"type" validate:"required,oneof=IN OUT"`
	Reason   *string `json:"reason,omitempty" validate:"omitempty,max=200"`
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	Limit int
}

// Drift is one reconciliation finding: a product whose movement sum no
// longer reproduces its stock counter.
type Drift struct {
	ProductID   int64  `json:"productId"`
	SKU         string `json:"sku"`
	Stock       int    `json:"stock"`
	MovementSum int    `json:"movementSum"`
}
