// Package sales implements the sale transaction processor: validating a
// proposed sale against available stock and committing the sale, its
// items, the stock decrements and the OUT ledger rows as one unit.
package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

// PaymentMethodCash is the default payment method and the only one for
// which change is computed.
const PaymentMethodCash = "cash"

// Sale is an immutable checkout record. No update or delete path exists.
type Sale struct {
	ID             int64            `json:"id"`
	IdempotencyKey *string          `json:"idempotencyKey,omitempty"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	PaymentMethod  string           `json:"paymentMethod"`
	AmountTendered *decimal.Decimal `json:"amountTendered,omitempty"`
	Change         *decimal.Decimal `json:"change,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	Items          []SaleItem       `json:"saleItems"`
}

// SaleItem is one line of a sale, created together with it and never
// independently mutated. Product carries the snapshot resolved at
// checkout time.
type SaleItem struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"saleId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   catalog.Product `json:"product"`
}

// SaleItemInput is one proposed line item. UnitPrice is the price
// captured at ring-up: the processor trusts it over the catalog's
// current price so the sale price stays frozen.
type SaleItemInput struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreateSaleRequest is the checkout payload. IdempotencyKey lets a
// client retry a failed request without risking a duplicate sale.
type CreateSaleRequest struct {
	Items          []SaleItemInput  `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string           `json:"paymentMethod" validate:"omitempty,max=40"`
	AmountTendered *decimal.Decimal `json:"amountTendered,omitempty"`
	IdempotencyKey *string          `json:"idempotencyKey,omitempty" validate:"omitempty,uuid4"`
}

// ListFilter narrows sale listings. Date selects one calendar day;
// otherwise Start/End bound the window when both are set.
type ListFilter struct {
	Date  *time.Time
	Start *time.Time
	End   *time.Time
	Limit int
}
