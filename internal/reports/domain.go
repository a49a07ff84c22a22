// Package reports computes read-only sales and inventory aggregates.
// It holds no invariants beyond reading consistent snapshots.
package reports

import (
	"github.com/shopspring/decimal"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

// SalesSummary aggregates a time window of sales.
type SalesSummary struct {
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	TotalTransactions   int             `json:"totalTransactions"`
	AvgTransactionValue decimal.Decimal `json:"avgTransactionValue"`
}

// TopProduct is one entry of the best-seller ranking.
type TopProduct struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Qty       int             `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// HourBucket is one zero-fillable hour of the daily breakdown.
type HourBucket struct {
	Hour         int             `json:"hour"`
	Label        string          `json:"label"`
	Transactions int             `json:"transactions"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// DailyReport is the payload of GET /api/reports/daily.
type DailyReport struct {
	Date            string       `json:"date"`
	Summary         SalesSummary `json:"summary"`
	TopProducts     []TopProduct `json:"topProducts"`
	HourlyBreakdown []HourBucket `json:"hourlyBreakdown"`
}

// DayBucket is one zero-fillable day of the range breakdown.
type DayBucket struct {
	Date         string          `json:"date"`
	Revenue      decimal.Decimal `json:"revenue"`
	Transactions int             `json:"transactions"`
}

// RangeReport is the payload of GET /api/reports/range.
type RangeReport struct {
	Days int         `json:"days"`
	Data []DayBucket `json:"data"`
}

// CategoryValuation aggregates one category's active products.
type CategoryValuation struct {
	Count int             `json:"count"`
	Stock int             `json:"stock"`
	Value decimal.Decimal `json:"value"`
}

// InventorySummary heads the inventory report.
type InventorySummary struct {
	TotalProducts       int             `json:"totalProducts"`
	LowStockCount       int             `json:"lowStockCount"`
	OutOfStockCount     int             `json:"outOfStockCount"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	TotalRetailValue    decimal.Decimal `json:"totalRetailValue"`
}

// InventoryReport is the payload of GET /api/reports/inventory.
type InventoryReport struct {
	Summary          InventorySummary             `json:"summary"`
	LowStockProducts []catalog.ProductView        `json:"lowStockProducts"`
	ByCategory       map[string]CategoryValuation `json:"byCategory"`
}
