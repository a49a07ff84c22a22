package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

// Repository runs the read-only aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesTotals sums revenue and counts transactions in [start, end).
func (r *Repository) SalesTotals(ctx context.Context, start, end time.Time) (decimal.Decimal, int, error) {
	var revenue decimal.Decimal
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		 FROM sales WHERE created_at >= $1 AND created_at < $2`,
		start, end).Scan(&revenue, &count)
	return revenue, count, err
}

// TopProducts ranks products by quantity sold in [start, end). Ties keep
// first-encounter order via the lowest sale item id.
func (r *Repository) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.category, SUM(si.quantity) AS qty, SUM(si.subtotal) AS revenue
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 JOIN products p ON p.id = si.product_id
		 WHERE s.created_at >= $1 AND s.created_at < $2
		 GROUP BY p.id, p.name, p.category
		 ORDER BY qty DESC, MIN(si.id) ASC
		 LIMIT $3`, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductID, &t.Name, &t.Category, &t.Qty, &t.Revenue); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

// Bucketing converts created_at out of timestamptz before extracting, so
// the buckets line up with the UTC window bounds regardless of the
// session timezone.
const (
	hourlyTotalsQuery = `SELECT EXTRACT(HOUR FROM created_at AT TIME ZONE 'UTC')::int AS hour, COUNT(*), COALESCE(SUM(total_amount), 0)
		 FROM sales WHERE created_at >= $1 AND created_at < $2
		 GROUP BY hour`
	dailyTotalsQuery = `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*), COALESCE(SUM(total_amount), 0)
		 FROM sales WHERE created_at >= $1 AND created_at < $2
		 GROUP BY day`
)

// HourlyTotals groups sales in [start, end) by hour of day. Hours with no
// sales are absent; the service zero-fills them.
func (r *Repository) HourlyTotals(ctx context.Context, start, end time.Time) (map[int]DayBucketTotals, error) {
	rows, err := r.pool.Query(ctx, hourlyTotalsQuery, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int]DayBucketTotals)
	for rows.Next() {
		var hour int
		var t DayBucketTotals
		if err := rows.Scan(&hour, &t.Transactions, &t.Revenue); err != nil {
			return nil, err
		}
		totals[hour] = t
	}
	return totals, rows.Err()
}

// DayBucketTotals pairs a transaction count with summed revenue.
type DayBucketTotals struct {
	Transactions int
	Revenue      decimal.Decimal
}

// DailyTotals groups sales in [start, end) by calendar day (UTC).
func (r *Repository) DailyTotals(ctx context.Context, start, end time.Time) (map[string]DayBucketTotals, error) {
	rows, err := r.pool.Query(ctx, dailyTotalsQuery, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]DayBucketTotals)
	for rows.Next() {
		var day string
		var t DayBucketTotals
		if err := rows.Scan(&day, &t.Transactions, &t.Revenue); err != nil {
			return nil, err
		}
		totals[day] = t
	}
	return totals, rows.Err()
}

// ActiveProducts loads every active product ordered by stock ascending,
// the order the inventory report presents them in.
func (r *Repository) ActiveProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sku, barcode, name, category, price, cost, stock, low_stock_threshold, is_active, created_at, updated_at
		 FROM products WHERE is_active = TRUE ORDER BY stock ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Price, &p.Cost,
			&p.Stock, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
