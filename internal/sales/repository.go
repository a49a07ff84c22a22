package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rgstore/rgstore-pos/internal/catalog"
	"github.com/rgstore/rgstore-pos/internal/ledger"
	"github.com/rgstore/rgstore-pos/internal/platform/db"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

// TxRepository exposes the operations the processor runs inside one
// checkout transaction.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (catalog.Product, error)
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
	InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error)
	UpdateStock(ctx context.Context, productID int64, newStock int) error
	InsertMovement(ctx context.Context, m ledger.Movement) error
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx wraps the callback in a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

type txRepo struct {
	tx pgx.Tx
}

const productColumns = `id, sku, barcode, name, category, price, cost, stock, low_stock_threshold, is_active, created_at, updated_at`

func (r *txRepo) GetProductForUpdate(ctx context.Context, productID int64) (catalog.Product, error) {
	var p catalog.Product
	err := r.tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, productID,
	).Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Price, &p.Cost,
		&p.Stock, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	err := r.tx.QueryRow(ctx,
		`INSERT INTO sales (idempotency_key, total_amount, payment_method, amount_tendered, change, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		sale.IdempotencyKey, sale.TotalAmount, sale.PaymentMethod,
		sale.AmountTendered, sale.Change, time.Now().UTC(),
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Sale{}, shared.ErrConflict
		}
		return Sale{}, err
	}
	return sale, nil
}

func (r *txRepo) InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error) {
	err := r.tx.QueryRow(ctx,
		`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&item.ID)
	return item, err
}

func (r *txRepo) UpdateStock(ctx context.Context, productID int64, newStock int) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`,
		newStock, time.Now().UTC(), productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepo) InsertMovement(ctx context.Context, m ledger.Movement) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO stock_movements (product_id, type, quantity, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ProductID, string(m.Type), m.Quantity, m.Reason, time.Now().UTC())
	return err
}

// Get loads one sale with its items and product snapshots.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, error) {
	var s Sale
	err := r.pool.QueryRow(ctx,
		`SELECT id, idempotency_key, total_amount, payment_method, amount_tendered, change, created_at
		 FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.IdempotencyKey, &s.TotalAmount, &s.PaymentMethod, &s.AmountTendered, &s.Change, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.ErrNotFound
	}
	if err != nil {
		return Sale{}, err
	}

	items, err := r.itemsForSales(ctx, []int64{id})
	if err != nil {
		return Sale{}, err
	}
	s.Items = items[id]
	return s, nil
}

// List returns sales within the filter window, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	query := `SELECT id, idempotency_key, total_amount, payment_method, amount_tendered, change, created_at FROM sales`
	args := []interface{}{}

	switch {
	case filter.Date != nil:
		start := filter.Date.Truncate(24 * time.Hour)
		query += ` WHERE created_at >= $1 AND created_at < $2`
		args = append(args, start, start.Add(24*time.Hour))
	case filter.Start != nil && filter.End != nil:
		query += ` WHERE created_at >= $1 AND created_at <= $2`
		args = append(args, *filter.Start, *filter.End)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Sale
	var ids []int64
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.IdempotencyKey, &s.TotalAmount, &s.PaymentMethod,
			&s.AmountTendered, &s.Change, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	items, err := r.itemsForSales(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *Repository) itemsForSales(ctx context.Context, saleIDs []int64) (map[int64][]SaleItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.subtotal,
		        p.id, p.sku, p.barcode, p.name, p.category, p.price, p.cost,
		        p.stock, p.low_stock_threshold, p.is_active, p.created_at, p.updated_at
		 FROM sale_items si
		 JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = ANY($1)
		 ORDER BY si.id`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]SaleItem)
	for rows.Next() {
		var it SaleItem
		var p catalog.Product
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal,
			&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Price, &p.Cost,
			&p.Stock, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		it.Product = p
		items[it.SaleID] = append(items[it.SaleID], it)
	}
	return items, rows.Err()
}
