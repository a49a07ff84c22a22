package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rgstore/rgstore-pos/internal/catalog"
	"github.com/rgstore/rgstore-pos/internal/platform/db"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

// TxRepository exposes the transactional operations the service runs
// between locking a product row and committing.
type TxRepository interface {
	InsertProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	GetProductForUpdate(ctx context.Context, productID int64) (catalog.Product, error)
	UpdateStock(ctx context.Context, productID int64, newStock int) error
	InsertMovement(ctx context.Context, m Movement) (Movement, error)
}

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

type txRepo struct {
	tx pgx.Tx
}

const productColumns = `id, sku, barcode, name, category, price, cost, stock, low_stock_threshold, is_active, created_at, updated_at`

// InsertProduct creates the product row inside the transaction that also
// writes its opening movement.
func (r *txRepo) InsertProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	now := time.Now().UTC()
	err := r.tx.QueryRow(ctx,
		`INSERT INTO products (sku, barcode, name, category, price, cost, stock, low_stock_threshold, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		 RETURNING id`,
		p.SKU, p.Barcode, p.Name, p.Category, p.Price, p.Cost, p.Stock, p.LowStockThreshold, p.IsActive, now,
	).Scan(&p.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return catalog.Product{}, shared.ErrConflict
		}
		return catalog.Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// GetProductForUpdate locks the product row for the remainder of the
// transaction. The check-then-decrement sequence depends on this lock.
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

func (r *txRepo) InsertMovement(ctx context.Context, m Movement) (Movement, error) {
	err := r.tx.QueryRow(ctx,
		`INSERT INTO stock_movements (product_id, type, quantity, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.ProductID, string(m.Type), m.Quantity, m.Reason, time.Now().UTC(),
	).Scan(&m.ID, &m.CreatedAt)
	return m, err
}

// ListMovements returns the movement trail for one product, newest first.
func (r *Repository) ListMovements(ctx context.Context, productID int64, filter MovementFilter) ([]Movement, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, type, quantity, reason, created_at
		 FROM stock_movements
		 WHERE product_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Reason, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// FindDrift compares every product's stock counter against the signed sum
// of its movements. A clean ledger returns no rows.
func (r *Repository) FindDrift(ctx context.Context) ([]Drift, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.sku, p.stock,
		        COALESCE(SUM(CASE WHEN m.type = 'IN' THEN m.quantity ELSE -m.quantity END), 0) AS movement_sum
		 FROM products p
		 LEFT JOIN stock_movements m ON m.product_id = p.id
		 GROUP BY p.id, p.sku, p.stock
		 HAVING p.stock <> COALESCE(SUM(CASE WHEN m.type = 'IN' THEN m.quantity ELSE -m.quantity END), 0)
		 ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.ProductID, &d.SKU, &d.Stock, &d.MovementSum); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}
