package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rgstore/rgstore-pos/internal/platform/db"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Update(ctx context.Context, id int64, p Product) (Product, error)
	SoftDelete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, sku, barcode, name, category, price, cost, stock, low_stock_threshold, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Price, &p.Cost,
		&p.Stock, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.IsActive != nil {
		argCount++
		query += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		query += ` AND (name ILIKE ` + ph + ` OR sku ILIKE ` + ph + ` OR barcode ILIKE ` + ph + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filter.Category)
	}
	if filter.LowStock {
		query += ` AND stock <= low_stock_threshold`
	}

	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode))
}

// GetBySKU looks up any product, active or soft-deleted, so that
// uniqueness checks cover the whole table.
func (r *repository) GetBySKU(ctx context.Context, sku string) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
}

func (r *repository) Update(ctx context.Context, id int64, p Product) (Product, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`UPDATE products
		 SET sku = $1, barcode = $2, name = $3, category = $4, price = $5, cost = $6,
		     low_stock_threshold = $7, is_active = $8, updated_at = $9
		 WHERE id = $10
		 RETURNING `+productColumns,
		p.SKU, p.Barcode, p.Name, p.Category, p.Price, p.Cost,
		p.LowStockThreshold, p.IsActive, now, id,
	).Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Price, &p.Cost,
		&p.Stock, &p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return Product{}, shared.ErrConflict
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT category FROM products WHERE is_active = TRUE ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
