package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rgstore/rgstore-pos/internal/shared"
)

type memoryRepo struct {
	products   map[int64]Product
	nextID     int64
	lastFilter ListFilter
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	r.lastFilter = filter
	var out []Product
	for _, p := range r.products {
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		if filter.LowStock && !p.IsLowStock() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (r *memoryRepo) GetBySKU(ctx context.Context, sku string) (Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, p Product) (Product, error) {
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, p Product) (Product, error) {
	if _, ok := r.products[id]; !ok {
		return Product{}, shared.ErrNotFound
	}
	p.ID = id
	r.products[id] = p
	return p, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	p, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.IsActive = false
	r.products[id] = p
	return nil
}

func (r *memoryRepo) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.products {
		if p.IsActive && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

// fakeSeeder stands in for the ledger: it stores the product with the
// opening stock applied, or stores nothing on a forced failure.
type fakeSeeder struct {
	repo  *memoryRepo
	calls int
	err   error
}

func (s *fakeSeeder) CreateSeeded(ctx context.Context, p Product, openingStock int) (Product, error) {
	s.calls++
	if s.err != nil {
		return Product{}, s.err
	}
	p.Stock = openingStock
	return s.repo.Create(ctx, p)
}

func newService(repo *memoryRepo) (*Service, *fakeSeeder) {
	seeder := &fakeSeeder{repo: repo}
	return NewService(repo, seeder), seeder
}

func strPtr(s string) *string { return &s }

func TestCreateSeedsInitialStock(t *testing.T) {
	repo := newMemoryRepo()
	svc, seeder := newService(repo)

	view, err := svc.Create(context.Background(), CreateProductRequest{
		SKU:      "BEV-001",
		Name:     "Coca Cola 1.5L",
		Category: "Beverages",
		Price:    decimal.RequireFromString("85"),
		Cost:     decimal.RequireFromString("60"),
		Stock:    50,
	})
	require.NoError(t, err)
	require.Equal(t, 1, seeder.calls)
	require.Equal(t, 50, view.Stock)
	require.Equal(t, DefaultLowStockThreshold, view.LowStockThreshold)
	require.True(t, view.IsActive)
	require.False(t, view.IsLowStock)
}

func TestCreateZeroStock(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	view, err := svc.Create(context.Background(), CreateProductRequest{
		SKU:      "SNK-001",
		Name:     "Lays Classic 60g",
		Category: "Snacks",
		Price:    decimal.RequireFromString("45"),
	})
	require.NoError(t, err)
	require.Equal(t, 0, view.Stock)
	require.True(t, view.IsLowStock)
}

// A failed seed must not leave a zero-stock product behind.
func TestCreateSeedFailureCreatesNothing(t *testing.T) {
	repo := newMemoryRepo()
	seeder := &fakeSeeder{repo: repo, err: errors.New("insert movement: connection reset")}
	svc := NewService(repo, seeder)

	_, err := svc.Create(context.Background(), CreateProductRequest{
		SKU:      "BEV-001",
		Name:     "Coca Cola 1.5L",
		Category: "Beverages",
		Price:    decimal.RequireFromString("85"),
		Stock:    10,
	})
	require.Error(t, err)
	require.Empty(t, repo.products)
}

func TestCreateDuplicateSKU(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	req := CreateProductRequest{SKU: "BEV-001", Name: "Coke", Category: "Beverages", Price: decimal.RequireFromString("85")}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateDuplicateBarcode(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	_, err := svc.Create(context.Background(), CreateProductRequest{
		SKU: "BEV-001", Barcode: strPtr("4902102072939"), Name: "Coke", Category: "Beverages",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateProductRequest{
		SKU: "BEV-002", Barcode: strPtr("4902102072939"), Name: "Pepsi", Category: "Beverages",
	})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "No SKU", Category: "Misc"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateProductRequest{
		SKU: "NEG-001", Name: "Bad", Category: "Misc", Price: decimal.RequireFromString("-1"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdatePartial(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	created, err := svc.Create(context.Background(), CreateProductRequest{
		SKU: "BEV-001", Barcode: strPtr("4902102072939"), Name: "Coke", Category: "Beverages",
		Price: decimal.RequireFromString("85"),
	})
	require.NoError(t, err)

	price := decimal.RequireFromString("90")
	updated, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	require.True(t, updated.Price.Equal(price))
	require.Equal(t, "Coke", updated.Name)
	require.NotNil(t, updated.Barcode)

	// Empty barcode string clears the barcode.
	updated, err = svc.Update(context.Background(), created.ID, UpdateProductRequest{Barcode: strPtr("")})
	require.NoError(t, err)
	require.Nil(t, updated.Barcode)
}

func TestUpdateSKUConflict(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	_, err := svc.Create(context.Background(), CreateProductRequest{SKU: "BEV-001", Name: "Coke", Category: "Beverages"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateProductRequest{SKU: "BEV-002", Name: "Pepsi", Category: "Beverages"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.ID, UpdateProductRequest{SKU: strPtr("BEV-001")})
	require.ErrorIs(t, err, shared.ErrConflict)

	// Writing a product's own SKU back is not a conflict.
	_, err = svc.Update(context.Background(), second.ID, UpdateProductRequest{SKU: strPtr("BEV-002")})
	require.NoError(t, err)
}

func TestCheckSKUAvailability(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	created, err := svc.Create(context.Background(), CreateProductRequest{SKU: "BEV-001", Name: "Coke", Category: "Beverages"})
	require.NoError(t, err)

	free, err := svc.CheckSKUAvailability(context.Background(), "BEV-999", 0)
	require.NoError(t, err)
	require.True(t, free)

	free, err = svc.CheckSKUAvailability(context.Background(), "BEV-001", 0)
	require.NoError(t, err)
	require.False(t, free)

	free, err = svc.CheckSKUAvailability(context.Background(), "BEV-001", created.ID)
	require.NoError(t, err)
	require.True(t, free)
}

func TestListDefaultsToActive(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newService(repo)

	created, err := svc.Create(context.Background(), CreateProductRequest{SKU: "BEV-001", Name: "Coke", Category: "Beverages"})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), created.ID))

	views, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Empty(t, views)
	require.NotNil(t, repo.lastFilter.IsActive)
	require.True(t, *repo.lastFilter.IsActive)

	inactive := false
	views, err = svc.List(context.Background(), ListFilter{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, views, 1)
}
