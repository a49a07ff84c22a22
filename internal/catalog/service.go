package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rgstore/rgstore-pos/internal/shared"
)

// DefaultLowStockThreshold applies when a product is created without one.
const DefaultLowStockThreshold = 10

// StockSeeder persists a product together with the IN movement that
// records its opening stock, committing both in one transaction.
// Implemented by the ledger service.
type StockSeeder interface {
	CreateSeeded(ctx context.Context, p Product, openingStock int) (Product, error)
}

// Service coordinates catalog operations and uniqueness rules.
type Service struct {
	repo   Repository
	seeder StockSeeder
}

// NewService builds a Service.
func NewService(repo Repository, seeder StockSeeder) *Service {
	return &Service{repo: repo, seeder: seeder}
}

// List returns products matching the filter. Without an explicit flag only
// active products are returned.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ProductView, error) {
	if filter.IsActive == nil {
		active := true
		filter.IsActive = &active
	}
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductView(p))
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, id int64) (ProductView, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	return NewProductView(p), nil
}

func (s *Service) GetByBarcode(ctx context.Context, barcode string) (ProductView, error) {
	p, err := s.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		return ProductView{}, err
	}
	return NewProductView(p), nil
}

// Create inserts a product. SKU and barcode uniqueness is checked against
// every product regardless of is_active; the unique indexes remain the
// authoritative guard against races. The insert goes through the ledger,
// which commits the row and its opening IN movement together, so a failed
// seed never leaves a zero-stock product behind.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (ProductView, error) {
	if err := validateCreate(req); err != nil {
		return ProductView{}, err
	}

	if _, err := s.repo.GetBySKU(ctx, req.SKU); err == nil {
		return ProductView{}, fmt.Errorf("%w: sku %q already exists", shared.ErrConflict, req.SKU)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return ProductView{}, err
	}
	if req.Barcode != nil && *req.Barcode != "" {
		if _, err := s.repo.GetByBarcode(ctx, *req.Barcode); err == nil {
			return ProductView{}, fmt.Errorf("%w: barcode %q already exists", shared.ErrConflict, *req.Barcode)
		} else if !errors.Is(err, shared.ErrNotFound) {
			return ProductView{}, err
		}
	}

	threshold := DefaultLowStockThreshold
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}
	var barcode *string
	if req.Barcode != nil && *req.Barcode != "" {
		barcode = req.Barcode
	}

	p := Product{
		SKU:               strings.TrimSpace(req.SKU),
		Barcode:           barcode,
		Name:              strings.TrimSpace(req.Name),
		Category:          strings.TrimSpace(req.Category),
		Price:             req.Price,
		Cost:              req.Cost,
		LowStockThreshold: threshold,
		IsActive:          true,
	}

	created, err := s.seeder.CreateSeeded(ctx, p, req.Stock)
	if err != nil {
		return ProductView{}, err
	}
	return NewProductView(created), nil
}

// Update applies a partial update; nil fields are untouched. An empty
// barcode string clears the barcode.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (ProductView, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductView{}, err
	}

	if req.SKU != nil && *req.SKU != existing.SKU {
		if *req.SKU == "" {
			return ProductView{}, fmt.Errorf("%w: sku must not be empty", shared.ErrValidation)
		}
		if other, err := s.repo.GetBySKU(ctx, *req.SKU); err == nil && other.ID != id {
			return ProductView{}, fmt.Errorf("%w: sku %q already exists", shared.ErrConflict, *req.SKU)
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return ProductView{}, err
		}
		existing.SKU = *req.SKU
	}
	if req.Barcode != nil {
		if *req.Barcode == "" {
			existing.Barcode = nil
		} else {
			if other, err := s.repo.GetByBarcode(ctx, *req.Barcode); err == nil && other.ID != id {
				return ProductView{}, fmt.Errorf("%w: barcode %q already exists", shared.ErrConflict, *req.Barcode)
			} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return ProductView{}, err
			}
			existing.Barcode = req.Barcode
		}
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return ProductView{}, fmt.Errorf("%w: name must not be empty", shared.ErrValidation)
		}
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		existing.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return ProductView{}, fmt.Errorf("%w: price must be >= 0", shared.ErrValidation)
		}
		existing.Price = *req.Price
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return ProductView{}, fmt.Errorf("%w: cost must be >= 0", shared.ErrValidation)
		}
		existing.Cost = *req.Cost
	}
	if req.LowStockThreshold != nil {
		existing.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		return ProductView{}, err
	}
	return NewProductView(updated), nil
}

// SoftDelete flips is_active to false. Rows are never removed.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// CheckSKUAvailability reports whether a SKU is free. excludeID lets the
// inventory editor validate a product against its own current SKU.
func (s *Service) CheckSKUAvailability(ctx context.Context, sku string, excludeID int64) (bool, error) {
	existing, err := s.repo.GetBySKU(ctx, sku)
	if errors.Is(err, shared.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return excludeID != 0 && existing.ID == excludeID, nil
}

func validateCreate(req CreateProductRequest) error {
	if strings.TrimSpace(req.SKU) == "" {
		return fmt.Errorf("%w: sku is required", shared.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return fmt.Errorf("%w: category is required", shared.ErrValidation)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", shared.ErrValidation)
	}
	if req.Cost.IsNegative() {
		return fmt.Errorf("%w: cost must be >= 0", shared.ErrValidation)
	}
	if req.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", shared.ErrValidation)
	}
	return nil
}
