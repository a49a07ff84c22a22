package ledger

import (
	"context"
	"fmt"

	"github.com/rgstore/rgstore-pos/internal/catalog"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

// InitialStockReason marks the synthetic IN movement created when a
// product is seeded with opening stock.
const InitialStockReason = "Initial stock"

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, productID int64, filter MovementFilter) ([]Movement, error)
	FindDrift(ctx context.Context) ([]Drift, error)
}

// Service is the stock adjustment processor. Every mutation locks the
// product row, re-checks the resulting stock level and appends exactly
// one ledger row, all inside one transaction.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Adjust applies a manual IN/OUT correction and returns the updated
// product. A resulting negative stock aborts the whole unit.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (catalog.Product, error) {
	if input.Quantity <= 0 {
		return catalog.Product{}, fmt.Errorf("%w: quantity must be > 0", shared.ErrValidation)
	}
	if !input.Type.Valid() {
		return catalog.Product{}, fmt.Errorf("%w: type must be IN or OUT", shared.ErrValidation)
	}

	var updated catalog.Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}

		newStock := product.Stock + input.Quantity
		if input.Type == MovementOut {
			newStock = product.Stock - input.Quantity
		}
		if newStock < 0 {
			return fmt.Errorf("%w: product %d", shared.ErrInsufficientStock, input.ProductID)
		}

		if err := tx.UpdateStock(ctx, product.ID, newStock); err != nil {
			return err
		}
		if _, err := tx.InsertMovement(ctx, Movement{
			ProductID: product.ID,
			Type:      input.Type,
			Quantity:  input.Quantity,
			Reason:    input.Reason,
		}); err != nil {
			return err
		}

		product.Stock = newStock
		updated = product
		return nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return updated, nil
}

// CreateSeeded inserts a product and, for a positive opening stock, the
// IN movement that opens its trail. Both rows commit in the same
// transaction. Satisfies catalog.StockSeeder.
func (s *Service) CreateSeeded(ctx context.Context, p catalog.Product, openingStock int) (catalog.Product, error) {
	if openingStock < 0 {
		return catalog.Product{}, fmt.Errorf("%w: opening stock must be >= 0", shared.ErrValidation)
	}

	var created catalog.Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p.Stock = openingStock
		inserted, err := tx.InsertProduct(ctx, p)
		if err != nil {
			return err
		}
		if openingStock > 0 {
			reason := InitialStockReason
			if _, err := tx.InsertMovement(ctx, Movement{
				ProductID: inserted.ID,
				Type:      MovementIn,
				Quantity:  openingStock,
				Reason:    &reason,
			}); err != nil {
				return err
			}
		}
		created = inserted
		return nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return created, nil
}

// ListMovements returns the audit trail for one product.
func (s *Service) ListMovements(ctx context.Context, productID int64, filter MovementFilter) ([]Movement, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.ListMovements(ctx, productID, filter)
}

// Reconcile verifies the auditability invariant: for every product the
// signed movement sum must reproduce the stock counter. Violations are
// returned, not repaired.
func (s *Service) Reconcile(ctx context.Context) ([]Drift, error) {
	return s.repo.FindDrift(ctx)
}

var _ catalog.StockSeeder = (*Service)(nil)
