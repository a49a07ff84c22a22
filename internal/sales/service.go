package sales

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rgstore/rgstore-pos/internal/catalog"
	"github.com/rgstore/rgstore-pos/internal/ledger"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
}

// CacheBumper invalidates cached report payloads after a committed sale.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service is the sale transaction processor.
type Service struct {
	repo   RepositoryPort
	cache  CacheBumper
	logger *slog.Logger
}

// NewService builds a Service. cache may be nil.
func NewService(repo RepositoryPort, cache CacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// CreateSale validates the proposed sale and commits all four effects as
// one unit: the sale row, its items, the stock decrements and the OUT
// ledger rows. Each referenced product row is locked before its stock is
// checked, so two concurrent sales racing on the last unit serialize at
// the database and exactly one succeeds.
//
// Change may come out negative for cash sales: the processor reports it
// and leaves the accept/reject policy to the cashier screen.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (Sale, error) {
	if len(req.Items) == 0 {
		return Sale{}, fmt.Errorf("%w: sale items are required", shared.ErrValidation)
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			return Sale{}, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
		}
		if item.Quantity <= 0 {
			return Sale{}, fmt.Errorf("%w: quantity must be > 0", shared.ErrValidation)
		}
		if item.UnitPrice.IsNegative() {
			return Sale{}, fmt.Errorf("%w: unit price must be >= 0", shared.ErrValidation)
		}
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = PaymentMethodCash
	}

	var created Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// Lock every referenced product in request order and validate
		// against the post-lock stock. Duplicate lines accumulate
		// against the same snapshot.
		locked := make(map[int64]*catalog.Product)
		pending := make(map[int64]int)
		for _, item := range req.Items {
			product, ok := locked[item.ProductID]
			if !ok {
				p, err := tx.GetProductForUpdate(ctx, item.ProductID)
				if err != nil {
					return fmt.Errorf("product %d: %w", item.ProductID, err)
				}
				product = &p
				locked[item.ProductID] = product
			}
			if product.Stock-pending[item.ProductID] < item.Quantity {
				return fmt.Errorf("%w: %s", shared.ErrInsufficientStock, product.Name)
			}
			pending[item.ProductID] += item.Quantity
		}

		total := decimal.Zero
		for _, item := range req.Items {
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		var change *decimal.Decimal
		if req.AmountTendered != nil {
			c := req.AmountTendered.Sub(total)
			change = &c
		}

		sale, err := tx.InsertSale(ctx, Sale{
			IdempotencyKey: req.IdempotencyKey,
			TotalAmount:    total,
			PaymentMethod:  paymentMethod,
			AmountTendered: req.AmountTendered,
			Change:         change,
		})
		if err != nil {
			return err
		}

		reason := fmt.Sprintf("Sale #%d", sale.ID)
		for _, item := range req.Items {
			product := locked[item.ProductID]
			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

			saleItem, err := tx.InsertSaleItem(ctx, SaleItem{
				SaleID:    sale.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  subtotal,
			})
			if err != nil {
				return err
			}

			product.Stock -= item.Quantity
			if product.Stock < 0 {
				return fmt.Errorf("%w: %s", shared.ErrInsufficientStock, product.Name)
			}
			if err := tx.UpdateStock(ctx, item.ProductID, product.Stock); err != nil {
				return err
			}
			if err := tx.InsertMovement(ctx, ledger.Movement{
				ProductID: item.ProductID,
				Type:      ledger.MovementOut,
				Quantity:  item.Quantity,
				Reason:    &reason,
			}); err != nil {
				return err
			}

			saleItem.Product = *product
			sale.Items = append(sale.Items, saleItem)
		}

		created = sale
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return created, nil
}

// Get loads one sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, fmt.Errorf("%w: invalid sale id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns sales within a time window.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	return s.repo.List(ctx, filter)
}
