package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

// TopProductLimit caps the best-seller ranking.
const TopProductLimit = 5

// RepositoryPort abstracts the aggregate queries for the service.
type RepositoryPort interface {
	SalesTotals(ctx context.Context, start, end time.Time) (decimal.Decimal, int, error)
	TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error)
	HourlyTotals(ctx context.Context, start, end time.Time) (map[int]DayBucketTotals, error)
	DailyTotals(ctx context.Context, start, end time.Time) (map[string]DayBucketTotals, error)
	ActiveProducts(ctx context.Context) ([]catalog.Product, error)
}

// Service computes report payloads, serving them from the versioned
// cache when possible.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService builds a Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Daily aggregates one calendar day (UTC). Every hour bucket is present,
// zero-filled when silent; a day without sales reports zero values.
func (s *Service) Daily(ctx context.Context, date time.Time) (DailyReport, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	key, err := s.cache.BuildKey(ctx, "reports", "daily", day.Format("2006-01-02"))
	if err != nil {
		return DailyReport{}, err
	}

	var report DailyReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		return s.buildDaily(ctx, day)
	})
	return report, err
}

func (s *Service) buildDaily(ctx context.Context, day time.Time) (DailyReport, error) {
	start := day
	end := day.Add(24 * time.Hour)

	var (
		revenue decimal.Decimal
		count   int
		top     []TopProduct
		hourly  map[int]DayBucketTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenue, count, err = s.repo.SalesTotals(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.repo.TopProducts(gctx, start, end, TopProductLimit)
		return err
	})
	g.Go(func() error {
		var err error
		hourly, err = s.repo.HourlyTotals(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return DailyReport{}, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(count))).Round(2)
	}

	buckets := make([]HourBucket, 0, 24)
	for h := 0; h < 24; h++ {
		bucket := HourBucket{
			Hour:    h,
			Label:   fmt.Sprintf("%02d:00", h),
			Revenue: decimal.Zero,
		}
		if t, ok := hourly[h]; ok {
			bucket.Transactions = t.Transactions
			bucket.Revenue = t.Revenue
		}
		buckets = append(buckets, bucket)
	}
	if top == nil {
		top = []TopProduct{}
	}

	return DailyReport{
		Date: day.Format("2006-01-02"),
		Summary: SalesSummary{
			TotalRevenue:        revenue,
			TotalTransactions:   count,
			AvgTransactionValue: avg,
		},
		TopProducts:     top,
		HourlyBreakdown: buckets,
	}, nil
}

// Range aggregates the trailing days window (today inclusive), one
// zero-filled bucket per day.
func (s *Service) Range(ctx context.Context, days int) (RangeReport, error) {
	if days <= 0 {
		days = 7
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	key, err := s.cache.BuildKey(ctx, "reports", "range", today.Format("2006-01-02"), fmt.Sprint(days))
	if err != nil {
		return RangeReport{}, err
	}

	var report RangeReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		return s.buildRange(ctx, today, days)
	})
	return report, err
}

func (s *Service) buildRange(ctx context.Context, today time.Time, days int) (RangeReport, error) {
	start := today.AddDate(0, 0, -(days - 1))
	end := today.Add(24 * time.Hour)

	totals, err := s.repo.DailyTotals(ctx, start, end)
	if err != nil {
		return RangeReport{}, err
	}

	data := make([]DayBucket, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		bucket := DayBucket{Date: day, Revenue: decimal.Zero}
		if t, ok := totals[day]; ok {
			bucket.Revenue = t.Revenue
			bucket.Transactions = t.Transactions
		}
		data = append(data, bucket)
	}
	return RangeReport{Days: days, Data: data}, nil
}

// Inventory values the current active catalog at cost and at retail.
func (s *Service) Inventory(ctx context.Context) (InventoryReport, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "inventory")
	if err != nil {
		return InventoryReport{}, err
	}

	var report InventoryReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		return s.buildInventory(ctx)
	})
	return report, err
}

func (s *Service) buildInventory(ctx context.Context) (InventoryReport, error) {
	products, err := s.repo.ActiveProducts(ctx)
	if err != nil {
		return InventoryReport{}, err
	}

	summary := InventorySummary{
		TotalProducts:       len(products),
		TotalInventoryValue: decimal.Zero,
		TotalRetailValue:    decimal.Zero,
	}
	lowStock := []catalog.ProductView{}
	byCategory := make(map[string]CategoryValuation)

	for _, p := range products {
		qty := decimal.NewFromInt(int64(p.Stock))
		summary.TotalInventoryValue = summary.TotalInventoryValue.Add(p.Cost.Mul(qty))
		summary.TotalRetailValue = summary.TotalRetailValue.Add(p.Price.Mul(qty))

		if p.IsLowStock() {
			summary.LowStockCount++
			lowStock = append(lowStock, catalog.NewProductView(p))
		}
		if p.Stock == 0 {
			summary.OutOfStockCount++
		}

		cat := byCategory[p.Category]
		cat.Count++
		cat.Stock += p.Stock
		cat.Value = cat.Value.Add(p.Cost.Mul(qty))
		byCategory[p.Category] = cat
	}

	return InventoryReport{
		Summary:          summary,
		LowStockProducts: lowStock,
		ByCategory:       byCategory,
	}, nil
}
