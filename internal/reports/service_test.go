package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

type fakeRepo struct {
	revenue  decimal.Decimal
	count    int
	top      []TopProduct
	hourly   map[int]DayBucketTotals
	daily    map[string]DayBucketTotals
	products []catalog.Product

	totalsCalls int
}

func (r *fakeRepo) SalesTotals(ctx context.Context, start, end time.Time) (decimal.Decimal, int, error) {
	r.totalsCalls++
	return r.revenue, r.count, nil
}

func (r *fakeRepo) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	if len(r.top) > limit {
		return r.top[:limit], nil
	}
	return r.top, nil
}

func (r *fakeRepo) HourlyTotals(ctx context.Context, start, end time.Time) (map[int]DayBucketTotals, error) {
	return r.hourly, nil
}

func (r *fakeRepo) DailyTotals(ctx context.Context, start, end time.Time) (map[string]DayBucketTotals, error) {
	return r.daily, nil
}

func (r *fakeRepo) ActiveProducts(ctx context.Context) ([]catalog.Product, error) {
	return r.products, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDailyZeroSales(t *testing.T) {
	repo := &fakeRepo{revenue: decimal.Zero}
	svc := NewService(repo, nil)

	report, err := svc.Daily(context.Background(), time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2025-03-10", report.Date)
	require.True(t, report.Summary.TotalRevenue.IsZero())
	require.Zero(t, report.Summary.TotalTransactions)
	require.True(t, report.Summary.AvgTransactionValue.IsZero())
	require.Empty(t, report.TopProducts)

	require.Len(t, report.HourlyBreakdown, 24)
	require.Equal(t, "00:00", report.HourlyBreakdown[0].Label)
	require.Equal(t, "23:00", report.HourlyBreakdown[23].Label)
	for _, b := range report.HourlyBreakdown {
		require.Zero(t, b.Transactions)
		require.True(t, b.Revenue.IsZero())
	}
}

func TestDailyAggregates(t *testing.T) {
	repo := &fakeRepo{
		revenue: dec("305"),
		count:   2,
		top: []TopProduct{
			{ProductID: 2, Name: "Lays Classic 60g", Category: "Snacks", Qty: 3, Revenue: dec("135")},
			{ProductID: 1, Name: "Coca Cola 1.5L", Category: "Beverages", Qty: 2, Revenue: dec("170")},
		},
		hourly: map[int]DayBucketTotals{13: {Transactions: 2, Revenue: dec("305")}},
	}
	svc := NewService(repo, nil)

	report, err := svc.Daily(context.Background(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, report.Summary.AvgTransactionValue.Equal(dec("152.5")))
	require.Len(t, report.TopProducts, 2)
	require.Equal(t, "Lays Classic 60g", report.TopProducts[0].Name)

	require.Equal(t, 2, report.HourlyBreakdown[13].Transactions)
	require.True(t, report.HourlyBreakdown[13].Revenue.Equal(dec("305")))
	require.Zero(t, report.HourlyBreakdown[12].Transactions)
}

func TestRangeZeroFills(t *testing.T) {
	repo := &fakeRepo{
		daily: map[string]DayBucketTotals{
			"2025-03-08": {Transactions: 4, Revenue: dec("120")},
		},
	}
	svc := NewService(repo, nil)
	svc.WithNow(func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	})

	report, err := svc.Range(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 7, report.Days)
	require.Len(t, report.Data, 7)
	require.Equal(t, "2025-03-04", report.Data[0].Date)
	require.Equal(t, "2025-03-10", report.Data[6].Date)

	require.Equal(t, 4, report.Data[4].Transactions)
	require.True(t, report.Data[4].Revenue.Equal(dec("120")))
	require.Zero(t, report.Data[5].Transactions)
	require.True(t, report.Data[5].Revenue.IsZero())
}

func TestInventoryValuation(t *testing.T) {
	repo := &fakeRepo{
		products: []catalog.Product{
			{ID: 1, Name: "Coke", Category: "Beverages", Cost: dec("60"), Price: dec("85"), Stock: 10, LowStockThreshold: 5},
			{ID: 2, Name: "Soap", Category: "Personal Care", Cost: dec("25"), Price: dec("35"), Stock: 2, LowStockThreshold: 10},
			{ID: 3, Name: "Pepsi", Category: "Beverages", Cost: dec("55"), Price: dec("80"), Stock: 0, LowStockThreshold: 10},
		},
	}
	svc := NewService(repo, nil)

	report, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Summary.TotalProducts)
	require.True(t, report.Summary.TotalInventoryValue.Equal(dec("650")))
	require.True(t, report.Summary.TotalRetailValue.Equal(dec("920")))
	require.Equal(t, 2, report.Summary.LowStockCount)
	require.Equal(t, 1, report.Summary.OutOfStockCount)

	require.Len(t, report.LowStockProducts, 2)
	require.True(t, report.LowStockProducts[0].IsLowStock)

	beverages := report.ByCategory["Beverages"]
	require.Equal(t, 2, beverages.Count)
	require.Equal(t, 10, beverages.Stock)
	require.True(t, beverages.Value.Equal(dec("600")))
}
