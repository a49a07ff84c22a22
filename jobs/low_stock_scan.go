package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rgstore/rgstore-pos/internal/catalog"
)

// LowStockScanJob lists active products sitting at or below their low-stock
// threshold so operators can restock before sales start failing.
type LowStockScanJob struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewLowStockScanJob constructs a LowStockScanJob.
func NewLowStockScanJob(catalogService *catalog.Service, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{catalog: catalogService, logger: logger}
}

// Handle processes a low-stock scan task.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	products, err := j.catalog.List(ctx, catalog.ListFilter{LowStock: true})
	if err != nil {
		return err
	}
	if len(products) == 0 {
		j.logger.Info("low stock scan clean", slog.String("job", TaskLowStockScan))
		return nil
	}
	for _, p := range products {
		j.logger.Warn("product low on stock",
			slog.Int64("product_id", p.ID),
			slog.String("sku", p.SKU),
			slog.Int("stock", p.Stock),
			slog.Int("threshold", p.LowStockThreshold),
		)
	}
	return nil
}
