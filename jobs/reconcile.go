package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/rgstore/rgstore-pos/internal/ledger"
)

// ReconcileJob verifies that product stock matches the signed sum of its
// movement history and logs every mismatch found.
type ReconcileJob struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewReconcileJob constructs a ReconcileJob.
func NewReconcileJob(ledgerService *ledger.Service, logger *slog.Logger) *ReconcileJob {
	return &ReconcileJob{ledger: ledgerService, logger: logger}
}

// Handle processes a reconcile task.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	drifts, err := j.ledger.Reconcile(ctx)
	if err != nil {
		return err
	}
	if len(drifts) == 0 {
		j.logger.Info("ledger reconcile clean", slog.String("job", TaskLedgerReconcile))
		return nil
	}
	for _, d := range drifts {
		j.logger.Warn("stock drift detected",
			slog.Int64("product_id", d.ProductID),
			slog.String("sku", d.SKU),
			slog.Int("stock", d.Stock),
			slog.Int("movement_sum", d.MovementSum),
		)
	}
	return nil
}
