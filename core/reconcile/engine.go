package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Run prepares the batch and processes every item in order.
//
// A Prepare error is returned as is and no item is processed. Once
// preparation succeeds Run never fails: per-item errors and panics are
// recorded as OutcomeError and processing continues with the next item.
// Cancellation of ctx is recorded the same way for the remaining items.
func Run[T any](ctx context.Context, adapter Adapter[T], items []T, opts Options, logger *zap.Logger) (*SyncResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("adapter", adapter.Name()))
	if opts.Scope != "" {
		logger = logger.With(zap.String("scope", opts.Scope))
	}

	result := &SyncResult{DryRun: opts.DryRun, Records: make([]Record, 0, len(items))}
	if len(items) == 0 {
		logger.Info("Nothing to reconcile")
		return result, nil
	}

	if err := adapter.Prepare(ctx, items, opts); err != nil {
		logger.Error("Batch preparation failed", zap.Error(err))
		return nil, err
	}

	start := time.Now()
	for i, item := range items {
		rec := process(ctx, adapter, i, item, opts)
		logRecord(logger, rec)
		result.Add(rec)
	}

	logger.Info("Reconcile finished",
		zap.Int("items", len(items)),
		zap.Int("posted", result.Posted),
		zap.Int("updated", result.Updated),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func logRecord(logger *zap.Logger, rec Record) {
	fields := []zap.Field{
		zap.Int("index", rec.Index),
		zap.String("id", rec.ID),
		zap.String("label", rec.Label),
		zap.String("outcome", string(rec.Outcome)),
	}
	if rec.RemoteID > 0 {
		fields = append(fields, zap.Int64("remote_id", rec.RemoteID))
	}
	if rec.Detail != "" {
		fields = append(fields, zap.String("detail", rec.Detail))
	}

	switch rec.Outcome {
	case OutcomeError:
		logger.Warn("Item failed", append(fields, zap.String("error", rec.Error))...)
	case OutcomeSkipped:
		logger.Info("Item skipped", fields...)
	default:
		logger.Debug("Item reconciled", fields...)
	}
}

// recoverInto converts a panic raised while processing an item into an error
// record.
func recoverInto(rec *Record) {
	if r := recover(); r != nil {
		rec.Outcome = OutcomeError
		rec.Error = fmt.Sprintf("panic: %v", r)
	}
}
