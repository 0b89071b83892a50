package integrity

import (
	"context"
	"time"

	"match-sync/core/storage"
	"match-sync/feature/integrity/checks"

	"go.uber.org/zap"
)

// Options locates what the checks inspect.
type Options struct {
	Bucket       string
	ExportPrefix string
	ReportPrefix string
	StaleAfter   time.Duration
}

// Service handles integrity checks.
type Service struct {
	client storage.Client
	ledger checks.SchemaChecker
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new integrity service. ledger may be nil when run
// history is disabled.
func NewService(client storage.Client, ledger checks.SchemaChecker, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		ledger: ledger,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Prefixes returns the folders the bucket must contain.
func (s *Service) Prefixes() []string {
	return []string{s.opts.ExportPrefix, s.opts.ReportPrefix}
}

// CheckStructure returns the missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.opts.Bucket, s.Prefixes())
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.opts.Bucket, s.logger, missing)
}

// CheckExports validates every scraper export.
func (s *Service) CheckExports(ctx context.Context) ([]checks.ExportReport, error) {
	return checks.CheckExports(ctx, s.client, s.opts.Bucket, checks.ExportsOptions{
		Prefix:     s.opts.ExportPrefix,
		StaleAfter: s.opts.StaleAfter,
		Now:        s.now(),
	})
}

// CheckLedger verifies the run ledger schema.
func (s *Service) CheckLedger() (*checks.LedgerReport, error) {
	return checks.CheckLedger(s.ledger)
}
