package workflow

import (
	"context"
	"path"
	"strings"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/reconcile"
	"match-sync/core/storage"
	"match-sync/feature/entities"
	"match-sync/feature/reconciler"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Report is the complete record of one run.
type Report struct {
	RunID      string                `json:"run_id"`
	Request    Request               `json:"request"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	FailedAt   Stage                 `json:"failed_stage,omitempty"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Extracted  int                   `json:"extracted"`
	Rejected   int                   `json:"rejected"`
	Result     *reconcile.SyncResult `json:"result,omitempty"`
	Metrics    MetricsSnapshot       `json:"metrics"`
	Stages     []StageResult         `json:"stages"`
	Cache      entities.Stats        `json:"cache"`
	ArchiveKey string                `json:"archive_key,omitempty"`
}

// Succeeded reports a run that finished every stage.
func (r *Report) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// RunStore persists reports.
type RunStore interface {
	SaveRun(ctx context.Context, report *Report) error
}

// ScraperFactory builds the scraper for a request.
type ScraperFactory func(req Request) (Scraper, error)

// SyncerFactory builds the syncer for one run from that run's API client.
// The default resolves entities locally and reconciles against /matches.
type SyncerFactory func(client *apiclient.Client, resolver *entities.Resolver, logger *zap.Logger) Syncer

// RunnerConfig bundles the configuration a run needs.
type RunnerConfig struct {
	API      apiclient.Config
	Cache    entities.Config
	Workflow Config
	Bucket   string
	Region   string
}

// Runner executes complete runs. Every run gets its own API client recorder,
// team cache and metrics; nothing is shared between runs.
type Runner struct {
	cfg     RunnerConfig
	storage storage.Client
	store   RunStore
	scraper ScraperFactory
	syncer  SyncerFactory
	logger  *zap.Logger
	now     func() time.Time
	opts    []apiclient.Option
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithStorage enables the storage scraper source and report archiving.
func WithStorage(c storage.Client) RunnerOption {
	return func(r *Runner) {
		r.storage = c
	}
}

// WithRunStore persists every report.
func WithRunStore(s RunStore) RunnerOption {
	return func(r *Runner) {
		r.store = s
	}
}

// WithScraperFactory overrides scraper construction.
func WithScraperFactory(f ScraperFactory) RunnerOption {
	return func(r *Runner) {
		if f != nil {
			r.scraper = f
		}
	}
}

// WithSyncerFactory overrides syncer construction, e.g. to submit matches
// asynchronously instead of reconciling them.
func WithSyncerFactory(f SyncerFactory) RunnerOption {
	return func(r *Runner) {
		if f != nil {
			r.syncer = f
		}
	}
}

// WithClientOptions passes options to every run's API client.
func WithClientOptions(opts ...apiclient.Option) RunnerOption {
	return func(r *Runner) {
		r.opts = append(r.opts, opts...)
	}
}

// WithRunnerClock overrides the clock.
func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.scraper == nil {
		r.scraper = r.defaultScraper
	}
	if r.syncer == nil {
		r.syncer = r.defaultSyncer
	}
	return r
}

func (r *Runner) defaultSyncer(client *apiclient.Client, resolver *entities.Resolver, logger *zap.Logger) Syncer {
	return reconciler.New(client, resolver, reconciler.WithLogger(logger), reconciler.WithClock(r.now))
}

func (r *Runner) defaultScraper(req Request) (Scraper, error) {
	input := req.InputPath
	if input == "" && strings.EqualFold(r.cfg.Workflow.Source, "file") {
		input = r.cfg.Workflow.InputPath
	}
	if input != "" {
		return NewFileScraper(input, r.logger), nil
	}
	if r.storage == nil {
		return nil, ErrScraperUnavailable
	}
	return NewStorageScraper(r.storage, r.cfg.Bucket, r.cfg.Workflow.ExportPrefix, r.logger), nil
}

// Run executes one run end to end. The report is always returned, and is
// archived and stored even when the run fails; the error is the run failure.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	started := r.now()
	if req.Start.IsZero() && req.End.IsZero() {
		req.Start, req.End = r.cfg.Workflow.DefaultWindow(started)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Request:   req,
		StartedAt: started,
	}
	logger := r.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("age_group", req.AgeGroup),
		zap.String("division", req.Division),
	)

	metrics := NewExecutionMetrics(started)
	err := r.execute(ctx, req, report, metrics, logger)

	metrics.Finish(r.now())
	report.FinishedAt = r.now()
	report.Metrics = metrics.Snapshot()
	report.Status = StatusSucceeded
	if err != nil {
		report.Status = StatusFailed
		report.Error = err.Error()
		if stageErr, ok := AsStageError(err); ok {
			report.FailedAt = stageErr.Stage
		}
	}

	r.archive(ctx, report, logger)
	r.persist(ctx, report, logger)
	emit(logger, report)
	return report, err
}

func (r *Runner) execute(ctx context.Context, req Request, report *Report, metrics *ExecutionMetrics, logger *zap.Logger) error {
	opts := append([]apiclient.Option{
		apiclient.WithLogger(logger),
		apiclient.WithRecorder(metrics),
	}, r.opts...)
	client, err := apiclient.New(r.cfg.API, opts...)
	if err != nil {
		metrics.RecordFailure()
		return err
	}

	cache := entities.NewCache(client, r.cfg.Cache, logger)
	defer func() {
		report.Cache = cache.Stats()
	}()
	resolver := entities.NewResolver(client, cache, entities.WithLogger(logger), entities.WithClock(r.now))
	syncer := r.syncer(client, resolver, logger)

	scraper, err := r.scraper(req)
	if err != nil {
		metrics.RecordFailure()
		return &StageError{Stage: StageNavigate, Err: err}
	}

	orch := NewOrchestrator(scraper, syncer, metrics, r.cfg.Workflow.StagePolicy(), logger)
	orch.now = r.now
	outcome, err := orch.Run(ctx, req)
	report.Extracted = outcome.Extracted
	report.Rejected = outcome.Rejected
	report.Result = outcome.Result
	report.Stages = outcome.Stages
	return err
}

// archive uploads the report when storage is configured. Failures are
// logged only.
func (r *Runner) archive(ctx context.Context, report *Report, logger *zap.Logger) {
	if r.storage == nil || !r.cfg.Workflow.ArchiveReports {
		return
	}
	key := path.Join(r.cfg.Workflow.ReportPrefix, report.RunID+".json")
	if err := storage.EnsureBucket(ctx, r.storage, r.cfg.Bucket, r.cfg.Region); err != nil {
		logger.Warn("Report archive unavailable", zap.Error(err))
		return
	}
	if _, err := storage.PutJSON(ctx, r.storage, r.cfg.Bucket, key, report); err != nil {
		logger.Warn("Archiving report failed", zap.String("key", key), zap.Error(err))
		return
	}
	report.ArchiveKey = key
}

func (r *Runner) persist(ctx context.Context, report *Report, logger *zap.Logger) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveRun(ctx, report); err != nil {
		logger.Warn("Saving run failed", zap.Error(err))
	}
}

// emit writes the end-of-run record consumed by log-based metrics.
func emit(logger *zap.Logger, report *Report) {
	fields := []zap.Field{
		zap.String("status", report.Status),
		zap.Bool("dry_run", report.Request.DryRun),
		zap.Int("extracted", report.Extracted),
		zap.Int("rejected", report.Rejected),
		zap.Int("games_scheduled", report.Metrics.GamesScheduled),
		zap.Int("games_scored", report.Metrics.GamesScored),
		zap.Int("api_calls_successful", report.Metrics.APICallsSuccessful),
		zap.Int("api_calls_failed", report.Metrics.APICallsFailed),
		zap.Int64("execution_duration_ms", report.Metrics.ExecutionDurationMs),
		zap.Int("errors_encountered", report.Metrics.ErrorsEncountered),
		zap.Float64("cache_hit_rate", report.Cache.HitRate),
	}
	if res := report.Result; res != nil {
		fields = append(fields,
			zap.Int("posted", res.Posted),
			zap.Int("updated", res.Updated),
			zap.Int("duplicates", res.Duplicates),
			zap.Int("skipped", res.Skipped),
			zap.Int("errors", res.Errors),
		)
	}
	if report.Error != "" {
		fields = append(fields, zap.String("error", report.Error))
		logger.Error("Run finished", fields...)
		return
	}
	logger.Info("Run finished", fields...)
}
