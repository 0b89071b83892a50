package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/reconcile"
	"match-sync/core/retry"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// Stage names one step of a run.
type Stage string

const (
	StageNavigate     Stage = "navigate"
	StageApplyFilters Stage = "apply_filters"
	StageSetDateRange Stage = "set_date_range"
	StageExtract      Stage = "extract"
	StageSync         Stage = "sync"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageNavigate, StageApplyFilters, StageSetDateRange, StageExtract, StageSync}

// StageError reports a stage that failed after Attempts tries.
type StageError struct {
	Stage    Stage
	Attempts int
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed after %d attempt(s): %v", e.Stage, e.Attempts, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AsStageError attempts to unwrap err into a *StageError.
func AsStageError(err error) (*StageError, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr, true
	}
	return nil, false
}

// StageResult records how one stage went.
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Request describes one run.
type Request struct {
	AgeGroup string    `json:"age_group"`
	Division string    `json:"division,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DryRun   bool      `json:"dry_run"`
	// InputPath overrides the configured source with a local export.
	InputPath string `json:"input_path,omitempty"`
}

// Filters returns the scraper filters of r.
func (r Request) Filters() Filters {
	return Filters{AgeGroup: r.AgeGroup, Division: r.Division}
}

// Syncer reconciles a batch of matches.
type Syncer interface {
	Sync(ctx context.Context, ms []matches.Match, ageGroup, division string, dryRun bool) (*reconcile.SyncResult, error)
}

// Outcome is the result of Orchestrator.Run.
type Outcome struct {
	Extracted int                   `json:"extracted"`
	Rejected  int                   `json:"rejected"`
	Result    *reconcile.SyncResult `json:"result,omitempty"`
	Stages    []StageResult         `json:"stages"`
}

// Orchestrator runs the five stages of a run.
type Orchestrator struct {
	scraper Scraper
	syncer  Syncer
	metrics *ExecutionMetrics
	policy  retry.Policy
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrchestrator creates an orchestrator. metrics is owned by the caller and
// mutated by Run.
func NewOrchestrator(scraper Scraper, syncer Syncer, metrics *ExecutionMetrics, policy retry.Policy, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		scraper: scraper,
		syncer:  syncer,
		metrics: metrics,
		policy:  policy.Normalize(),
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes every stage in order. The returned Outcome is never nil and
// lists the stages that ran, including the failed one.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{}
	if o.scraper == nil {
		o.metrics.RecordFailure()
		return out, &StageError{Stage: StageNavigate, Err: ErrScraperUnavailable}
	}
	defer func() {
		if err := o.scraper.Close(); err != nil {
			o.logger.Warn("Closing scraper failed", zap.Error(err))
		}
	}()

	var extracted []matches.Match
	steps := map[Stage]func(context.Context) error{
		StageNavigate: func(ctx context.Context) error {
			return o.scraper.Navigate(ctx)
		},
		StageApplyFilters: func(ctx context.Context) error {
			return o.scraper.ApplyFilters(ctx, req.Filters())
		},
		StageSetDateRange: func(ctx context.Context) error {
			return o.scraper.SetDateRange(ctx, req.Start, req.End)
		},
		StageExtract: func(ctx context.Context) error {
			ms, err := o.scraper.ExtractMatches(ctx)
			if err != nil {
				return err
			}
			extracted = ms
			return nil
		},
		StageSync: func(ctx context.Context) error {
			result, err := o.syncer.Sync(ctx, extracted, req.AgeGroup, req.Division, req.DryRun)
			if err != nil {
				return err
			}
			out.Result = result
			return nil
		},
	}

	for _, stage := range Stages {
		if stage == StageSync {
			out.Extracted = len(extracted)
			if r, ok := o.scraper.(interface{ Rejected() int }); ok {
				out.Rejected = r.Rejected()
			}
			o.metrics.RecordMatches(extracted, o.now())
		}

		res, err := o.runStage(ctx, stage, steps[stage])
		out.Stages = append(out.Stages, res)
		if err != nil {
			o.metrics.RecordFailure()
			o.logger.Error("Workflow failed",
				zap.String("stage", string(stage)),
				zap.Int("attempts", res.Attempts),
				zap.Error(err),
			)
			return out, &StageError{Stage: stage, Attempts: res.Attempts, Err: err}
		}
	}
	return out, nil
}

func (o *Orchestrator) runStage(ctx context.Context, stage Stage, step func(context.Context) error) (StageResult, error) {
	res := StageResult{Stage: stage}
	start := time.Now()

	op := func() (struct{}, error) {
		res.Attempts++
		err := step(ctx)
		if err != nil && permanent(err) {
			return struct{}{}, retry.Permanent(err)
		}
		return struct{}{}, err
	}
	notify := func(err error, wait time.Duration) {
		o.logger.Warn("Stage failed, retrying",
			zap.String("stage", string(stage)),
			zap.Int("attempt", res.Attempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	_, err := retry.Do(ctx, o.policy, op, notify)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	o.logger.Debug("Stage completed",
		zap.String("stage", string(stage)),
		zap.Int("attempts", res.Attempts),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// permanent reports errors that no retry can fix.
func permanent(err error) bool {
	if apiclient.IsConfigurationError(err) {
		return true
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.IsClientError() {
		return true
	}
	return errors.Is(err, ErrScraperUnavailable) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrStageOrder) ||
		errors.Is(err, ErrExportMismatch) ||
		errors.Is(err, ErrMalformedExport) ||
		errors.Is(err, context.Canceled)
}
