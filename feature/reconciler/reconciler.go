package reconciler

import (
	"context"
	"time"

	"match-sync/core/reconcile"
	"match-sync/feature/dedup"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// Reconciler syncs batches of matches.
type Reconciler struct {
	api      MatchAPI
	resolver Resolver
	builder  *dedup.Builder
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the clock used for status derivation.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconciler.
func New(api MatchAPI, resolver Resolver, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:      api,
		resolver: resolver,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.builder = dedup.NewBuilder(api, r.logger)
	return r
}

// Sync reconciles ms for one age group and division. The error is non-nil
// only when the batch precondition fails, typically with an
// *entities.ResolutionError.
func (r *Reconciler) Sync(ctx context.Context, ms []matches.Match, ageGroup, division string, dryRun bool) (*reconcile.SyncResult, error) {
	a := &adapter{
		api:      r.api,
		resolver: r.resolver,
		builder:  r.builder,
		logger:   r.logger,
		now:      r.now,
		ageGroup: ageGroup,
		division: division,
	}
	scope := ageGroup
	if division != "" {
		scope += "/" + division
	}
	return reconcile.Run(ctx, a, ms, reconcile.Options{DryRun: dryRun, Scope: scope}, r.logger)
}
