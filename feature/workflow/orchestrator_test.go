package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/reconcile"
	"match-sync/core/retry"
	"match-sync/feature/matches"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScraper fails each stage the configured number of times.
type fakeScraper struct {
	failures map[Stage]int
	errs     map[Stage]error
	calls    map[Stage]int
	out      []matches.Match
	closed   int
}

func newFakeScraper(out []matches.Match) *fakeScraper {
	return &fakeScraper{
		failures: map[Stage]int{},
		errs:     map[Stage]error{},
		calls:    map[Stage]int{},
		out:      out,
	}
}

func (f *fakeScraper) step(stage Stage) error {
	f.calls[stage]++
	if f.failures[stage] > 0 {
		f.failures[stage]--
		if err := f.errs[stage]; err != nil {
			return err
		}
		return errors.New(string(stage) + " timed out")
	}
	return nil
}

func (f *fakeScraper) Navigate(ctx context.Context) error { return f.step(StageNavigate) }

func (f *fakeScraper) ApplyFilters(ctx context.Context, _ Filters) error {
	return f.step(StageApplyFilters)
}

func (f *fakeScraper) SetDateRange(ctx context.Context, _, _ time.Time) error {
	return f.step(StageSetDateRange)
}

func (f *fakeScraper) ExtractMatches(ctx context.Context) ([]matches.Match, error) {
	if err := f.step(StageExtract); err != nil {
		return nil, err
	}
	return f.out, nil
}

func (f *fakeScraper) Close() error {
	f.closed++
	return nil
}

type fakeSyncer struct {
	err   error
	fails int
	calls int
	got   []matches.Match
}

func (f *fakeSyncer) Sync(ctx context.Context, ms []matches.Match, ageGroup, division string, dryRun bool) (*reconcile.SyncResult, error) {
	f.calls++
	f.got = ms
	if f.fails > 0 {
		f.fails--
		return nil, f.err
	}
	result := &reconcile.SyncResult{DryRun: dryRun}
	for i := range ms {
		result.Add(reconcile.Record{Index: i, Outcome: reconcile.OutcomePosted})
	}
	return result, nil
}

func fastStagePolicy() retry.Policy {
	return retry.Policy{MaxRetries: 2, Base: time.Millisecond, Multiplier: 2}
}

var fixedNow = time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

func sampleMatches() []matches.Match {
	return []matches.Match{
		{MatchID: "m1", HomeTeam: "IFA", AwayTeam: "NEFC", MatchDateTime: fixedNow.Add(-24 * time.Hour), HomeScore: matches.IntScore(2), AwayScore: matches.IntScore(1)},
		{MatchID: "m2", HomeTeam: "Boston Bolts", AwayTeam: "IFA", MatchDateTime: fixedNow.Add(48 * time.Hour)},
		{MatchID: "m3", HomeTeam: "NYCFC", AwayTeam: "NEFC", MatchDateTime: fixedNow.Add(-72 * time.Hour)},
	}
}

func newTestOrchestrator(s Scraper, syncer Syncer, metrics *ExecutionMetrics) *Orchestrator {
	o := NewOrchestrator(s, syncer, metrics, fastStagePolicy(), nil)
	o.now = func() time.Time { return fixedNow }
	return o
}

func TestOrchestrator_RunsEveryStageInOrder(t *testing.T) {
	scraper := newFakeScraper(sampleMatches())
	syncer := &fakeSyncer{}
	metrics := NewExecutionMetrics(fixedNow)

	out, err := newTestOrchestrator(scraper, syncer, metrics).Run(context.Background(), Request{AgeGroup: "U14", DryRun: true})
	require.NoError(t, err)

	require.Len(t, out.Stages, len(Stages))
	for i, st := range out.Stages {
		assert.Equal(t, Stages[i], st.Stage)
		assert.Equal(t, 1, st.Attempts)
		assert.Empty(t, st.Error)
	}
	assert.Equal(t, 3, out.Extracted)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.DryRun)
	assert.Equal(t, 3, out.Result.Posted)
	assert.Len(t, syncer.got, 3)
	assert.Equal(t, 1, scraper.closed)

	snap := metrics.Snapshot()
	assert.Equal(t, 1, snap.GamesScheduled)
	assert.Equal(t, 1, snap.GamesScored)
	assert.Zero(t, snap.ErrorsEncountered)
}

func TestOrchestrator_RetriesTransientStageFailure(t *testing.T) {
	scraper := newFakeScraper(sampleMatches())
	scraper.failures[StageApplyFilters] = 2
	metrics := NewExecutionMetrics(fixedNow)

	out, err := newTestOrchestrator(scraper, &fakeSyncer{}, metrics).Run(context.Background(), Request{AgeGroup: "U14"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Stages[1].Attempts)
	assert.Equal(t, 3, scraper.calls[StageApplyFilters])
	assert.Zero(t, metrics.Snapshot().ErrorsEncountered)
}

func TestOrchestrator_StageExhaustionAbortsRun(t *testing.T) {
	scraper := newFakeScraper(sampleMatches())
	scraper.failures[StageExtract] = 10
	syncer := &fakeSyncer{}
	metrics := NewExecutionMetrics(fixedNow)

	out, err := newTestOrchestrator(scraper, syncer, metrics).Run(context.Background(), Request{AgeGroup: "U14"})
	require.Error(t, err)

	stageErr, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, StageExtract, stageErr.Stage)
	assert.Equal(t, 3, stageErr.Attempts)
	assert.Contains(t, err.Error(), "extract timed out")

	assert.Len(t, out.Stages, 4)
	assert.Zero(t, syncer.calls)
	assert.Nil(t, out.Result)
	assert.Equal(t, 1, scraper.closed)
	assert.Equal(t, 2, metrics.Snapshot().ErrorsEncountered)
}

func TestOrchestrator_PermanentErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		err   error
	}{
		{name: "invalid date range", stage: StageSetDateRange, err: ErrInvalidDateRange},
		{name: "configuration", stage: StageNavigate, err: &apiclient.ConfigurationError{Err: apiclient.ErrMissingToken}},
		{name: "client error", stage: StageExtract, err: &apiclient.APIError{StatusCode: 403, Err: errors.New("forbidden")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scraper := newFakeScraper(nil)
			scraper.failures[tt.stage] = 5
			scraper.errs[tt.stage] = tt.err

			_, err := newTestOrchestrator(scraper, &fakeSyncer{}, NewExecutionMetrics(fixedNow)).Run(context.Background(), Request{AgeGroup: "U14"})
			stageErr, ok := AsStageError(err)
			require.True(t, ok)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.Equal(t, 1, stageErr.Attempts)
			assert.Equal(t, 1, scraper.calls[tt.stage])
		})
	}
}

func TestOrchestrator_SyncConfigurationErrorIsPermanent(t *testing.T) {
	syncer := &fakeSyncer{fails: 5, err: &apiclient.ConfigurationError{Err: apiclient.ErrMissingToken}}
	metrics := NewExecutionMetrics(fixedNow)

	_, err := newTestOrchestrator(newFakeScraper(sampleMatches()), syncer, metrics).Run(context.Background(), Request{AgeGroup: "U14"})
	require.Error(t, err)
	assert.True(t, apiclient.IsConfigurationError(err))
	assert.Equal(t, 1, syncer.calls)
	assert.Equal(t, 2, metrics.Snapshot().ErrorsEncountered)
}

func TestOrchestrator_SyncRetriesTransientFailure(t *testing.T) {
	syncer := &fakeSyncer{fails: 1, err: &apiclient.APIError{StatusCode: 503, Err: errors.New("unavailable")}}

	out, err := newTestOrchestrator(newFakeScraper(sampleMatches()), syncer, NewExecutionMetrics(fixedNow)).Run(context.Background(), Request{AgeGroup: "U14"})
	require.NoError(t, err)
	assert.Equal(t, 2, syncer.calls)
	assert.Equal(t, 2, out.Stages[4].Attempts)
}

func TestOrchestrator_NilScraper(t *testing.T) {
	metrics := NewExecutionMetrics(fixedNow)
	out, err := newTestOrchestrator(nil, &fakeSyncer{}, metrics).Run(context.Background(), Request{AgeGroup: "U14"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScraperUnavailable)
	assert.NotNil(t, out)
	assert.Equal(t, 2, metrics.Snapshot().ErrorsEncountered)
}
