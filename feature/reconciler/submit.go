package reconciler

import (
	"context"
	"fmt"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/reconcile"
	"match-sync/core/retry"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// SubmitAPI is the asynchronous ingestion subset of the API.
type SubmitAPI interface {
	SubmitMatch(ctx context.Context, in apiclient.MatchSubmission) (*apiclient.SubmitResponse, error)
	WaitForTask(ctx context.Context, taskID string, poll retry.Policy) (*apiclient.TaskStatus, error)
}

// DefaultPollPolicy polls a queued task for roughly a minute.
var DefaultPollPolicy = retry.Policy{MaxRetries: 6, Base: time.Second, Multiplier: 2}

// Submitter queues matches for server-side resolution instead of resolving
// entities locally. It satisfies the same Sync contract as Reconciler.
type Submitter struct {
	api    SubmitAPI
	source string
	wait   bool
	poll   retry.Policy
	logger *zap.Logger
	now    func() time.Time
}

// SubmitOption customizes a Submitter.
type SubmitOption func(*Submitter)

// WithWait polls every task until it finishes, using poll.
func WithWait(poll retry.Policy) SubmitOption {
	return func(s *Submitter) {
		s.wait = true
		s.poll = poll
	}
}

// WithSource labels submissions with their origin.
func WithSource(source string) SubmitOption {
	return func(s *Submitter) {
		s.source = source
	}
}

// WithSubmitLogger sets the logger.
func WithSubmitLogger(l *zap.Logger) SubmitOption {
	return func(s *Submitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubmitClock overrides the clock used for status derivation.
func WithSubmitClock(now func() time.Time) SubmitOption {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSubmitter creates a Submitter.
func NewSubmitter(api SubmitAPI, opts ...SubmitOption) *Submitter {
	s := &Submitter{
		api:    api,
		source: "match-scraper",
		poll:   DefaultPollPolicy,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync submits every match of ms. Each submission is one record: posted when
// queued (or completed, when waiting), error otherwise.
func (s *Submitter) Sync(ctx context.Context, ms []matches.Match, ageGroup, division string, dryRun bool) (*reconcile.SyncResult, error) {
	a := &submitAdapter{Submitter: s, ageGroup: ageGroup, division: division}
	scope := ageGroup
	if division != "" {
		scope += "/" + division
	}
	return reconcile.Run(ctx, a, ms, reconcile.Options{DryRun: dryRun, Scope: scope + " async"}, s.logger)
}

type submitAdapter struct {
	*Submitter
	ageGroup string
	division string
}

var _ reconcile.Adapter[matches.Match] = (*submitAdapter)(nil)

func (a *submitAdapter) Name() string {
	return "submissions"
}

func (a *submitAdapter) Prepare(ctx context.Context, ms []matches.Match, opts reconcile.Options) error {
	return nil
}

func (a *submitAdapter) Describe(m matches.Match) reconcile.Subject {
	return reconcile.Subject{ID: m.MatchID, Label: m.Teams()}
}

func (a *submitAdapter) Plan(ctx context.Context, m matches.Match) (reconcile.Action, error) {
	if err := m.Validate(); err != nil {
		return reconcile.Action{Type: reconcile.ActionSkip, Reason: err.Error()}, nil
	}
	payload := matches.ToSubmission(m, a.ageGroup, a.division, a.source, a.now())
	return reconcile.Action{
		Type:    reconcile.ActionCreate,
		Key:     payload.MatchDate + "/" + payload.HomeTeam + "/" + payload.AwayTeam,
		Reason:  "queued for server-side resolution",
		Payload: payload,
	}, nil
}

func (a *submitAdapter) Apply(ctx context.Context, m matches.Match, action reconcile.Action) (reconcile.Record, error) {
	payload, ok := action.Payload.(apiclient.MatchSubmission)
	if !ok {
		return reconcile.Record{}, fmt.Errorf("submit %s: missing payload", m.MatchID)
	}
	resp, err := a.api.SubmitMatch(ctx, payload)
	if err != nil {
		return reconcile.Record{}, err
	}
	if !a.wait {
		return reconcile.Record{Detail: "task " + resp.TaskID}, nil
	}

	status, err := a.api.WaitForTask(ctx, resp.TaskID, a.poll)
	if err != nil {
		return reconcile.Record{}, fmt.Errorf("task %s: %w", resp.TaskID, err)
	}
	if status.Failed() {
		reason := status.State
		if status.Error != nil {
			reason = *status.Error
		}
		return reconcile.Record{}, fmt.Errorf("task %s failed: %s", resp.TaskID, reason)
	}
	return reconcile.Record{Detail: "task " + resp.TaskID + " " + status.State}, nil
}
