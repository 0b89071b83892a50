package reconciler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/reconcile"
	"match-sync/feature/dedup"
	"match-sync/feature/entities"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// MatchAPI is the API subset used to mutate matches.
type MatchAPI interface {
	dedup.MatchLister
	CreateMatch(ctx context.Context, in apiclient.MatchCreate) (*apiclient.Match, error)
	UpdateMatchScore(ctx context.Context, id int64, patch apiclient.ScorePatch) (*apiclient.Match, error)
}

// Resolver is the entity resolution subset used by the adapter.
type Resolver interface {
	ResolveAll(ctx context.Context, ms []matches.Match, ageGroupName, divisionName string, dryRun bool) (*entities.Resolution, error)
	ResolveSeason(ctx context.Context) int64
	ResolveMatchType(ctx context.Context) int64
}

// adapter implements reconcile.Adapter for one (age group, division) batch.
type adapter struct {
	api      MatchAPI
	resolver Resolver
	builder  *dedup.Builder
	logger   *zap.Logger
	now      func() time.Time

	ageGroup string
	division string
	dryRun   bool

	resolution  *entities.Resolution
	seasonID    int64
	matchTypeID int64
	index       *dedup.Index
}

var (
	_ reconcile.Adapter[matches.Match] = (*adapter)(nil)
	_ reconcile.Observer               = (*adapter)(nil)
)

func (a *adapter) Name() string {
	return "matches"
}

// Prepare resolves every entity of the batch and builds the dedup index.
// A resolution failure aborts the batch; a dedup query failure does not.
func (a *adapter) Prepare(ctx context.Context, ms []matches.Match, opts reconcile.Options) error {
	a.dryRun = opts.DryRun

	res, err := a.resolver.ResolveAll(ctx, ms, a.ageGroup, a.division, opts.DryRun)
	if err != nil {
		return err
	}
	a.resolution = res
	a.seasonID = a.resolver.ResolveSeason(ctx)
	a.matchTypeID = a.resolver.ResolveMatchType(ctx)

	if res.AgeGroupID > 0 {
		a.index = a.builder.Build(ctx, ms, res.AgeGroupID, res.DivisionID)
	} else {
		a.index = dedup.NewIndex(nil)
	}
	return nil
}

func (a *adapter) Describe(m matches.Match) reconcile.Subject {
	return reconcile.Subject{ID: m.MatchID, Label: m.Teams()}
}

// Plan converts m and consults the dedup index.
func (a *adapter) Plan(ctx context.Context, m matches.Match) (reconcile.Action, error) {
	ids := a.resolution.IDsFor(m)
	ids.SeasonID = a.seasonID
	ids.MatchTypeID = a.matchTypeID

	payload, err := matches.ToWire(m, ids, a.now())
	if err != nil {
		if a.dryRun && len(a.resolution.Pending) > 0 {
			return reconcile.Action{Type: reconcile.ActionCreate, Reason: "entities pending creation"}, nil
		}
		return reconcile.Action{Type: reconcile.ActionSkip, Reason: unresolvedReason(ids)}, nil
	}

	key := dedup.KeyForWire(payload)
	existing, found := a.index.Get(key)
	if !found {
		return reconcile.Action{Type: reconcile.ActionCreate, Key: key.String(), Payload: payload}, nil
	}

	if m.HasScore() && existing.HasPlaceholderScore() {
		return reconcile.Action{
			Type:     reconcile.ActionUpdateScore,
			Key:      key.String(),
			RemoteID: existing.ID,
			Reason:   fmt.Sprintf("%s -> %s", scoreLine(existing.HomeScore, existing.AwayScore), m.HomeScore.String()+"-"+m.AwayScore.String()),
			Payload:  matches.ScorePatchFor(m, a.now()),
		}, nil
	}
	return reconcile.Action{Type: reconcile.ActionDuplicate, Key: key.String(), RemoteID: existing.ID}, nil
}

// Apply performs the create or score patch.
func (a *adapter) Apply(ctx context.Context, m matches.Match, action reconcile.Action) (reconcile.Record, error) {
	switch action.Type {
	case reconcile.ActionCreate:
		payload, ok := action.Payload.(apiclient.MatchCreate)
		if !ok {
			return reconcile.Record{}, fmt.Errorf("create %s: missing payload", m.MatchID)
		}
		created, err := a.api.CreateMatch(ctx, payload)
		if err != nil {
			return reconcile.Record{}, err
		}
		a.index.Put(*created)
		return reconcile.Record{RemoteID: created.ID}, nil

	case reconcile.ActionUpdateScore:
		patch, ok := action.Payload.(apiclient.ScorePatch)
		if !ok {
			return reconcile.Record{}, fmt.Errorf("update %s: missing payload", m.MatchID)
		}
		updated, err := a.api.UpdateMatchScore(ctx, action.RemoteID, patch)
		if err != nil {
			a.logger.Warn("Score update failed, keeping existing match",
				zap.String("match_id", m.MatchID),
				zap.Int64("remote_id", action.RemoteID),
				zap.Error(err),
			)
			return reconcile.Record{Outcome: reconcile.OutcomeDuplicate, Error: err.Error()}, nil
		}
		a.index.Put(*updated)
		return reconcile.Record{RemoteID: updated.ID}, nil
	}
	return reconcile.Record{}, &reconcile.UnknownActionError{Type: action.Type}
}

// Observe records a dry-run create in the index so a repeated key plans as a
// duplicate.
func (a *adapter) Observe(action reconcile.Action) {
	if action.Type != reconcile.ActionCreate {
		return
	}
	if payload, ok := action.Payload.(apiclient.MatchCreate); ok {
		a.index.Put(apiclient.Match{
			MatchDate:  payload.MatchDate,
			HomeTeamID: payload.HomeTeamID,
			AwayTeamID: payload.AwayTeamID,
		})
	}
}

func unresolvedReason(ids matches.WireIDs) string {
	var missing []string
	if ids.HomeTeamID <= 0 {
		missing = append(missing, "home team")
	}
	if ids.AwayTeamID <= 0 {
		missing = append(missing, "away team")
	}
	if ids.AgeGroupID <= 0 {
		missing = append(missing, "age group")
	}
	return "unresolved " + strings.Join(missing, ", ")
}

func scoreLine(home, away *int) string {
	h, a := "null", "null"
	if home != nil {
		h = fmt.Sprint(*home)
	}
	if away != nil {
		a = fmt.Sprint(*away)
	}
	return h + "-" + a
}
