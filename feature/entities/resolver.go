package entities

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"match-sync/core/apiclient"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

const (
	// DefaultSeasonID is used when no season can be selected.
	DefaultSeasonID int64 = 1
	// DefaultMatchTypeID is used when no match type can be selected.
	DefaultMatchTypeID int64 = 1
)

// CatalogAPI is the subset of the API client the resolver needs.
type CatalogAPI interface {
	TeamLister
	CreateTeam(ctx context.Context, in apiclient.TeamCreate) (*apiclient.Team, error)
	ListAgeGroups(ctx context.Context) ([]apiclient.AgeGroup, error)
	CreateAgeGroup(ctx context.Context, name string) (*apiclient.AgeGroup, error)
	ListDivisions(ctx context.Context) ([]apiclient.Division, error)
	CreateDivision(ctx context.Context, name string) (*apiclient.Division, error)
	ListSeasons(ctx context.Context) ([]apiclient.Season, error)
	ListMatchTypes(ctx context.Context) ([]apiclient.MatchType, error)
}

// Resolution is the outcome of ResolveAll.
type Resolution struct {
	AgeGroupID int64            `json:"age_group_id"`
	DivisionID int64            `json:"division_id"`
	Teams      map[string]int64 `json:"teams"`
	// Created lists teams created during this call.
	Created []string `json:"created,omitempty"`
	// Pending lists entities a dry run would have created.
	Pending []string `json:"pending,omitempty"`
}

// TeamID returns the resolved ID of the named team.
func (r Resolution) TeamID(name string) (int64, bool) {
	id, ok := r.Teams[matches.TeamKey(name)]
	return id, ok && id > 0
}

// IDsFor returns the foreign keys for m. Season and match type are left for
// the caller.
func (r Resolution) IDsFor(m matches.Match) matches.WireIDs {
	home, _ := r.TeamID(m.HomeTeam)
	away, _ := r.TeamID(m.AwayTeam)
	return matches.WireIDs{
		HomeTeamID: home,
		AwayTeamID: away,
		AgeGroupID: r.AgeGroupID,
		DivisionID: r.DivisionID,
	}
}

// Resolver get-or-creates remote entities for a sync batch.
type Resolver struct {
	api    CatalogAPI
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	ageGroups map[string]int64
	divisions map[string]int64
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the clock used for season selection.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver. cache may be shared with other components
// of the same run.
func NewResolver(api CatalogAPI, cache *Cache, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		api:       api,
		cache:     cache,
		logger:    zap.NewNop(),
		now:       time.Now,
		ageGroups: make(map[string]int64),
		divisions: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the team cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// ResolveAll resolves the age group, the division and every distinct team in
// ms. Missing entities are created unless dryRun is set, in which case they
// are listed in Resolution.Pending and left with ID 0.
func (r *Resolver) ResolveAll(ctx context.Context, ms []matches.Match, ageGroupName, divisionName string, dryRun bool) (*Resolution, error) {
	res := &Resolution{Teams: make(map[string]int64)}

	ageGroupID, err := r.resolveAgeGroup(ctx, ageGroupName, dryRun)
	if err != nil {
		return nil, &ResolutionError{Entity: "age group", Name: ageGroupName, Err: err}
	}
	if ageGroupID == 0 {
		res.Pending = append(res.Pending, "age group "+ageGroupName)
	}
	res.AgeGroupID = ageGroupID

	if strings.TrimSpace(divisionName) != "" {
		divisionID, err := r.resolveDivision(ctx, divisionName, dryRun)
		if err != nil {
			return nil, &ResolutionError{Entity: "division", Name: divisionName, Err: err}
		}
		if divisionID == 0 {
			res.Pending = append(res.Pending, "division "+divisionName)
		}
		res.DivisionID = divisionID
	}

	if r.cache.Enabled() {
		if _, err := r.cache.Preload(ctx); err != nil {
			r.logger.Warn("Continuing with uncached team lookups", zap.Error(err))
		}
	}

	for _, name := range matches.DistinctTeams(ms) {
		id, found, err := r.cache.Lookup(ctx, name)
		if err != nil {
			return nil, &ResolutionError{Entity: "team", Name: name, Err: err}
		}
		if !found {
			if dryRun {
				res.Pending = append(res.Pending, "team "+name)
				continue
			}
			id, err = r.createTeam(ctx, name, res.AgeGroupID, res.DivisionID)
			if err != nil {
				return nil, &ResolutionError{Entity: "team", Name: name, Err: err}
			}
			res.Created = append(res.Created, name)
		}
		res.Teams[matches.TeamKey(name)] = id
	}

	r.logger.Info("Entities resolved",
		zap.Int64("age_group_id", res.AgeGroupID),
		zap.Int64("division_id", res.DivisionID),
		zap.Int("teams", len(res.Teams)),
		zap.Int("created", len(res.Created)),
		zap.Int("pending", len(res.Pending)),
	)
	return res, nil
}

func (r *Resolver) createTeam(ctx context.Context, name string, ageGroupID, divisionID int64) (int64, error) {
	in := apiclient.TeamCreate{Name: name, AgeGroupIDs: []int64{}, DivisionIDs: []int64{}}
	if ageGroupID > 0 {
		in.AgeGroupIDs = append(in.AgeGroupIDs, ageGroupID)
	}
	if divisionID > 0 {
		in.DivisionIDs = append(in.DivisionIDs, divisionID)
	}
	team, err := r.api.CreateTeam(ctx, in)
	if err != nil {
		return 0, err
	}
	r.cache.RecordCreated(name, team.ID)
	r.logger.Info("Team created", zap.String("team", name), zap.Int64("id", team.ID))
	return team.ID, nil
}

func (r *Resolver) resolveAgeGroup(ctx context.Context, name string, dryRun bool) (int64, error) {
	return r.getOrCreate(ctx, r.ageGroups, name, dryRun,
		func(ctx context.Context) (map[string]int64, error) {
			items, err := r.api.ListAgeGroups(ctx)
			if err != nil {
				return nil, err
			}
			out := make(map[string]int64, len(items))
			for _, it := range items {
				out[nameKey(it.Name)] = it.ID
			}
			return out, nil
		},
		func(ctx context.Context, name string) (int64, error) {
			created, err := r.api.CreateAgeGroup(ctx, name)
			if err != nil {
				return 0, err
			}
			return created.ID, nil
		},
	)
}

func (r *Resolver) resolveDivision(ctx context.Context, name string, dryRun bool) (int64, error) {
	return r.getOrCreate(ctx, r.divisions, name, dryRun,
		func(ctx context.Context) (map[string]int64, error) {
			items, err := r.api.ListDivisions(ctx)
			if err != nil {
				return nil, err
			}
			out := make(map[string]int64, len(items))
			for _, it := range items {
				out[nameKey(it.Name)] = it.ID
			}
			return out, nil
		},
		func(ctx context.Context, name string) (int64, error) {
			created, err := r.api.CreateDivision(ctx, name)
			if err != nil {
				return 0, err
			}
			return created.ID, nil
		},
	)
}

// getOrCreate resolves name through memo, then the remote list, then create.
// Results live for the lifetime of the resolver and are not affected by
// Cache.Clear.
func (r *Resolver) getOrCreate(
	ctx context.Context,
	memo map[string]int64,
	name string,
	dryRun bool,
	fetch func(context.Context) (map[string]int64, error),
	create func(context.Context, string) (int64, error),
) (int64, error) {
	key := nameKey(name)
	if key == "" {
		return 0, errors.New("name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := memo[key]; ok {
		return id, nil
	}
	existing, err := fetch(ctx)
	if err != nil {
		return 0, err
	}
	if id, ok := existing[key]; ok {
		memo[key] = id
		return id, nil
	}
	if dryRun {
		return 0, nil
	}
	id, err := create(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	memo[key] = id
	return id, nil
}

// ResolveSeason selects the current season. It never fails.
func (r *Resolver) ResolveSeason(ctx context.Context) int64 {
	seasons, err := r.api.ListSeasons(ctx)
	if err != nil {
		r.logger.Warn("Season lookup failed, using default", zap.Error(err), zap.Int64("season_id", DefaultSeasonID))
		return DefaultSeasonID
	}
	picked := SelectSeason(seasons, r.now())
	r.logger.Debug("Season resolved", zap.Int64("season_id", picked.Value), zap.String("strategy", picked.Strategy))
	return picked.Value
}

// ResolveMatchType selects the league match type. It never fails.
func (r *Resolver) ResolveMatchType(ctx context.Context) int64 {
	types, err := r.api.ListMatchTypes(ctx)
	if err != nil {
		r.logger.Warn("Match type lookup failed, using default", zap.Error(err), zap.Int64("match_type_id", DefaultMatchTypeID))
		return DefaultMatchTypeID
	}
	picked := SelectMatchType(types)
	r.logger.Debug("Match type resolved", zap.Int64("match_type_id", picked.Value), zap.String("strategy", picked.Strategy))
	return picked.Value
}

// SelectSeason picks the season whose name mentions this or next year and
// whose optional date range contains today, then the first season, then
// DefaultSeasonID.
func SelectSeason(seasons []apiclient.Season, now time.Time) Tagged[int64] {
	today := matches.FormatDate(now)
	years := []string{strconv.Itoa(now.Year()), strconv.Itoa(now.Year() + 1)}

	current := Strategy[int64]{Name: "current", Try: func() (int64, bool) {
		for _, s := range seasons {
			if !containsAny(s.Name, years) {
				continue
			}
			if s.StartDate != nil && today < matches.NormalizeDate(*s.StartDate) {
				continue
			}
			if s.EndDate != nil && today > matches.NormalizeDate(*s.EndDate) {
				continue
			}
			return s.ID, true
		}
		return 0, false
	}}
	first := Strategy[int64]{Name: "first", Try: func() (int64, bool) {
		if len(seasons) == 0 {
			return 0, false
		}
		return seasons[0].ID, true
	}}

	picked, _ := FirstSuccess(current, first, Fixed("default", DefaultSeasonID))
	return picked
}

// SelectMatchType prefers a league or regular-season type, then the first
// type, then DefaultMatchTypeID.
func SelectMatchType(types []apiclient.MatchType) Tagged[int64] {
	league := Strategy[int64]{Name: "league", Try: func() (int64, bool) {
		for _, t := range types {
			if containsAny(strings.ToLower(t.Name), []string{"league", "regular"}) {
				return t.ID, true
			}
		}
		return 0, false
	}}
	first := Strategy[int64]{Name: "first", Try: func() (int64, bool) {
		if len(types) == 0 {
			return 0, false
		}
		return types[0].ID, true
	}}

	picked, _ := FirstSuccess(league, first, Fixed("default", DefaultMatchTypeID))
	return picked
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
