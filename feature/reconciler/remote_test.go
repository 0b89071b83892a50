package reconciler

import (
	"context"
	"errors"
	"sync"

	"match-sync/core/apiclient"
)

// fakeRemote is an in-memory remote API covering teams, catalog entities and
// matches.
type fakeRemote struct {
	mu sync.Mutex

	teams      []apiclient.Team
	ageGroups  []apiclient.AgeGroup
	divisions  []apiclient.Division
	seasons    []apiclient.Season
	matchTypes []apiclient.MatchType
	matches    []apiclient.Match

	createMatchErr error
	patchErr       error
	listMatchesErr error
	createTeamErr  error

	nextID        int64
	createdTeams  []string
	createdIDs    []int64
	patched       []int64
	listTeamCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		nextID:     1000,
		matchTypes: []apiclient.MatchType{{ID: 2, Name: "League"}},
		seasons:    []apiclient.Season{{ID: 5, Name: "2025-2026"}},
	}
}

func (f *fakeRemote) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRemote) ListTeams(ctx context.Context) ([]apiclient.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listTeamCalls++
	return append([]apiclient.Team(nil), f.teams...), nil
}

func (f *fakeRemote) CreateTeam(ctx context.Context, in apiclient.TeamCreate) (*apiclient.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createTeamErr != nil {
		return nil, f.createTeamErr
	}
	t := apiclient.Team{ID: f.id(), Name: in.Name, AgeGroupIDs: in.AgeGroupIDs}
	f.teams = append(f.teams, t)
	f.createdTeams = append(f.createdTeams, in.Name)
	return &t, nil
}

func (f *fakeRemote) ListAgeGroups(ctx context.Context) ([]apiclient.AgeGroup, error) {
	return f.ageGroups, nil
}

func (f *fakeRemote) CreateAgeGroup(ctx context.Context, name string) (*apiclient.AgeGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ag := apiclient.AgeGroup{ID: f.id(), Name: name}
	f.ageGroups = append(f.ageGroups, ag)
	return &ag, nil
}

func (f *fakeRemote) ListDivisions(ctx context.Context) ([]apiclient.Division, error) {
	return f.divisions, nil
}

func (f *fakeRemote) CreateDivision(ctx context.Context, name string) (*apiclient.Division, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := apiclient.Division{ID: f.id(), Name: name}
	f.divisions = append(f.divisions, d)
	return &d, nil
}

func (f *fakeRemote) ListSeasons(ctx context.Context) ([]apiclient.Season, error) {
	return f.seasons, nil
}

func (f *fakeRemote) ListMatchTypes(ctx context.Context) ([]apiclient.MatchType, error) {
	return f.matchTypes, nil
}

func (f *fakeRemote) ListMatches(ctx context.Context, q apiclient.MatchQuery) ([]apiclient.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listMatchesErr != nil {
		return nil, f.listMatchesErr
	}
	var out []apiclient.Match
	for _, m := range f.matches {
		if m.MatchDate < q.StartDate || m.MatchDate > q.EndDate {
			continue
		}
		if m.AgeGroupID != nil && q.AgeGroupID > 0 && *m.AgeGroupID != q.AgeGroupID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRemote) CreateMatch(ctx context.Context, in apiclient.MatchCreate) (*apiclient.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createMatchErr != nil {
		return nil, f.createMatchErr
	}
	home, away := in.HomeScore, in.AwayScore
	ageGroup := in.AgeGroupID
	matchID := in.MatchID
	m := apiclient.Match{
		ID:          f.id(),
		MatchID:     &matchID,
		MatchDate:   in.MatchDate,
		HomeTeamID:  in.HomeTeamID,
		AwayTeamID:  in.AwayTeamID,
		HomeScore:   &home,
		AwayScore:   &away,
		MatchStatus: in.MatchStatus,
		AgeGroupID:  &ageGroup,
	}
	f.matches = append(f.matches, m)
	f.createdIDs = append(f.createdIDs, m.ID)
	return &m, nil
}

func (f *fakeRemote) UpdateMatchScore(ctx context.Context, id int64, patch apiclient.ScorePatch) (*apiclient.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	for i := range f.matches {
		if f.matches[i].ID != id {
			continue
		}
		home, away := patch.HomeScore, patch.AwayScore
		f.matches[i].HomeScore = &home
		f.matches[i].AwayScore = &away
		f.matches[i].MatchStatus = patch.MatchStatus
		f.patched = append(f.patched, id)
		out := f.matches[i]
		return &out, nil
	}
	return nil, errors.New("404 match not found")
}
