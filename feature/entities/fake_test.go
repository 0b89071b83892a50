package entities

import (
	"context"
	"errors"
	"strings"
	"sync"

	"match-sync/core/apiclient"
)

type fakeAPI struct {
	mu sync.Mutex

	teams      []apiclient.Team
	ageGroups  []apiclient.AgeGroup
	divisions  []apiclient.Division
	seasons    []apiclient.Season
	matchTypes []apiclient.MatchType

	listTeamsErr   error
	createTeamErr  map[string]error
	listSeasonsErr error

	listTeamsCalls  int
	createTeamCalls []apiclient.TeamCreate
	ageGroupCreates int
	divisionCreates int
	nextID          int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, createTeamErr: map[string]error{}}
}

func (f *fakeAPI) ListTeams(ctx context.Context) ([]apiclient.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listTeamsCalls++
	if f.listTeamsErr != nil {
		return nil, f.listTeamsErr
	}
	return append([]apiclient.Team(nil), f.teams...), nil
}

func (f *fakeAPI) CreateTeam(ctx context.Context, in apiclient.TeamCreate) (*apiclient.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createTeamCalls = append(f.createTeamCalls, in)
	if err := f.createTeamErr[in.Name]; err != nil {
		return nil, err
	}
	f.nextID++
	t := apiclient.Team{ID: f.nextID, Name: in.Name}
	f.teams = append(f.teams, t)
	return &t, nil
}

func (f *fakeAPI) ListAgeGroups(ctx context.Context) ([]apiclient.AgeGroup, error) {
	return f.ageGroups, nil
}

func (f *fakeAPI) CreateAgeGroup(ctx context.Context, name string) (*apiclient.AgeGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ageGroupCreates++
	f.nextID++
	ag := apiclient.AgeGroup{ID: f.nextID, Name: name}
	f.ageGroups = append(f.ageGroups, ag)
	return &ag, nil
}

func (f *fakeAPI) ListDivisions(ctx context.Context) ([]apiclient.Division, error) {
	return f.divisions, nil
}

func (f *fakeAPI) CreateDivision(ctx context.Context, name string) (*apiclient.Division, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("empty division")
	}
	f.divisionCreates++
	f.nextID++
	d := apiclient.Division{ID: f.nextID, Name: name}
	f.divisions = append(f.divisions, d)
	return &d, nil
}

func (f *fakeAPI) ListSeasons(ctx context.Context) ([]apiclient.Season, error) {
	if f.listSeasonsErr != nil {
		return nil, f.listSeasonsErr
	}
	return f.seasons, nil
}

func (f *fakeAPI) ListMatchTypes(ctx context.Context) ([]apiclient.MatchType, error) {
	return f.matchTypes, nil
}
