package entities

import (
	"context"
	"errors"
	"testing"

	"match-sync/core/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledConfig() Config {
	return Config{Enabled: true, RefreshOnMiss: true, PreloadTimeoutSeconds: 5}
}

func TestCache_PreloadIsIdempotent(t *testing.T) {
	api := newFakeAPI()
	api.teams = []apiclient.Team{{ID: 1, Name: "IFA"}, {ID: 2, Name: "NEFC"}}
	c := NewCache(api, enabledConfig(), nil)

	first, err := c.Preload(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadyLoaded)
	assert.Equal(t, 2, first.TeamCount)

	second, err := c.Preload(context.Background())
	require.NoError(t, err)
	assert.True(t, second.AlreadyLoaded)
	assert.Equal(t, 2, second.TeamCount)
	assert.Equal(t, 1, api.listTeamsCalls)
}

func TestCache_PreloadedLookupDoesNoIO(t *testing.T) {
	api := newFakeAPI()
	api.teams = []apiclient.Team{{ID: 1, Name: "IFA"}, {ID: 2, Name: "NEFC"}}
	c := NewCache(api, enabledConfig(), nil)
	_, err := c.Preload(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"IFA", "ifa", " New England FC ", "Intercontinental Football Academy of New England"} {
		id, ok, err := c.Lookup(context.Background(), name)
		require.NoError(t, err)
		assert.True(t, ok, name)
		assert.NotZero(t, id)
	}
	assert.Equal(t, 1, api.listTeamsCalls)

	stats := c.Stats()
	assert.Equal(t, 4, stats.HitCount)
	assert.Equal(t, 0, stats.MissCount)
	assert.Equal(t, 1.0, stats.HitRate)
}

func TestCache_MissWithRefreshScansOnce(t *testing.T) {
	api := newFakeAPI()
	api.teams = []apiclient.Team{{ID: 1, Name: "IFA"}}
	c := NewCache(api, enabledConfig(), nil)
	_, err := c.Preload(context.Background())
	require.NoError(t, err)

	_, ok, err := c.Lookup(context.Background(), "Unknown FC")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, api.listTeamsCalls, "preload plus exactly one refresh")

	// A team added remotely after preload is found by the refresh and cached.
	api.teams = append(api.teams, apiclient.Team{ID: 9, Name: "Late Team"})
	id, ok, err := c.Lookup(context.Background(), "late team")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, 3, api.listTeamsCalls)

	_, ok, err = c.Lookup(context.Background(), "Late Team")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, api.listTeamsCalls)

	stats := c.Stats()
	assert.Equal(t, 1, stats.HitCount)
	assert.Equal(t, 2, stats.MissCount)
	assert.Equal(t, 2, stats.RefreshCount)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 1e-9)
}

func TestCache_MissWithoutRefreshDoesNoIO(t *testing.T) {
	api := newFakeAPI()
	cfg := enabledConfig()
	cfg.RefreshOnMiss = false
	c := NewCache(api, cfg, nil)
	_, err := c.Preload(context.Background())
	require.NoError(t, err)

	_, ok, err := c.Lookup(context.Background(), "Unknown FC")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, api.listTeamsCalls)
	assert.Equal(t, 1, c.Stats().MissCount)
}

func TestCache_UncachedFallbackBeforePreload(t *testing.T) {
	api := newFakeAPI()
	api.teams = []apiclient.Team{{ID: 5, Name: "Boston Bolts"}}
	c := NewCache(api, Config{}, nil)

	result, err := c.Preload(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, api.listTeamsCalls)

	id, ok, err := c.Lookup(context.Background(), "FC Greater Boston Bolts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, 1, api.listTeamsCalls)
	assert.Equal(t, 0, c.Stats().MissCount)

	// The courtesy write makes the next lookup a hit.
	_, ok, err = c.Lookup(context.Background(), "Boston Bolts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, api.listTeamsCalls)
	assert.False(t, c.Stats().Loaded)
}

func TestCache_RecordCreatedAndClear(t *testing.T) {
	api := newFakeAPI()
	c := NewCache(api, enabledConfig(), nil)
	_, err := c.Preload(context.Background())
	require.NoError(t, err)

	c.RecordCreated("New Team", 77)
	id, ok, err := c.Lookup(context.Background(), "new team")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, 1, api.listTeamsCalls)

	c.Clear()
	stats := c.Stats()
	assert.False(t, stats.Loaded)
	assert.Zero(t, stats.TeamCount)
	assert.Zero(t, stats.HitCount)
	assert.Zero(t, stats.HitRate)

	result, err := c.Preload(context.Background())
	require.NoError(t, err)
	assert.False(t, result.AlreadyLoaded)
	assert.Equal(t, 2, api.listTeamsCalls)
}

func TestCache_PreloadFailure(t *testing.T) {
	api := newFakeAPI()
	api.listTeamsErr = errors.New("down")
	c := NewCache(api, enabledConfig(), nil)

	result, err := c.Preload(context.Background())
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.False(t, c.Stats().Loaded)
}
