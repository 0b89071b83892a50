package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"match-sync/core/apiclient"
	"match-sync/core/reconcile"
	"match-sync/feature/entities"
	"match-sync/feature/matches"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

func yesterday() time.Time {
	return now.Add(-24 * time.Hour)
}

func newReconciler(remote *fakeRemote) *Reconciler {
	clock := func() time.Time { return now }
	cache := entities.NewCache(remote, entities.Config{Enabled: true, RefreshOnMiss: true}, nil)
	resolver := entities.NewResolver(remote, cache, entities.WithClock(clock))
	return New(remote, resolver, WithClock(clock))
}

func m1(home, away matches.Score) matches.Match {
	return matches.Match{
		MatchID:       "m1",
		HomeTeam:      "IFA",
		AwayTeam:      "NEFC",
		MatchDateTime: yesterday(),
		HomeScore:     home,
		AwayScore:     away,
	}
}

func assertCounts(t *testing.T, r *reconcile.SyncResult, posted, updated, duplicates, skipped, errs int) {
	t.Helper()
	assert.Equal(t, posted, r.Posted, "posted")
	assert.Equal(t, updated, r.Updated, "updated")
	assert.Equal(t, duplicates, r.Duplicates, "duplicates")
	assert.Equal(t, skipped, r.Skipped, "skipped")
	assert.Equal(t, errs, r.Errors, "errors")
}

func TestSync_PostsNewMatchAndCreatesTeams(t *testing.T) {
	remote := newFakeRemote()
	rec := newReconciler(remote)

	result, err := rec.Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "Northeast", false)
	require.NoError(t, err)

	assertCounts(t, result, 1, 0, 0, 0, 0)
	assert.Equal(t, []string{"IFA", "NEFC"}, remote.createdTeams)
	require.Len(t, remote.matches, 1)
	assert.Equal(t, "2025-10-18", remote.matches[0].MatchDate)
	assert.Equal(t, "tbd", remote.matches[0].MatchStatus)
	assert.Equal(t, 0, *remote.matches[0].HomeScore)
	assert.Equal(t, remote.createdIDs[0], result.Records[0].RemoteID)
}

func TestSync_IdempotentResync(t *testing.T) {
	remote := newFakeRemote()
	batch := []matches.Match{m1(matches.Score{}, matches.Score{})}

	first, err := newReconciler(remote).Sync(context.Background(), batch, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, first, 1, 0, 0, 0, 0)

	second, err := newReconciler(remote).Sync(context.Background(), batch, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, second, 0, 0, 1, 0, 0)
	assert.Len(t, remote.matches, 1)
	assert.Len(t, remote.createdTeams, 2)
}

func TestSync_ScoreUpgradePatchesPlaceholder(t *testing.T) {
	remote := newFakeRemote()
	_, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.TBDScore(), matches.TBDScore())}, "U14", "", false)
	require.NoError(t, err)

	result, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.IntScore(2), matches.IntScore(1))}, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 0, 1, 0, 0, 0)
	require.Len(t, remote.patched, 1)
	assert.Equal(t, 2, *remote.matches[0].HomeScore)
	assert.Equal(t, 1, *remote.matches[0].AwayScore)
	assert.Equal(t, "completed", remote.matches[0].MatchStatus)
	assert.Equal(t, "0-0 -> 2-1", result.Records[0].Detail)

	// Already scored remotely: nothing left to do.
	again, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.IntScore(2), matches.IntScore(1))}, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, again, 0, 0, 1, 0, 0)
}

func TestSync_GoallessDrawResyncIsDuplicate(t *testing.T) {
	remote := newFakeRemote()
	draw := []matches.Match{m1(matches.IntScore(0), matches.IntScore(0))}

	first, err := newReconciler(remote).Sync(context.Background(), draw, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, first, 1, 0, 0, 0, 0)
	assert.Equal(t, "completed", remote.matches[0].MatchStatus)

	second, err := newReconciler(remote).Sync(context.Background(), draw, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, second, 0, 0, 1, 0, 0)
	assert.Empty(t, remote.patched)
}

func TestSync_PatchFailureCountsAsDuplicate(t *testing.T) {
	remote := newFakeRemote()
	_, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	remote.patchErr = &apiclient.APIError{StatusCode: 422, Err: errors.New("unexpected status 422")}
	result, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.IntScore(3), matches.IntScore(0))}, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 0, 0, 1, 0, 0)
	assert.Contains(t, result.Records[0].Error, "422")
}

func TestSync_RepeatedKeyInBatchPostsOnce(t *testing.T) {
	remote := newFakeRemote()
	dup := m1(matches.Score{}, matches.Score{})
	dup.MatchID = "m1-copy"
	dup.HomeTeam = "Intercontinental Football Academy of New England"

	result, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{}), dup}, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, result, 1, 0, 1, 0, 0)
	assert.Len(t, remote.matches, 1)
}

func TestSync_PerMatchErrorContinues(t *testing.T) {
	remote := newFakeRemote()
	remote.createMatchErr = &apiclient.APIError{StatusCode: 500, Err: errors.New("unexpected status 500")}

	batch := []matches.Match{
		m1(matches.Score{}, matches.Score{}),
		{MatchID: "m2", HomeTeam: "Boston Bolts", AwayTeam: "IFA", MatchDateTime: yesterday()},
	}
	result, err := newReconciler(remote).Sync(context.Background(), batch, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 0, 0, 0, 0, 2)
	assert.Equal(t, len(batch), result.Total())
	errs := result.ByOutcome(reconcile.OutcomeError)
	require.Len(t, errs, 2)
	assert.Equal(t, "Boston Bolts vs IFA", errs[1].Label)
}

func TestSync_DedupDegradationTreatsAllAsNew(t *testing.T) {
	remote := newFakeRemote()
	_, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	remote.listMatchesErr = errors.New("503")
	result, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, result, 1, 0, 0, 0, 0)
}

func TestSync_MalformedRemoteRowKeepsDedup(t *testing.T) {
	remote := newFakeRemote()
	_, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	remote.matches = append(remote.matches, apiclient.Match{ID: 999, MatchDate: remote.matches[0].MatchDate, AwayTeamID: 1})
	result, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)
	assertCounts(t, result, 0, 0, 1, 0, 0)
	assert.Len(t, remote.createdIDs, 1)
}

func TestSync_ResolutionFailureAbortsBatch(t *testing.T) {
	remote := newFakeRemote()
	remote.createTeamErr = &apiclient.APIError{StatusCode: 400, Err: errors.New("unexpected status 400")}

	result, err := newReconciler(remote).Sync(context.Background(), []matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.Error(t, err)
	assert.Nil(t, result)

	resErr, ok := entities.AsResolutionError(err)
	require.True(t, ok)
	assert.Equal(t, "IFA", resErr.Name)
	assert.Empty(t, remote.matches)
}

func TestSync_DryRunPlansWithoutWriting(t *testing.T) {
	remote := newFakeRemote()
	remote.ageGroups = []apiclient.AgeGroup{{ID: 3, Name: "U14"}}
	remote.teams = []apiclient.Team{{ID: 1, Name: "IFA"}, {ID: 2, Name: "NEFC"}}

	batch := []matches.Match{
		m1(matches.Score{}, matches.Score{}),
		m1(matches.Score{}, matches.Score{}),
		{MatchID: "m3", HomeTeam: "Brand New FC", AwayTeam: "IFA", MatchDateTime: yesterday()},
	}
	result, err := newReconciler(remote).Sync(context.Background(), batch, "U14", "", true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assertCounts(t, result, 2, 0, 1, 0, 0)
	assert.Empty(t, remote.matches)
	assert.Empty(t, remote.createdTeams)
	assert.Contains(t, result.Records[2].Detail, "entities pending creation")
}

func TestSync_CountInvariantWithMixedBatch(t *testing.T) {
	remote := newFakeRemote()
	batch := []matches.Match{
		m1(matches.Score{}, matches.Score{}),
		m1(matches.Score{}, matches.Score{}),
		{MatchID: "m2", HomeTeam: "Boston Bolts", AwayTeam: "NYCFC", MatchDateTime: yesterday().Add(-48 * time.Hour), HomeScore: matches.IntScore(1), AwayScore: matches.IntScore(1)},
		{MatchID: "m3", HomeTeam: "Seacoast United", AwayTeam: "IFA", MatchDateTime: now.Add(72 * time.Hour)},
	}

	result, err := newReconciler(remote).Sync(context.Background(), batch, "U14", "Northeast", false)
	require.NoError(t, err)
	assert.Equal(t, len(batch), result.Total())
	assertCounts(t, result, 3, 0, 1, 0, 0)
}
