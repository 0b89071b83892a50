package reconciler

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

type fakeSubmitAPI struct {
	submitted []apiclient.MatchSubmission
	submitErr error
	status    apiclient.TaskStatus
	waitErr   error
	waited    []string
}

func (f *fakeSubmitAPI) SubmitMatch(ctx context.Context, in apiclient.MatchSubmission) (*apiclient.SubmitResponse, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, in)
	return &apiclient.SubmitResponse{TaskID: "t-" + in.ExternalMatchID}, nil
}

func (f *fakeSubmitAPI) WaitForTask(ctx context.Context, taskID string, poll retry.Policy) (*apiclient.TaskStatus, error) {
	f.waited = append(f.waited, taskID)
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	status := f.status
	status.TaskID = taskID
	return &status, nil
}

func newSubmitter(api SubmitAPI, opts ...SubmitOption) *Submitter {
	opts = append([]SubmitOption{WithSubmitClock(func() time.Time { return now })}, opts...)
	return NewSubmitter(api, opts...)
}

func TestSubmitter_QueuesValidMatches(t *testing.T) {
	api := &fakeSubmitAPI{}
	invalid := matches.Match{MatchID: "m2", HomeTeam: "IFA", AwayTeam: "ifa", MatchDateTime: yesterday()}

	result, err := newSubmitter(api).Sync(context.Background(),
		[]matches.Match{m1(matches.IntScore(2), matches.IntScore(1)), invalid}, "U14", "Northeast", false)
	require.NoError(t, err)

	assertCounts(t, result, 1, 0, 0, 1, 0)
	require.Len(t, api.submitted, 1)
	sub := api.submitted[0]
	assert.Equal(t, "IFA", sub.HomeTeam)
	assert.Equal(t, "NEFC", sub.AwayTeam)
	assert.Equal(t, "U14", sub.AgeGroup)
	assert.Equal(t, "Northeast", sub.Division)
	assert.Equal(t, "m1", sub.ExternalMatchID)
	assert.Equal(t, "match-scraper", sub.Source)
	require.NotNil(t, sub.HomeScore)
	assert.Equal(t, 2, *sub.HomeScore)

	assert.Equal(t, "task t-m1", result.Records[0].Detail)
	assert.Empty(t, api.waited)
}

func TestSubmitter_DryRunSubmitsNothing(t *testing.T) {
	api := &fakeSubmitAPI{}

	result, err := newSubmitter(api).Sync(context.Background(),
		[]matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", true)
	require.NoError(t, err)

	assertCounts(t, result, 1, 0, 0, 0, 0)
	assert.Empty(t, api.submitted)
	assert.Equal(t, reconcile.ActionCreate, result.Records[0].Action)
}

func TestSubmitter_SubmitErrorIsRecorded(t *testing.T) {
	api := &fakeSubmitAPI{submitErr: errors.New("queue down")}

	result, err := newSubmitter(api).Sync(context.Background(),
		[]matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 0, 0, 0, 0, 1)
	assert.Contains(t, result.Records[0].Error, "queue down")
}

func TestSubmitter_WaitReportsTaskOutcome(t *testing.T) {
	api := &fakeSubmitAPI{status: apiclient.TaskStatus{State: "SUCCESS", Ready: true}}

	result, err := newSubmitter(api, WithWait(retry.Policy{MaxRetries: 1})).Sync(context.Background(),
		[]matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 1, 0, 0, 0, 0)
	assert.Equal(t, []string{"t-m1"}, api.waited)
	assert.Equal(t, "task t-m1 SUCCESS", result.Records[0].Detail)
}

func TestSubmitter_FailedTaskIsAnError(t *testing.T) {
	reason := "team not found"
	api := &fakeSubmitAPI{status: apiclient.TaskStatus{State: "FAILURE", Ready: true, Error: &reason}}

	result, err := newSubmitter(api, WithWait(retry.Policy{MaxRetries: 1})).Sync(context.Background(),
		[]matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 0, 0, 0, 0, 1)
	assert.Contains(t, result.Records[0].Error, "team not found")
}

func TestSubmitter_PendingTaskIsAnError(t *testing.T) {
	api := &fakeSubmitAPI{waitErr: apiclient.ErrTaskPending}

	result, err := newSubmitter(api, WithWait(retry.Policy{MaxRetries: 1})).Sync(context.Background(),
		[]matches.Match{m1(matches.Score{}, matches.Score{})}, "U14", "", false)
	require.NoError(t, err)

	assertCounts(t, result, 0, 0, 0, 0, 1)
	assert.Contains(t, result.Records[0].Error, "task still pending")
}
