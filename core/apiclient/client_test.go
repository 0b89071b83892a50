package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"match-sync/core/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metricsSink struct {
	mu      sync.Mutex
	metrics []CallMetric
}

func (s *metricsSink) RecordCall(m CallMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

func (s *metricsSink) statuses() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.metrics))
	for _, m := range s.metrics {
		out = append(out, m.StatusCode)
	}
	return out
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, Base: time.Millisecond, Multiplier: 2}
}

func newTestClient(t *testing.T, baseURL string, sink *metricsSink) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, Token: "secret", TimeoutSeconds: 5},
		WithRetryPolicy(fastPolicy()),
		WithRecorder(sink),
	)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, ErrMissingBaseURL)
}

func TestRequest_MissingTokenFailsWithoutNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Request(context.Background(), http.MethodGet, "/teams", nil, nil)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, 0, calls)
}

func TestRequest_SendsBearerAndBody(t *testing.T) {
	var gotAuth, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sink := &metricsSink{}
	c := newTestClient(t, srv.URL, sink)

	raw, err := c.Request(context.Background(), http.MethodPost, "/age-groups", NameCreate{Name: "U14"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"name":"U14"}`, gotBody)
	assert.Equal(t, []int{200}, sink.statuses())
}

func TestRequest_ClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"bad team"}`))
	}))
	defer srv.Close()

	sink := &metricsSink{}
	c := newTestClient(t, srv.URL, sink)

	_, err := c.Request(context.Background(), http.MethodPost, "/teams", TeamCreate{Name: "x"}, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad team")
	assert.True(t, apiErr.IsClientError())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{422}, sink.statuses())
}

func TestRequest_ServerErrorRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	sink := &metricsSink{}
	c := newTestClient(t, srv.URL, sink)

	_, err := c.Request(context.Background(), http.MethodGet, "/teams", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{502, 502, 200}, sink.statuses())
}

func TestRequest_ServerErrorExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	sink := &metricsSink{}
	c := newTestClient(t, srv.URL, sink)

	_, err := c.Request(context.Background(), http.MethodGet, "/teams", nil, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, 4, calls, "initial attempt plus three retries")
	assert.Len(t, sink.statuses(), 4)
}

func TestRequest_NetworkErrorReportsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink := &metricsSink{}
	c := newTestClient(t, url, sink)

	_, err := c.Request(context.Background(), http.MethodGet, "/teams", nil, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.True(t, apiErr.IsNetworkError())
	assert.Equal(t, []int{0, 0, 0, 0}, sink.statuses())
}

func TestWithRecorder_ReturnsIndependentCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	original := &metricsSink{}
	c := newTestClient(t, srv.URL, original)

	run := &metricsSink{}
	scoped := c.WithRecorder(run)
	_, err := scoped.ListTeams(context.Background())
	require.NoError(t, err)

	assert.Empty(t, original.statuses())
	assert.Equal(t, []int{200}, run.statuses())
}
