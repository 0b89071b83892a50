package workflow

import (
	"sync"
	"time"

	"match-sync/core/apiclient"
	"match-sync/feature/matches"
)

// ExecutionMetrics accumulates counters for one run. It implements
// apiclient.Recorder so the run's client reports every attempt to it.
type ExecutionMetrics struct {
	mu sync.Mutex

	started        time.Time
	finished       time.Time
	gamesScheduled int
	gamesScored    int
	callsOK        int
	callsFailed    int
	callTime       time.Duration
	errors         int
}

// MetricsSnapshot is a point-in-time copy of ExecutionMetrics.
type MetricsSnapshot struct {
	GamesScheduled      int   `json:"games_scheduled"`
	GamesScored         int   `json:"games_scored"`
	APICallsSuccessful  int   `json:"api_calls_successful"`
	APICallsFailed      int   `json:"api_calls_failed"`
	APICallTimeMs       int64 `json:"api_call_time_ms"`
	ExecutionDurationMs int64 `json:"execution_duration_ms"`
	ErrorsEncountered   int   `json:"errors_encountered"`
}

// NewExecutionMetrics starts the run clock at start.
func NewExecutionMetrics(start time.Time) *ExecutionMetrics {
	return &ExecutionMetrics{started: start}
}

// RecordCall counts one API attempt. 2xx responses are successful; network
// errors arrive with status 0 and count as failed.
func (m *ExecutionMetrics) RecordCall(c apiclient.CallMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Succeeded() {
		m.callsOK++
	} else {
		m.callsFailed++
	}
	m.callTime += c.Duration
}

// RecordMatches counts scheduled and completed matches among ms.
func (m *ExecutionMetrics) RecordMatches(ms []matches.Match, now time.Time) {
	counts := matches.CountByStatus(ms, now)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesScheduled += counts[matches.StatusScheduled]
	m.gamesScored += counts[matches.StatusCompleted]
}

// RecordFailure counts a run that ended early: once for the step that gave
// up and once for the run itself.
func (m *ExecutionMetrics) RecordFailure() {
	m.mu.Lock()
	m.errors += 2
	m.mu.Unlock()
}

// Finish stops the run clock.
func (m *ExecutionMetrics) Finish(at time.Time) {
	m.mu.Lock()
	m.finished = at
	m.mu.Unlock()
}

// Snapshot returns the current values. Before Finish the duration is
// measured against the wall clock.
func (m *ExecutionMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := m.finished
	if end.IsZero() {
		end = time.Now()
	}
	return MetricsSnapshot{
		GamesScheduled:      m.gamesScheduled,
		GamesScored:         m.gamesScored,
		APICallsSuccessful:  m.callsOK,
		APICallsFailed:      m.callsFailed,
		APICallTimeMs:       m.callTime.Milliseconds(),
		ExecutionDurationMs: end.Sub(m.started).Milliseconds(),
		ErrorsEncountered:   m.errors,
	}
}
