package apiclient

import "time"

// CallMetric describes a single HTTP attempt.
type CallMetric struct {
	Endpoint   string
	Method     string
	StatusCode int
	Duration   time.Duration
}

// Succeeded reports a 2xx attempt.
func (m CallMetric) Succeeded() bool {
	return m.StatusCode >= 200 && m.StatusCode < 300
}

// Recorder receives one CallMetric per attempt.
type Recorder interface {
	RecordCall(m CallMetric)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(m CallMetric)

// RecordCall calls f(m).
func (f RecorderFunc) RecordCall(m CallMetric) {
	f(m)
}

// MultiRecorder fans a metric out to several recorders.
type MultiRecorder []Recorder

// RecordCall forwards m to every non-nil recorder.
func (mr MultiRecorder) RecordCall(m CallMetric) {
	for _, r := range mr {
		if r != nil {
			r.RecordCall(m)
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordCall(CallMetric) {}
