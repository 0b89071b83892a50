package reconcile

import "fmt"

// ActionType represents the type of mutation planned for one item.
type ActionType string

const (
	// ActionCreate creates the item remotely.
	ActionCreate ActionType = "create"
	// ActionUpdateScore patches the score fields of an existing remote item.
	ActionUpdateScore ActionType = "update_score"
	// ActionDuplicate leaves an existing remote item untouched.
	ActionDuplicate ActionType = "duplicate"
	// ActionSkip ignores an item that cannot be synced.
	ActionSkip ActionType = "skip"
)

// Outcome is the final classification of one processed item.
type Outcome string

const (
	OutcomePosted    Outcome = "posted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeError     Outcome = "error"
)

// outcomeFor maps a successfully applied action to its outcome.
func outcomeFor(t ActionType) Outcome {
	switch t {
	case ActionCreate:
		return OutcomePosted
	case ActionUpdateScore:
		return OutcomeUpdated
	case ActionDuplicate:
		return OutcomeDuplicate
	default:
		return OutcomeSkipped
	}
}

// Subject identifies an item in diagnostics.
type Subject struct {
	// ID is the source-side identifier of the item.
	ID string `json:"id"`

	// Label is a human readable description, e.g. "IFA vs NEFC".
	Label string `json:"label"`
}

// Action represents a planned mutation for one item.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the natural key of the item in the remote system.
	Key string `json:"key"`

	// Reason explains why this action was chosen.
	Reason string `json:"reason,omitempty"`

	// RemoteID is the ID of the existing remote item for update and
	// duplicate actions.
	RemoteID int64 `json:"remote_id,omitempty"`

	// Payload carries the adapter-specific request body.
	Payload any `json:"-"`
}

// Record is the diagnostic entry for one processed item.
type Record struct {
	// Index is the position of the item in the input batch.
	Index int `json:"index"`

	Subject

	// Outcome is the final classification.
	Outcome Outcome `json:"outcome"`

	// Action is the planned action, empty when planning failed.
	Action ActionType `json:"action,omitempty"`

	// Key is the natural key used for deduplication.
	Key string `json:"key,omitempty"`

	// RemoteID is the created or matched remote ID.
	RemoteID int64 `json:"remote_id,omitempty"`

	// Detail describes the update applied or the reason for a skip.
	Detail string `json:"detail,omitempty"`

	// Error is the error message for OutcomeError, or the absorbed error of
	// a downgraded outcome.
	Error string `json:"error,omitempty"`
}

// SyncResult aggregates the outcome of a batch.
// Posted+Updated+Duplicates+Skipped+Errors always equals len(Records).
type SyncResult struct {
	Posted     int  `json:"posted"`
	Updated    int  `json:"updated"`
	Duplicates int  `json:"duplicates"`
	Skipped    int  `json:"skipped"`
	Errors     int  `json:"errors"`
	DryRun     bool `json:"dry_run"`

	// Records holds one entry per processed item in input order.
	Records []Record `json:"records"`
}

// Add folds one record into the result.
func (r *SyncResult) Add(rec Record) {
	switch rec.Outcome {
	case OutcomePosted:
		r.Posted++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeDuplicate:
		r.Duplicates++
	case OutcomeSkipped:
		r.Skipped++
	default:
		rec.Outcome = OutcomeError
		r.Errors++
	}
	r.Records = append(r.Records, rec)
}

// Total returns the sum of all counters.
func (r *SyncResult) Total() int {
	return r.Posted + r.Updated + r.Duplicates + r.Skipped + r.Errors
}

// ByOutcome returns the records with outcome o, in input order.
func (r *SyncResult) ByOutcome(o Outcome) []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Outcome == o {
			out = append(out, rec)
		}
	}
	return out
}

// Summary returns a one-line description of the counters.
func (r *SyncResult) Summary() string {
	return fmt.Sprintf("posted=%d updated=%d duplicates=%d skipped=%d errors=%d",
		r.Posted, r.Updated, r.Duplicates, r.Skipped, r.Errors)
}

// Options controls a Run.
type Options struct {
	// DryRun plans every item without calling Apply.
	DryRun bool

	// Scope is a free-form label for logs, e.g. "U14/Northeast".
	Scope string
}
