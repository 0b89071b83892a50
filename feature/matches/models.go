package matches

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the derived state of a match.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusTBD       Status = "tbd"
)

// Match is a single extracted match record.
type Match struct {
	MatchID       string    `json:"match_id"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	MatchDateTime time.Time `json:"match_datetime"`
	Location      string    `json:"location,omitempty"`
	Competition   string    `json:"competition,omitempty"`
	HomeScore     Score     `json:"home_score"`
	AwayScore     Score     `json:"away_score"`
}

// DeriveStatus computes the status for a kickoff time and score pair.
func DeriveStatus(kickoff time.Time, home, away Score, now time.Time) Status {
	if kickoff.After(now) {
		return StatusScheduled
	}
	if home.IsSet() && away.IsSet() {
		return StatusCompleted
	}
	return StatusTBD
}

// Status returns the derived status of m at time now.
func (m Match) Status(now time.Time) Status {
	return DeriveStatus(m.MatchDateTime, m.HomeScore, m.AwayScore, now)
}

// HasScore reports two concrete scores.
func (m Match) HasScore() bool {
	return m.HomeScore.IsSet() && m.AwayScore.IsSet()
}

// Date returns the calendar date of the kickoff (YYYY-MM-DD) in the kickoff's
// own location.
func (m Match) Date() string {
	return FormatDate(m.MatchDateTime)
}

// Teams returns "home vs away" for log and diagnostic output.
func (m Match) Teams() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

var (
	ErrMissingMatchID  = errors.New("match_id is required")
	ErrMissingTeam     = errors.New("home_team and away_team are required")
	ErrSameTeams       = errors.New("home_team and away_team must differ")
	ErrMissingDateTime = errors.New("match_datetime is required")
	ErrInvalidScore    = errors.New("score must be a non-negative integer, TBD or null")
)

// Validate checks the record invariants.
func (m Match) Validate() error {
	if strings.TrimSpace(m.MatchID) == "" {
		return ErrMissingMatchID
	}
	home, away := strings.TrimSpace(m.HomeTeam), strings.TrimSpace(m.AwayTeam)
	if home == "" || away == "" {
		return ErrMissingTeam
	}
	if strings.EqualFold(home, away) {
		return fmt.Errorf("%w: %q", ErrSameTeams, home)
	}
	if m.MatchDateTime.IsZero() {
		return ErrMissingDateTime
	}
	if raw := m.HomeScore.Invalid(); raw != "" {
		return fmt.Errorf("%w: home_score %s", ErrInvalidScore, raw)
	}
	if raw := m.AwayScore.Invalid(); raw != "" {
		return fmt.Errorf("%w: away_score %s", ErrInvalidScore, raw)
	}
	return nil
}

// Rejected is a record dropped by Partition together with the reason.
type Rejected struct {
	Match Match
	Err   error
}

// Partition splits records into valid and rejected, preserving order.
func Partition(ms []Match) ([]Match, []Rejected) {
	valid := make([]Match, 0, len(ms))
	var rejected []Rejected
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			rejected = append(rejected, Rejected{Match: m, Err: err})
			continue
		}
		valid = append(valid, m)
	}
	return valid, rejected
}

// Window returns the earliest and latest kickoff date of ms.
// ok is false for an empty slice.
func Window(ms []Match) (start, end string, ok bool) {
	for _, m := range ms {
		d := m.Date()
		if !ok {
			start, end, ok = d, d, true
			continue
		}
		if d < start {
			start = d
		}
		if d > end {
			end = d
		}
	}
	return start, end, ok
}

// InRange keeps the matches whose kickoff date falls within [start, end].
// A zero bound is open.
func InRange(ms []Match, start, end time.Time) []Match {
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		d := m.Date()
		if !start.IsZero() && d < FormatDate(start) {
			continue
		}
		if !end.IsZero() && d > FormatDate(end) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CountByStatus tallies the derived statuses of ms.
func CountByStatus(ms []Match, now time.Time) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, m := range ms {
		counts[m.Status(now)]++
	}
	return counts
}
