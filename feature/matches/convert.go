package matches

import (
	"errors"
	"strings"
	"time"

	"match-sync/core/apiclient"
)

// DateLayout is the wire format of match_date.
const DateLayout = "2006-01-02"

// ErrUnresolved is returned by ToWire when a required foreign key is missing.
var ErrUnresolved = errors.New("unresolved entity id")

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate reduces a remote match_date ("2025-10-04" or a full
// timestamp) to YYYY-MM-DD.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(DateLayout) {
		if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return s[:len(DateLayout)]
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FormatDate(t)
	}
	return s
}

// WireIDs are the resolved foreign keys for one match.
type WireIDs struct {
	HomeTeamID  int64
	AwayTeamID  int64
	AgeGroupID  int64
	DivisionID  int64
	SeasonID    int64
	MatchTypeID int64
}

// Resolved reports whether the keys required by POST /matches are present.
func (ids WireIDs) Resolved() bool {
	return ids.HomeTeamID > 0 && ids.AwayTeamID > 0 && ids.AgeGroupID > 0
}

// ToWire converts m into the POST /matches payload. TBD and missing scores
// become 0 so the remote side stores a placeholder.
func ToWire(m Match, ids WireIDs, now time.Time) (apiclient.MatchCreate, error) {
	if !ids.Resolved() {
		return apiclient.MatchCreate{}, ErrUnresolved
	}
	out := apiclient.MatchCreate{
		MatchID:     m.MatchID,
		MatchDate:   m.Date(),
		HomeTeamID:  ids.HomeTeamID,
		AwayTeamID:  ids.AwayTeamID,
		HomeScore:   m.HomeScore.Value(),
		AwayScore:   m.AwayScore.Value(),
		MatchStatus: string(m.Status(now)),
		SeasonID:    ids.SeasonID,
		AgeGroupID:  ids.AgeGroupID,
		MatchTypeID: ids.MatchTypeID,
	}
	if ids.DivisionID > 0 {
		div := ids.DivisionID
		out.DivisionID = &div
	}
	return out, nil
}

// ScorePatchFor builds the PATCH /matches/{id} payload for m.
func ScorePatchFor(m Match, now time.Time) apiclient.ScorePatch {
	return apiclient.ScorePatch{
		HomeScore:   m.HomeScore.Value(),
		AwayScore:   m.AwayScore.Value(),
		MatchStatus: string(m.Status(now)),
	}
}

// ToSubmission converts m into the asynchronous POST /matches/submit payload,
// which carries names instead of IDs.
func ToSubmission(m Match, ageGroup, division, source string, now time.Time) apiclient.MatchSubmission {
	return apiclient.MatchSubmission{
		HomeTeam:        CanonicalTeamName(m.HomeTeam),
		AwayTeam:        CanonicalTeamName(m.AwayTeam),
		MatchDate:       m.Date(),
		AgeGroup:        ageGroup,
		Division:        division,
		MatchType:       m.Competition,
		HomeScore:       m.HomeScore.Ptr(),
		AwayScore:       m.AwayScore.Ptr(),
		MatchStatus:     string(m.Status(now)),
		Location:        m.Location,
		ExternalMatchID: m.MatchID,
		Source:          source,
	}
}
