package apiclient

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Team is a team as returned by GET /teams and POST /teams.
type Team struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	City        string  `json:"city,omitempty"`
	AgeGroupIDs []int64 `json:"age_group_ids,omitempty"`
	DivisionIDs []int64 `json:"division_ids,omitempty"`
	AcademyTeam bool    `json:"academy_team"`
}

// Validate checks the fields the client relies on.
func (t Team) Validate() error {
	return validateNamed("team", t.ID, t.Name)
}

// TeamCreate is the POST /teams payload.
type TeamCreate struct {
	Name        string  `json:"name"`
	AgeGroupIDs []int64 `json:"age_group_ids"`
	DivisionIDs []int64 `json:"division_ids"`
	AcademyTeam bool    `json:"academy_team"`
}

// AgeGroup is an age group such as "U14".
type AgeGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate checks the fields the client relies on.
func (a AgeGroup) Validate() error {
	return validateNamed("age group", a.ID, a.Name)
}

// Division is a competition division.
type Division struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Validate checks the fields the client relies on.
func (d Division) Validate() error {
	return validateNamed("division", d.ID, d.Name)
}

// NameCreate is the payload for POST /age-groups and POST /divisions.
type NameCreate struct {
	Name string `json:"name"`
}

// Season is a season; the date range is optional.
type Season struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// Validate checks the fields the client relies on.
func (s Season) Validate() error {
	return validateNamed("season", s.ID, s.Name)
}

// MatchType is a match type such as "League".
type MatchType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate checks the fields the client relies on.
func (m MatchType) Validate() error {
	return validateNamed("match type", m.ID, m.Name)
}

// Match is a match stored by the remote API.
type Match struct {
	ID          int64   `json:"id"`
	MatchID     *string `json:"match_id,omitempty"`
	MatchDate   string  `json:"match_date"`
	HomeTeamID  int64   `json:"home_team_id"`
	AwayTeamID  int64   `json:"away_team_id"`
	HomeScore   *int    `json:"home_score"`
	AwayScore   *int    `json:"away_score"`
	MatchStatus string  `json:"match_status,omitempty"`
	SeasonID    *int64  `json:"season_id,omitempty"`
	AgeGroupID  *int64  `json:"age_group_id,omitempty"`
	MatchTypeID *int64  `json:"match_type_id,omitempty"`
	DivisionID  *int64  `json:"division_id,omitempty"`
}

// Validate checks the fields the client relies on.
func (m Match) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("match: invalid id %d", m.ID)
	}
	if strings.TrimSpace(m.MatchDate) == "" {
		return fmt.Errorf("match %d: missing match_date", m.ID)
	}
	if m.HomeTeamID <= 0 || m.AwayTeamID <= 0 {
		return fmt.Errorf("match %d: missing team ids", m.ID)
	}
	return nil
}

// HasPlaceholderScore reports a score that is null, or 0-0 on a match that is
// not completed. A completed 0-0 is a real draw.
func (m Match) HasPlaceholderScore() bool {
	if m.HomeScore == nil || m.AwayScore == nil {
		return true
	}
	if strings.EqualFold(m.MatchStatus, "completed") {
		return false
	}
	return *m.HomeScore == 0 && *m.AwayScore == 0
}

// MatchCreate is the POST /matches payload.
type MatchCreate struct {
	MatchID     string `json:"match_id"`
	MatchDate   string `json:"match_date"`
	HomeTeamID  int64  `json:"home_team_id"`
	AwayTeamID  int64  `json:"away_team_id"`
	HomeScore   int    `json:"home_score"`
	AwayScore   int    `json:"away_score"`
	MatchStatus string `json:"match_status"`
	SeasonID    int64  `json:"season_id"`
	AgeGroupID  int64  `json:"age_group_id"`
	MatchTypeID int64  `json:"match_type_id"`
	DivisionID  *int64 `json:"division_id,omitempty"`
}

// ScorePatch is the PATCH /matches/{id} payload.
type ScorePatch struct {
	HomeScore   int    `json:"home_score"`
	AwayScore   int    `json:"away_score"`
	MatchStatus string `json:"match_status"`
}

// MatchQuery filters GET /matches.
type MatchQuery struct {
	StartDate  string
	EndDate    string
	AgeGroupID int64
	DivisionID int64
}

// Health is the GET /health response.
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Database  string `json:"database,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Validate checks the fields the client relies on.
func (h Health) Validate() error {
	if strings.TrimSpace(h.Status) == "" {
		return errors.New("health: missing status")
	}
	return nil
}

// MatchSubmission is the POST /matches/submit payload. It carries natural
// keys and lets the remote side resolve entities asynchronously.
type MatchSubmission struct {
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	MatchDate       string `json:"match_date"`
	Season          string `json:"season,omitempty"`
	AgeGroup        string `json:"age_group"`
	MatchType       string `json:"match_type,omitempty"`
	Division        string `json:"division,omitempty"`
	HomeScore       *int   `json:"home_score,omitempty"`
	AwayScore       *int   `json:"away_score,omitempty"`
	MatchStatus     string `json:"match_status"`
	Location        string `json:"location,omitempty"`
	ExternalMatchID string `json:"external_match_id,omitempty"`
	Source          string `json:"source,omitempty"`
}

// SubmitResponse is returned by POST /matches/submit.
type SubmitResponse struct {
	TaskID    string `json:"task_id"`
	StatusURL string `json:"status_url"`
	Message   string `json:"message,omitempty"`
}

// Validate checks the fields the client relies on.
func (s SubmitResponse) Validate() error {
	if strings.TrimSpace(s.TaskID) == "" {
		return errors.New("submit: missing task_id")
	}
	return nil
}

// TaskStatus is returned by GET /matches/task/{task_id}.
type TaskStatus struct {
	TaskID string              `json:"task_id"`
	State  string              `json:"state"`
	Ready  bool                `json:"ready"`
	Result jsoniter.RawMessage `json:"result,omitempty"`
	Error  *string             `json:"error,omitempty"`
}

// Failed reports a finished task that carries an error.
func (t TaskStatus) Failed() bool {
	return t.Ready && (t.Error != nil || strings.EqualFold(t.State, "FAILURE"))
}

func validateNamed(kind string, id int64, name string) error {
	if id <= 0 {
		return fmt.Errorf("%s: invalid id %d", kind, id)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s %d: missing name", kind, id)
	}
	return nil
}
