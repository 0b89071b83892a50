package history

import (
	"time"

	"match-sync/feature/workflow"
)

// SyncRun is one workflow run.
type SyncRun struct {
	RunID               string        `gorm:"primaryKey;size:36" json:"run_id"`
	AgeGroup            string        `gorm:"size:64;index" json:"age_group"`
	Division            string        `gorm:"size:128" json:"division,omitempty"`
	DryRun              bool          `json:"dry_run"`
	Status              string        `gorm:"size:16;index" json:"status"`
	Error               string        `gorm:"type:text" json:"error,omitempty"`
	FailedStage         string        `gorm:"size:32" json:"failed_stage,omitempty"`
	WindowStart         *time.Time    `json:"window_start,omitempty"`
	WindowEnd           *time.Time    `json:"window_end,omitempty"`
	StartedAt           time.Time     `gorm:"index" json:"started_at"`
	FinishedAt          time.Time     `json:"finished_at"`
	Extracted           int           `json:"extracted"`
	Rejected            int           `json:"rejected"`
	Posted              int           `json:"posted"`
	Updated             int           `json:"updated"`
	Duplicates          int           `json:"duplicates"`
	Skipped             int           `json:"skipped"`
	Errors              int           `json:"errors"`
	GamesScheduled      int           `json:"games_scheduled"`
	GamesScored         int           `json:"games_scored"`
	APICallsSuccessful  int           `json:"api_calls_successful"`
	APICallsFailed      int           `json:"api_calls_failed"`
	APICallTimeMs       int64         `json:"api_call_time_ms"`
	ExecutionDurationMs int64         `json:"execution_duration_ms"`
	ErrorsEncountered   int           `json:"errors_encountered"`
	CacheHitRate        float64       `json:"cache_hit_rate"`
	ArchiveKey          string        `gorm:"size:255" json:"archive_key,omitempty"`
	Items               []SyncRunItem `gorm:"foreignKey:RunID;references:RunID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName pins the table name.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// SyncRunItem is the record of one match within a run.
type SyncRunItem struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	RunID    string `gorm:"size:36;index" json:"-"`
	Position int    `json:"index"`
	MatchID  string `gorm:"size:128" json:"match_id"`
	Label    string `gorm:"size:255" json:"label"`
	Outcome  string `gorm:"size:16" json:"outcome"`
	Action   string `gorm:"size:16" json:"action,omitempty"`
	MatchKey string `gorm:"size:64" json:"key,omitempty"`
	RemoteID int64  `json:"remote_id,omitempty"`
	Detail   string `gorm:"type:text" json:"detail,omitempty"`
	Error    string `gorm:"type:text" json:"error,omitempty"`
}

// TableName pins the table name.
func (SyncRunItem) TableName() string {
	return "sync_run_items"
}

// FromReport flattens a workflow report into a ledger row.
func FromReport(r *workflow.Report) SyncRun {
	run := SyncRun{
		RunID:               r.RunID,
		AgeGroup:            r.Request.AgeGroup,
		Division:            r.Request.Division,
		DryRun:              r.Request.DryRun,
		Status:              r.Status,
		Error:               r.Error,
		FailedStage:         string(r.FailedAt),
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
		Extracted:           r.Extracted,
		Rejected:            r.Rejected,
		GamesScheduled:      r.Metrics.GamesScheduled,
		GamesScored:         r.Metrics.GamesScored,
		APICallsSuccessful:  r.Metrics.APICallsSuccessful,
		APICallsFailed:      r.Metrics.APICallsFailed,
		APICallTimeMs:       r.Metrics.APICallTimeMs,
		ExecutionDurationMs: r.Metrics.ExecutionDurationMs,
		ErrorsEncountered:   r.Metrics.ErrorsEncountered,
		CacheHitRate:        r.Cache.HitRate,
		ArchiveKey:          r.ArchiveKey,
	}
	if !r.Request.Start.IsZero() {
		start := r.Request.Start
		run.WindowStart = &start
	}
	if !r.Request.End.IsZero() {
		end := r.Request.End
		run.WindowEnd = &end
	}

	res := r.Result
	if res == nil {
		return run
	}
	run.Posted = res.Posted
	run.Updated = res.Updated
	run.Duplicates = res.Duplicates
	run.Skipped = res.Skipped
	run.Errors = res.Errors
	run.Items = make([]SyncRunItem, 0, len(res.Records))
	for _, rec := range res.Records {
		item := SyncRunItem{
			RunID:    r.RunID,
			Position: rec.Index,
			MatchID:  rec.ID,
			Label:    rec.Label,
			Outcome:  string(rec.Outcome),
			Action:   string(rec.Action),
			MatchKey: rec.Key,
			RemoteID: rec.RemoteID,
			Detail:   rec.Detail,
			Error:    rec.Error,
		}
		run.Items = append(run.Items, item)
	}
	return run
}
