package workflow

import (
	"time"

	"match-sync/core/retry"
)

// Config holds the workflow settings.
type Config struct {
	// StageAttempts is the number of attempts per stage.
	StageAttempts int `mapstructure:"stage_attempts" default:"3"`
	// BackoffBase is the delay before the first stage retry, in seconds.
	BackoffBase float64 `mapstructure:"backoff_base" default:"1.0"`
	// BackoffMultiplier scales the delay between stage retries.
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" default:"2.0"`
	// Source selects the scraper: "storage" or "file".
	Source string `mapstructure:"source" default:"storage"`
	// InputPath is the export file read by the file source.
	InputPath string `mapstructure:"input_path" default:""`
	// ExportPrefix is the object prefix of scraper exports.
	ExportPrefix string `mapstructure:"export_prefix" default:"exports"`
	// ReportPrefix is the object prefix of archived run reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
	// ArchiveReports uploads every run report to object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"true"`
	// LookbackDays sets the default window start relative to today.
	LookbackDays int `mapstructure:"lookback_days" default:"7"`
	// LookaheadDays sets the default window end relative to today.
	LookaheadDays int `mapstructure:"lookahead_days" default:"14"`
	// StaleAfterHours flags exports scraped longer ago than this. Zero disables the check.
	StaleAfterHours int `mapstructure:"stale_after_hours" default:"48"`
	// ReplayTTLSeconds replays a successful admin-triggered run to identical
	// requests for this long. Zero only joins runs already in flight.
	ReplayTTLSeconds int `mapstructure:"replay_ttl_seconds" default:"0"`
}

// ReplayTTL returns ReplayTTLSeconds as a duration.
func (c Config) ReplayTTL() time.Duration {
	if c.ReplayTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReplayTTLSeconds) * time.Second
}

// StaleAfter returns StaleAfterHours as a duration.
func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterHours) * time.Hour
}

// StagePolicy returns the retry policy applied to each stage.
func (c Config) StagePolicy() retry.Policy {
	attempts := c.StageAttempts
	if attempts < 1 {
		attempts = 3
	}
	return retry.Policy{
		MaxRetries: attempts - 1,
		Base:       time.Duration(c.BackoffBase * float64(time.Second)),
		Multiplier: c.BackoffMultiplier,
	}.Normalize()
}

// DefaultWindow returns the date window used when a request leaves it open.
func (c Config) DefaultWindow(now time.Time) (start, end time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -c.LookbackDays), day.AddDate(0, 0, c.LookaheadDays)
}
