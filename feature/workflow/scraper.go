package workflow

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"match-sync/feature/matches"

	"go.uber.org/zap"
)

var (
	// ErrScraperUnavailable is returned when a run has no scraper.
	ErrScraperUnavailable = errors.New("scraper unavailable")
	// ErrExportNotFound is returned when no export matches the filters.
	ErrExportNotFound = errors.New("export not found")
	// ErrInvalidDateRange is returned when the window end precedes its start.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrStageOrder is returned when a stage runs before its prerequisite.
	ErrStageOrder = errors.New("stage called out of order")
	// ErrExportMismatch is returned when an export belongs to another age group.
	ErrExportMismatch = errors.New("export does not match filters")
	// ErrMalformedExport is returned when an export is not valid JSON.
	ErrMalformedExport = errors.New("malformed export")
)

// Filters selects the league table the scraper extracts.
type Filters struct {
	AgeGroup string `json:"age_group"`
	Division string `json:"division,omitempty"`
}

// Scraper is the extraction collaborator driven by the orchestrator.
type Scraper interface {
	Navigate(ctx context.Context) error
	ApplyFilters(ctx context.Context, f Filters) error
	SetDateRange(ctx context.Context, start, end time.Time) error
	ExtractMatches(ctx context.Context) ([]matches.Match, error)
	Close() error
}

// Export is the document a browser scraper produces for one filter set.
type Export struct {
	AgeGroup  string          `json:"age_group"`
	Division  string          `json:"division,omitempty"`
	ScrapedAt time.Time       `json:"scraped_at"`
	Source    string          `json:"source,omitempty"`
	Matches   []matches.Match `json:"matches"`
}

// ExportKey returns the object key of the export for f under prefix.
func ExportKey(prefix string, f Filters) string {
	division := Slug(f.Division)
	if division == "" {
		division = "all"
	}
	return path.Join(prefix, Slug(f.AgeGroup), division+".json")
}

// Slug lowercases s and replaces runs of other characters with '-'.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// session holds the state shared by the scraper implementations.
type session struct {
	logger   *zap.Logger
	filters  *Filters
	start    time.Time
	end      time.Time
	rejected int
	closed   bool
}

func (s *session) applyFilters(f Filters) error {
	if s.closed {
		return fmt.Errorf("%w: scraper closed", ErrStageOrder)
	}
	if strings.TrimSpace(f.AgeGroup) == "" {
		return fmt.Errorf("%w: age group is required", ErrExportMismatch)
	}
	s.filters = &f
	return nil
}

func (s *session) setDateRange(start, end time.Time) error {
	if s.filters == nil {
		return fmt.Errorf("%w: date range before filters", ErrStageOrder)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, matches.FormatDate(start), matches.FormatDate(end))
	}
	s.start, s.end = start, end
	return nil
}

// extract validates export against the filters and returns the valid matches
// inside the window.
func (s *session) extract(export Export) ([]matches.Match, error) {
	if s.filters == nil {
		return nil, fmt.Errorf("%w: extract before filters", ErrStageOrder)
	}
	if export.AgeGroup != "" && !strings.EqualFold(strings.TrimSpace(export.AgeGroup), strings.TrimSpace(s.filters.AgeGroup)) {
		return nil, fmt.Errorf("%w: export age group %q, want %q", ErrExportMismatch, export.AgeGroup, s.filters.AgeGroup)
	}

	valid, rejected := matches.Partition(export.Matches)
	for _, r := range rejected {
		s.logger.Warn("Dropping invalid match",
			zap.String("match_id", r.Match.MatchID),
			zap.String("teams", r.Match.Teams()),
			zap.Error(r.Err),
		)
	}
	s.rejected = len(rejected)

	inRange := matches.InRange(valid, s.start, s.end)
	s.logger.Info("Matches extracted",
		zap.Int("total", len(export.Matches)),
		zap.Int("rejected", len(rejected)),
		zap.Int("in_range", len(inRange)),
	)
	return inRange, nil
}

// Rejected returns the number of records dropped by the last extraction.
func (s *session) Rejected() int {
	return s.rejected
}
