package checks

import (
	"context"
	"fmt"
	"time"

	"match-sync/core/storage"
	"match-sync/feature/matches"
	"match-sync/feature/workflow"
)

// maxProblems caps the per-export problem list.
const maxProblems = 10

// ExportReport describes one scraper export in the bucket.
type ExportReport struct {
	Key       string    `json:"key"`
	AgeGroup  string    `json:"age_group,omitempty"`
	Division  string    `json:"division,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
	Matches   int       `json:"matches"`
	Valid     int       `json:"valid"`
	Invalid   int       `json:"invalid"`
	Stale     bool      `json:"stale"`
	Problems  []string  `json:"problems,omitempty"`
	Status    string    `json:"status"` // "ok", "warning", "error"
}

// ExportsOptions controls CheckExports.
type ExportsOptions struct {
	Prefix     string
	StaleAfter time.Duration
	Now        time.Time
}

// CheckExports decodes every export under the prefix and validates its
// records the same way a run would.
func CheckExports(ctx context.Context, client storage.Client, bucket string, opts ExportsOptions) ([]ExportReport, error) {
	keys, err := storage.ListKeys(ctx, client, bucket, folder(opts.Prefix), ".json")
	if err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	reports := make([]ExportReport, 0, len(keys))
	for _, key := range keys {
		reports = append(reports, checkExport(ctx, client, bucket, key, opts))
	}
	return reports, nil
}

func checkExport(ctx context.Context, client storage.Client, bucket, key string, opts ExportsOptions) ExportReport {
	report := ExportReport{Key: key, Status: "ok"}

	var export workflow.Export
	if err := storage.GetJSON(ctx, client, bucket, key, &export); err != nil {
		report.Status = "error"
		report.Problems = []string{err.Error()}
		return report
	}

	report.AgeGroup = export.AgeGroup
	report.Division = export.Division
	report.ScrapedAt = export.ScrapedAt
	report.Matches = len(export.Matches)

	valid, rejected := matches.Partition(export.Matches)
	report.Valid = len(valid)
	report.Invalid = len(rejected)
	for _, r := range rejected {
		report.warn(fmt.Sprintf("%s: %v", r.Match.MatchID, r.Err))
	}

	if export.AgeGroup == "" {
		report.Status = "error"
		report.Problems = append(report.Problems, "missing age_group")
	} else if want := workflow.ExportKey(opts.Prefix, workflow.Filters{AgeGroup: export.AgeGroup, Division: export.Division}); want != key {
		report.warn("stored under " + key + ", runs read " + want)
	}

	if opts.StaleAfter > 0 && !export.ScrapedAt.IsZero() && opts.Now.Sub(export.ScrapedAt) > opts.StaleAfter {
		report.Stale = true
		report.warn("scraped " + export.ScrapedAt.UTC().Format(time.RFC3339))
	}
	return report
}

func (r *ExportReport) warn(problem string) {
	if r.Status == "ok" {
		r.Status = "warning"
	}
	if len(r.Problems) < maxProblems {
		r.Problems = append(r.Problems, problem)
	}
}
