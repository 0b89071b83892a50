// Package workflow runs the end-to-end scrape and sync sequence.
//
// An Orchestrator walks five stages in order: navigate, apply filters, set
// the date range, extract and sync. Each stage has its own retry loop with
// exponential backoff. A stage that exhausts its attempts fails the run with a
// *StageError and the remaining stages are not started. The scraper is
// always closed, whatever the outcome.
//
// The scraper is an external collaborator. StorageScraper reads the export a
// browser scraper uploaded to object storage; FileScraper reads a local
// export file.
//
// Runner wires a complete run: a fresh API client, team cache and
// ExecutionMetrics per run, followed by report archiving and the run ledger.
package workflow
