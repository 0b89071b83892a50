// Package history is the run ledger.
//
// Every workflow run is stored as one SyncRun row with its counts, metrics
// and status, plus one SyncRunItem per per-match record. The ledger lives in
// MySQL for shared deployments or SQLite for a single host, both through
// GORM. The package also exposes the read side over HTTP:
//
//	GET /runs           recent runs, filterable by age group and status
//	GET /runs/latest    most recent run, optionally for one age group
//	GET /runs/:id       one run with its items
package history
