// Package integrity checks the infrastructure a run depends on.
//
// # Checks Provided
//
//   - Structure: the export and report folders exist in the bucket (fixable).
//   - Exports: every scraper export decodes, is stored under the key runs read,
//     is fresh, and its match records validate.
//   - Ledger: the run history tables have every expected column.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/exports : Runs exports check.
//   - GET /integrity/ledger : Runs ledger schema check.
package integrity
