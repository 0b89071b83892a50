package checks

import "fmt"

// SchemaChecker reports columns the run ledger expects but the database
// lacks, as "table.column".
type SchemaChecker interface {
	CheckSchema() ([]string, error)
}

// LedgerReport is the result of a ledger schema check.
type LedgerReport struct {
	Enabled        bool     `json:"enabled"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "disabled", "error"
}

// CheckLedger verifies the run ledger schema. A nil checker reports a
// disabled ledger.
func CheckLedger(checker SchemaChecker) (*LedgerReport, error) {
	if checker == nil {
		return &LedgerReport{Status: "disabled", MissingColumns: []string{}}, nil
	}
	missing, err := checker.CheckSchema()
	if err != nil {
		return nil, fmt.Errorf("inspect ledger schema: %w", err)
	}
	report := &LedgerReport{Enabled: true, Matched: true, Status: "ok", MissingColumns: []string{}}
	if len(missing) > 0 {
		report.Matched = false
		report.Status = "error"
		report.MissingColumns = missing
	}
	return report, nil
}
