package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"match-sync/core/database"
	"match-sync/feature/workflow"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run matches the query.
var ErrRunNotFound = errors.New("run not found")

// Default and maximum page size of ListRuns.
const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Filter narrows ListRuns.
type Filter struct {
	AgeGroup string
	Status   string
	Limit    int
}

// Store persists runs with GORM. It implements workflow.RunStore.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ workflow.RunStore = (*Store)(nil)

// NewStore creates a Store over db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the ledger tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&SyncRun{}, &SyncRunItem{}); err != nil {
		return fmt.Errorf("migrate run ledger: %w", err)
	}
	return nil
}

// SaveRun stores report and its items in one transaction. Saving the same
// run twice replaces it.
func (s *Store) SaveRun(ctx context.Context, report *workflow.Report) error {
	if report == nil || report.RunID == "" {
		return errors.New("save run: missing run id")
	}
	run := FromReport(report)
	items := run.Items
	run.Items = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", run.RunID).Delete(&SyncRunItem{}).Error; err != nil {
			return err
		}
		if err := tx.Save(&run).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 100).Error
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.RunID, err)
	}
	s.logger.Debug("Run saved", zap.String("run_id", run.RunID), zap.Int("items", len(items)))
	return nil
}

// ListRuns returns runs newest first, without items.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]SyncRun, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := s.db.WithContext(ctx).Model(&SyncRun{})
	if f.AgeGroup != "" {
		q = q.Where("age_group = ?", f.AgeGroup)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var runs []SyncRun
	if err := q.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its items in batch order.
func (s *Store) GetRun(ctx context.Context, runID string) (*SyncRun, error) {
	var run SyncRun
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("run_id = ?", runID).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &run, nil
}

// LatestRun returns the most recent run, optionally for one age group.
func (s *Store) LatestRun(ctx context.Context, ageGroup string) (*SyncRun, error) {
	runs, err := s.ListRuns(ctx, Filter{AgeGroup: ageGroup, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return s.GetRun(ctx, runs[0].RunID)
}

// expectedColumns lists the columns the ledger reads and writes.
var expectedColumns = map[string][]string{
	"sync_runs": {
		"run_id", "age_group", "division", "dry_run", "status", "error",
		"failed_stage", "started_at", "finished_at", "posted", "updated",
		"duplicates", "skipped", "errors", "errors_encountered",
	},
	"sync_run_items": {
		"id", "run_id", "position", "match_id", "outcome", "error",
	},
}

// CheckSchema returns "table.column" for every expected ledger column missing
// from the live database.
func (s *Store) CheckSchema() ([]string, error) {
	tables := make([]string, 0, len(expectedColumns))
	for table := range expectedColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var missing []string
	for _, table := range tables {
		columns, err := database.GetTableColumns(s.db, table)
		if err != nil {
			return nil, err
		}
		present := make(map[string]bool, len(columns))
		for _, col := range columns {
			present[strings.ToLower(col.Field)] = true
		}
		for _, want := range expectedColumns[table] {
			if !present[want] {
				missing = append(missing, table+"."+want)
			}
		}
	}
	return missing, nil
}
