package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"match-sync/core/database"
	"match-sync/core/reconcile"
	"match-sync/feature/workflow"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var started = time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	s := NewStore(db, nil)
	require.NoError(t, s.Migrate())
	return s
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func sampleReport(id, ageGroup string, at time.Time) *workflow.Report {
	result := &reconcile.SyncResult{}
	result.Add(reconcile.Record{
		Index:    0,
		Subject:  reconcile.Subject{ID: "m1", Label: "IFA vs NEFC"},
		Outcome:  reconcile.OutcomePosted,
		Action:   reconcile.ActionCreate,
		Key:      "2025-10-18/1/2",
		RemoteID: 101,
	})
	result.Add(reconcile.Record{
		Index:   1,
		Subject: reconcile.Subject{ID: "m2", Label: "Bolts vs IFA"},
		Outcome: reconcile.OutcomeDuplicate,
		Action:  reconcile.ActionUpdateScore,
		Error:   "patch failed",
	})
	return &workflow.Report{
		RunID:      id,
		Request:    workflow.Request{AgeGroup: ageGroup, Division: "Northeast", Start: at.AddDate(0, 0, -7), End: at.AddDate(0, 0, 14)},
		Status:     workflow.StatusSucceeded,
		StartedAt:  at,
		FinishedAt: at.Add(3 * time.Second),
		Extracted:  2,
		Result:     result,
		Metrics:    workflow.MetricsSnapshot{GamesScored: 1, GamesScheduled: 1, APICallsSuccessful: 9},
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleReport("run-1", "U14", started)))

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "U14", run.AgeGroup)
	assert.Equal(t, workflow.StatusSucceeded, run.Status)
	assert.Equal(t, 1, run.Posted)
	assert.Equal(t, 1, run.Duplicates)
	assert.Equal(t, 9, run.APICallsSuccessful)
	require.NotNil(t, run.WindowStart)
	assert.True(t, run.WindowStart.Equal(started.AddDate(0, 0, -7)))

	require.Len(t, run.Items, 2)
	assert.Equal(t, "m1", run.Items[0].MatchID)
	assert.Equal(t, int64(101), run.Items[0].RemoteID)
	assert.Equal(t, "patch failed", run.Items[1].Error)
}

func TestStore_SaveRunReplacesItems(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	report := sampleReport("run-1", "U14", started)
	require.NoError(t, s.SaveRun(ctx, report))

	report.Status = workflow.StatusFailed
	report.Error = "sync: boom"
	report.Result.Records = report.Result.Records[:1]
	require.NoError(t, s.SaveRun(ctx, report))

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusFailed, run.Status)
	assert.Equal(t, "sync: boom", run.Error)
	assert.Len(t, run.Items, 1)
}

func TestStore_SaveRunWithoutResult(t *testing.T) {
	s := newSQLiteStore(t)
	report := &workflow.Report{
		RunID:     "run-failed",
		Request:   workflow.Request{AgeGroup: "U14"},
		Status:    workflow.StatusFailed,
		FailedAt:  workflow.StageNavigate,
		StartedAt: started,
	}
	require.NoError(t, s.SaveRun(context.Background(), report))

	run, err := s.GetRun(context.Background(), "run-failed")
	require.NoError(t, err)
	assert.Equal(t, "navigate", run.FailedStage)
	assert.Nil(t, run.WindowStart)
	assert.Empty(t, run.Items)

	assert.Error(t, s.SaveRun(context.Background(), &workflow.Report{}))
}

func TestStore_ListAndLatest(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleReport("a", "U14", started)))
	require.NoError(t, s.SaveRun(ctx, sampleReport("b", "U15", started.Add(time.Hour))))
	require.NoError(t, s.SaveRun(ctx, sampleReport("c", "U14", started.Add(2*time.Hour))))

	runs, err := s.ListRuns(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{runs[0].RunID, runs[1].RunID, runs[2].RunID})
	assert.Empty(t, runs[0].Items)

	runs, err = s.ListRuns(ctx, Filter{AgeGroup: "U14", Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "c", runs[0].RunID)

	latest, err := s.LatestRun(ctx, "U15")
	require.NoError(t, err)
	assert.Equal(t, "b", latest.RunID)
	assert.Len(t, latest.Items, 2)

	_, err = s.LatestRun(ctx, "U19")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_CheckSchema(t *testing.T) {
	t.Run("Migrated", func(t *testing.T) {
		missing, err := newSQLiteStore(t).CheckSchema()
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("Missing Columns", func(t *testing.T) {
		db, mock := setupMockDB(t)
		items := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
			AddRow("run_id", "varchar(36)", "YES", "MUL", nil, "")
		runs := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("run_id", "varchar(36)", "NO", "PRI", nil, "")
		mock.ExpectQuery("SHOW COLUMNS FROM `sync_run_items`").WillReturnRows(items)
		mock.ExpectQuery("SHOW COLUMNS FROM `sync_runs`").WillReturnRows(runs)

		missing, err := NewStore(db, nil).CheckSchema()
		require.NoError(t, err)
		assert.Contains(t, missing, "sync_run_items.position")
		assert.Contains(t, missing, "sync_runs.status")
		assert.NotContains(t, missing, "sync_runs.run_id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_DatabaseErrors(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `sync_runs`").WillReturnError(errors.New("connection reset"))

		_, err := NewStore(db, nil).ListRuns(context.Background(), Filter{Status: "failed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Save Rolls Back", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `sync_run_items`").WillReturnError(errors.New("lock wait timeout"))
		mock.ExpectRollback()

		err := NewStore(db, nil).SaveRun(context.Background(), sampleReport("run-1", "U14", started))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
