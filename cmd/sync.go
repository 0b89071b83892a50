package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"match-sync/core/reconcile"
	"match-sync/feature/runs"
	"match-sync/feature/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// confirmThreshold is the number of planned mutations above which a live
// sync asks for confirmation.
const confirmThreshold = 25

var (
	syncAgeGroup string
	syncDivision string
	syncStart    string
	syncEnd      string
	syncInput    string
	syncDryRun   bool
	syncYes      bool
)

// syncCmd runs the workflow once.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Extract matches for one age group and sync them to the API",
	Long: `Runs navigate, apply filters, set date range, extract and sync once.

The export is read from object storage (exports/<age-group>/<division>.json)
unless --input points at a local file. Without --start and --end the default
window around today is used.

Examples:
  # Preview without writing anything
  sync --age-group U14 --division Northeast --dry-run

  # Sync a local export for October
  sync --age-group U14 --input ./u14.json --start 2025-10-01 --end 2025-10-31

  # Non-interactive
  sync --age-group U14 --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncAgeGroup, "age-group", "", "Age group to sync (e.g. U14)")
	syncCmd.Flags().StringVar(&syncDivision, "division", "", "Division filter")
	syncCmd.Flags().StringVar(&syncStart, "start", "", "Window start (YYYY-MM-DD)")
	syncCmd.Flags().StringVar(&syncEnd, "end", "", "Window end (YYYY-MM-DD)")
	syncCmd.Flags().StringVar(&syncInput, "input", "", "Read a local export file instead of object storage")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only: no entity, match or score writes")
	syncCmd.Flags().BoolVar(&syncYes, "yes", false, "Skip the confirmation prompt for large batches")
	_ = syncCmd.MarkFlagRequired("age-group")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	if err := rt.cfg.Validate(); err != nil {
		return err
	}

	req, err := runs.TriggerRequest{
		AgeGroup: syncAgeGroup,
		Division: syncDivision,
		Start:    syncStart,
		End:      syncEnd,
		DryRun:   syncDryRun,
	}.Request()
	if err != nil {
		return err
	}
	req.InputPath = syncInput

	runner := rt.runner(rt.openHistory())

	if !req.DryRun && !syncYes {
		preview := req
		preview.DryRun = true
		rt.logger.Info("Planning sync...")
		planned, err := runner.Run(ctx, preview)
		if err != nil {
			return fmt.Errorf("failed to plan sync: %w", err)
		}
		printReport(rt.logger, planned)
		if mutations(planned.Result) > confirmThreshold && !confirmSync(mutations(planned.Result)) {
			rt.logger.Warn("Sync cancelled by user. No changes were made.")
			return nil
		}
	}

	report, err := runner.Run(ctx, req)
	printReport(rt.logger, report)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if req.DryRun {
		rt.logger.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

func mutations(res *reconcile.SyncResult) int {
	if res == nil {
		return 0
	}
	return res.Posted + res.Updated
}

// printReport logs the run summary and a sample of the per-match records.
func printReport(l *zap.Logger, report *workflow.Report) {
	if report == nil {
		return
	}
	l.Info("Run report",
		zap.String("run_id", report.RunID),
		zap.String("status", report.Status),
		zap.Int("extracted", report.Extracted),
		zap.Int("rejected", report.Rejected),
	)
	res := report.Result
	if res == nil {
		return
	}
	l.Info("Sync result",
		zap.Bool("dry_run", res.DryRun),
		zap.Int("posted", res.Posted),
		zap.Int("updated", res.Updated),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors),
	)

	// Errors first, then everything else, at most five lines.
	sample := append(res.ByOutcome(reconcile.OutcomeError), res.ByOutcome(reconcile.OutcomePosted)...)
	sample = append(sample, res.ByOutcome(reconcile.OutcomeUpdated)...)
	maxShow := min(5, len(sample))
	for _, rec := range sample[:maxShow] {
		l.Info("Sample record",
			zap.String("match_id", rec.ID),
			zap.String("teams", rec.Label),
			zap.String("outcome", string(rec.Outcome)),
			zap.String("detail", rec.Detail),
			zap.String("error", rec.Error),
		)
	}
	if len(sample) > maxShow {
		l.Info("Additional records not shown", zap.Int("count", len(sample)-maxShow))
	}
}

// confirmSync prompts the user before a large live sync.
func confirmSync(n int) bool {
	fmt.Printf("\n⚠️  %d matches will be created or updated. Type 'yes' to continue: ", n)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
