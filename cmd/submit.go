package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"match-sync/core/apiclient"
	"match-sync/feature/entities"
	"match-sync/feature/reconciler"
	"match-sync/feature/runs"
	"match-sync/feature/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	submitAgeGroup string
	submitDivision string
	submitStart    string
	submitEnd      string
	submitInput    string
	submitDryRun   bool
	submitWait     bool
	submitPolls    int
)

// submitCmd queues matches for server-side processing.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Queue extracted matches on the API's asynchronous ingestion endpoint",
	Long: `Like sync, but instead of resolving teams and deduplicating locally every
match is posted to /matches/submit by name and the server does the rest.

With --wait each task is polled until it finishes and failed tasks are
reported as errors.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitAgeGroup, "age-group", "", "Age group to submit (e.g. U14)")
	submitCmd.Flags().StringVar(&submitDivision, "division", "", "Division filter")
	submitCmd.Flags().StringVar(&submitStart, "start", "", "Window start (YYYY-MM-DD)")
	submitCmd.Flags().StringVar(&submitEnd, "end", "", "Window end (YYYY-MM-DD)")
	submitCmd.Flags().StringVar(&submitInput, "input", "", "Read a local export file instead of object storage")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Plan only: nothing is submitted")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "Poll every task until it finishes")
	submitCmd.Flags().IntVar(&submitPolls, "wait-retries", reconciler.DefaultPollPolicy.MaxRetries, "Polls per task before giving up")
	_ = submitCmd.MarkFlagRequired("age-group")

	RootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
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
		AgeGroup: submitAgeGroup,
		Division: submitDivision,
		Start:    submitStart,
		End:      submitEnd,
		DryRun:   submitDryRun,
	}.Request()
	if err != nil {
		return err
	}
	req.InputPath = submitInput

	opts := []reconciler.SubmitOption{reconciler.WithSubmitLogger(rt.logger)}
	if submitWait {
		poll := reconciler.DefaultPollPolicy
		poll.MaxRetries = submitPolls
		opts = append(opts, reconciler.WithWait(poll))
	}
	factory := func(client *apiclient.Client, _ *entities.Resolver, l *zap.Logger) workflow.Syncer {
		return reconciler.NewSubmitter(client, append(opts, reconciler.WithSubmitLogger(l))...)
	}

	start := time.Now()
	report, err := rt.runner(rt.openHistory(), workflow.WithSyncerFactory(factory)).Run(ctx, req)
	printReport(rt.logger, report)
	if err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}
	rt.logger.Info("Submission finished",
		zap.Bool("waited", submitWait),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
