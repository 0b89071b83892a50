package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"match-sync/feature/history"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var (
	runsAgeGroup string
	runsStatus   string
	runsLimit    int
)

var errHistoryDisabled = errors.New("run history is disabled: set DATABASE_ENABLED=true")

// runsCmd inspects the run ledger.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: withHistory(func(ctx context.Context, store *history.Store, args []string) (any, error) {
		return store.ListRuns(ctx, history.Filter{AgeGroup: runsAgeGroup, Status: runsStatus, Limit: runsLimit})
	}),
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its per-match records",
	Args:  cobra.ExactArgs(1),
	RunE: withHistory(func(ctx context.Context, store *history.Store, args []string) (any, error) {
		return store.GetRun(ctx, args[0])
	}),
}

var runsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent run",
	Args:  cobra.NoArgs,
	RunE: withHistory(func(ctx context.Context, store *history.Store, args []string) (any, error) {
		return store.LatestRun(ctx, runsAgeGroup)
	}),
}

// withHistory opens the ledger and prints whatever fn returns as JSON.
func withHistory(fn func(ctx context.Context, store *history.Store, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		store := rt.openHistory()
		if store == nil {
			return errHistoryDisabled
		}
		out, err := fn(cmd.Context(), store, args)
		if err != nil {
			return err
		}

		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to print runs: %w", err)
		}
		return nil
	}
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsAgeGroup, "age-group", "", "Only runs for this age group")
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "Only runs with this status (succeeded, failed)")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", history.DefaultLimit, "Maximum number of runs")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsLatestCmd)
	RootCmd.AddCommand(runsCmd)
}
