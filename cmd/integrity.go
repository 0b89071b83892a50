package cmd

import (
	"context"
	"fmt"
	"os"

	"match-sync/feature/history"
	"match-sync/feature/integrity"
	"match-sync/feature/integrity/checks"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the bucket, the scraper exports and the run ledger",
	Long: `Checks that the bucket has the export and report folders, that every
scraper export decodes and validates, and that the run ledger schema is
complete. Exits non-zero when any check reports an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Validate every scraper export",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Check the run ledger schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	integrityCmd.AddCommand(structureCmd, exportsCmd, ledgerCmd)
	RootCmd.AddCommand(integrityCmd)
}

// schemaChecker keeps a nil store out of the interface.
func schemaChecker(store *history.Store) checks.SchemaChecker {
	if store == nil {
		return nil
	}
	return store
}

func (rt *env) integrityService(store *history.Store) (*integrity.Service, error) {
	client := rt.openStorage()
	if client == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	return integrity.NewService(client, schemaChecker(store), rt.integrityOptions(), rt.logger), nil
}

func (rt *env) integrityOptions() integrity.Options {
	return integrity.Options{
		Bucket:       rt.cfg.Storage.Bucket,
		ExportPrefix: rt.cfg.Workflow.ExportPrefix,
		ReportPrefix: rt.cfg.Workflow.ReportPrefix,
		StaleAfter:   rt.cfg.Workflow.StaleAfter(),
	}
}

func runIntegrityChecks(ctx context.Context, structure, exports, ledger bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	var store *history.Store
	if ledger {
		store = rt.openHistory()
	}
	svc, err := rt.integrityService(store)
	if err != nil {
		return err
	}

	failed := 0
	if structure {
		missing, err := svc.CheckStructure(ctx)
		switch {
		case err != nil:
			rt.logger.Error("Structure check failed", zap.Error(err))
			failed++
		case len(missing) == 0:
			rt.logger.Info("Structure check passed")
		case fixFlag:
			if err := svc.FixStructure(ctx, missing); err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			rt.logger.Info("Structure fixed", zap.Strings("created", missing))
		default:
			rt.logger.Warn("Missing folders detected (use --fix to create them)", zap.Strings("missing", missing))
			failed++
		}
	}

	if exports {
		reports, err := svc.CheckExports(ctx)
		if err != nil {
			rt.logger.Error("Exports check failed", zap.Error(err))
			failed++
		}
		for _, r := range reports {
			fields := []zap.Field{
				zap.String("key", r.Key),
				zap.String("status", r.Status),
				zap.Int("valid", r.Valid),
				zap.Int("invalid", r.Invalid),
				zap.Strings("problems", r.Problems),
			}
			switch r.Status {
			case "error":
				rt.logger.Error("Export check", fields...)
				failed++
			case "warning":
				rt.logger.Warn("Export check", fields...)
			default:
				rt.logger.Info("Export check", fields...)
			}
		}
	}

	if ledger {
		report, err := svc.CheckLedger()
		if err != nil {
			rt.logger.Error("Ledger check failed", zap.Error(err))
			failed++
		} else {
			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
			if report.Status == "error" {
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d integrity checks failed", failed)
	}
	return nil
}
