package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var healthFull bool

// healthCmd checks the remote API.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the match-tracking API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		client, err := rt.apiClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.API.Timeout())
		defer cancel()

		start := time.Now()
		h, err := client.Health(ctx, healthFull)
		if err != nil {
			return fmt.Errorf("API health check failed: %w", err)
		}
		rt.logger.Info("API is reachable",
			zap.String("base_url", client.BaseURL()),
			zap.String("status", h.Status),
			zap.String("version", h.Version),
			zap.String("database", h.Database),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthFull, "full", false, "Use /health/full, which also checks the API database")
	RootCmd.AddCommand(healthCmd)
}
