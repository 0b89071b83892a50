package cmd

import (
	"context"
	"fmt"

	"match-sync/feature/entities"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheTeams []string

// cacheCmd preloads the team cache and reports what a run would see.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Preload the team cache and print its statistics",
	Long: `Fetches every team once, exactly as the first lookup of a run would, and
prints the load time and team count. Use --team to check how names resolve.`,
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

		cfg := rt.cfg.Cache
		cfg.Enabled = true
		cache := entities.NewCache(client, cfg, rt.logger)
		defer cache.Clear()

		ctx := context.Background()
		loaded, err := cache.Preload(ctx)
		if err != nil {
			return fmt.Errorf("team cache preload failed: %w", err)
		}
		rt.logger.Info("Team cache loaded",
			zap.Int("teams", loaded.TeamCount),
			zap.Duration("load_time", loaded.LoadTime),
		)

		for _, name := range cacheTeams {
			id, found, err := cache.Lookup(ctx, name)
			if err != nil {
				return fmt.Errorf("lookup %q: %w", name, err)
			}
			rt.logger.Info("Team lookup",
				zap.String("name", name),
				zap.Bool("found", found),
				zap.Int64("id", id),
			)
		}

		stats := cache.Stats()
		rt.logger.Info("Team cache statistics",
			zap.Int("teams", stats.TeamCount),
			zap.Int("hits", stats.HitCount),
			zap.Int("misses", stats.MissCount),
			zap.Float64("hit_rate", stats.HitRate),
			zap.Int("refreshes", stats.RefreshCount),
		)
		return nil
	},
}

func init() {
	cacheCmd.Flags().StringSliceVar(&cacheTeams, "team", nil, "Team name to look up (repeatable)")
	RootCmd.AddCommand(cacheCmd)
}
