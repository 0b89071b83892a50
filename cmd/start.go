package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"match-sync/core/loader"
	"match-sync/core/logger"
	"match-sync/core/middleware/auth"
	"match-sync/core/middleware/rayid"
	"match-sync/feature/health"
	"match-sync/feature/history"
	"match-sync/feature/integrity"
	"match-sync/feature/runs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "match-sync/docs/swagger"
)

// @title Match Sync API
// @version 1.0
// @description Admin API for triggering match sync runs and inspecting their history.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the match sync admin server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration and Logger
		rt, err := loadRuntime()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if err := rt.cfg.Server.Validate(); err != nil {
			logg.Fatal("Invalid server configuration", zap.Error(err))
		}
		if err := rt.cfg.Validate(); err != nil {
			// Health stays available so a misconfigured deployment is visible.
			logg.Warn("API configuration incomplete, runs will fail", zap.Error(err))
		}

		// 2. Collaborators (all optional)
		var upstream health.Upstream
		if client, err := rt.apiClient(); err != nil {
			logg.Warn("API client unavailable", zap.Error(err))
		} else {
			upstream = client
		}
		store := rt.openHistory()
		runner := rt.runner(store)

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           rt.cfg.Server.ReadTimeout(),
			WriteTimeout:          rt.cfg.Server.WriteTimeout(),
		})

		// 4. Feature Loader
		mgr := loader.NewManager()
		mgr.Register(health.NewFeature(upstream, Version, logg))
		mgr.Register(runs.NewFeature(runner, rt.cfg.Workflow.ReplayTTL(), logg))
		if store != nil {
			mgr.Register(history.NewFeature(store, logg))
		}
		mgr.Register(integrity.NewFeature(rt.openStorage(), schemaChecker(store), rt.integrityOptions(), logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray ID attached
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth, except for health probes and docs
		app.Use(auth.New(auth.Config{
			ApiKey: rt.cfg.Server.ApiKey,
			Public: []string{"/health", "/swagger"},
		}))

		// 5. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port), zap.String("version", Version))
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
