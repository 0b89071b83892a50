package cmd

import (
	"fmt"

	"match-sync/core/apiclient"
	"match-sync/core/config"
	"match-sync/core/database"
	"match-sync/core/logger"
	"match-sync/core/storage"
	"match-sync/feature/history"
	"match-sync/feature/workflow"

	"go.uber.org/zap"
)

// env is what every command starts from.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadRuntime() (*env, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &env{cfg: cfg, logger: l}, nil
}

// apiClient builds the remote API client.
func (rt *env) apiClient() (*apiclient.Client, error) {
	return apiclient.New(rt.cfg.API, apiclient.WithLogger(rt.logger))
}

// openStorage connects to object storage. Storage is optional: nil is returned,
// with a warning, when the client cannot be built or the endpoint is unset.
func (rt *env) openStorage() storage.Client {
	if rt.cfg.Storage.Endpoint == "" {
		return nil
	}
	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		rt.logger.Warn("Object storage unavailable", zap.Error(err))
		return nil
	}
	return client
}

// openHistory opens the run ledger when a database is enabled. Failures are
// logged and disable the ledger.
func (rt *env) openHistory() *history.Store {
	if !rt.cfg.Database.Enabled {
		return nil
	}
	db, err := database.Connect(rt.cfg.Database)
	if err != nil {
		rt.logger.Warn("Run history disabled: database connection failed", zap.Error(err))
		return nil
	}
	store := history.NewStore(db, rt.logger)
	if err := store.Migrate(); err != nil {
		rt.logger.Warn("Run history disabled: migration failed", zap.Error(err))
		return nil
	}
	if missing, err := store.CheckSchema(); err != nil {
		rt.logger.Warn("Run history schema check failed", zap.Error(err))
	} else if len(missing) > 0 {
		rt.logger.Warn("Run history schema is missing columns", zap.Strings("columns", missing))
	}
	return store
}

// runner builds the workflow runner with every optional collaborator that
// is available. store may be nil.
func (rt *env) runner(store *history.Store, extra ...workflow.RunnerOption) *workflow.Runner {
	var opts []workflow.RunnerOption
	needsStorage := rt.cfg.Workflow.ArchiveReports || rt.cfg.Workflow.Source != "file"
	if needsStorage {
		if client := rt.openStorage(); client != nil {
			opts = append(opts, workflow.WithStorage(client))
		}
	}
	if store != nil {
		opts = append(opts, workflow.WithRunStore(store))
	}
	return workflow.NewRunner(rt.cfg.Runner(), rt.logger, append(opts, extra...)...)
}
