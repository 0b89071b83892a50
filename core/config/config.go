package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"match-sync/core/apiclient"
	"match-sync/core/database"
	"match-sync/core/logger"
	"match-sync/core/server"
	"match-sync/core/storage"
	"match-sync/feature/entities"
	"match-sync/feature/workflow"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration. Each section belongs to the
// package that consumes it.
type Config struct {
	Server   server.Config    `mapstructure:"server"`
	Storage  storage.Config   `mapstructure:"storage"`
	Log      logger.Config    `mapstructure:"log"`
	Database database.Config  `mapstructure:"database"`
	API      apiclient.Config `mapstructure:"api"`
	Cache    entities.Config  `mapstructure:"cache"`
	Workflow workflow.Config  `mapstructure:"workflow"`
}

// envAliases maps config keys to the flat variable names used by existing
// deployments. The nested name (API_TOKEN) always wins over the alias.
var envAliases = map[string]string{
	"cache.enable_team_cache": "ENABLE_TEAM_CACHE",
	"cache.refresh_on_miss":   "CACHE_REFRESH_ON_MISS",
	"cache.preload_timeout":   "CACHE_PRELOAD_TIMEOUT",
	"api.base_url":            "MISSING_TABLE_API_BASE_URL",
	"api.token":               "MISSING_TABLE_API_TOKEN",
	"api.max_retries":         "MAX_RETRIES",
	"api.backoff_base":        "RETRY_BACKOFF_BASE",
}

// LoadConfig reads dir/.env (when present) into the process environment and
// resolves every key from the environment over the struct tag defaults.
func LoadConfig(dir string) (*Config, error) {
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		nested := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, nested, alias); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every sync needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return &apiclient.ConfigurationError{Err: apiclient.ErrMissingBaseURL}
	}
	if strings.TrimSpace(c.API.Token) == "" {
		return &apiclient.ConfigurationError{Err: apiclient.ErrMissingToken}
	}
	return nil
}

// Runner returns the workflow runner settings.
func (c *Config) Runner() workflow.RunnerConfig {
	return workflow.RunnerConfig{
		API:      c.API,
		Cache:    c.Cache,
		Workflow: c.Workflow,
		Bucket:   c.Storage.Bucket,
		Region:   c.Storage.Region,
	}
}

// registerDefaults walks the mapstructure tree of t and registers every leaf
// key with its `default` tag. Keys with an empty default are still registered
// so that AutomaticEnv can resolve them during Unmarshal.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := range t.NumField() {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if name == "" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
