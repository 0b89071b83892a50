package entities

import "time"

// Config holds the team cache settings.
type Config struct {
	// Enabled turns on the bulk preload.
	Enabled bool `mapstructure:"enable_team_cache" default:"true"`
	// RefreshOnMiss refetches the team list once when a loaded cache misses.
	RefreshOnMiss bool `mapstructure:"refresh_on_miss" default:"true"`
	// PreloadTimeoutSeconds bounds the bulk preload.
	PreloadTimeoutSeconds int `mapstructure:"preload_timeout" default:"30"`
}

// PreloadTimeout returns the preload timeout, defaulting to 30 seconds.
func (c Config) PreloadTimeout() time.Duration {
	if c.PreloadTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PreloadTimeoutSeconds) * time.Second
}
