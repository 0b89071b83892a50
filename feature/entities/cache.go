package entities

import (
	"context"
	"sync"
	"time"

	"match-sync/core/apiclient"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// TeamLister fetches the full remote team list.
type TeamLister interface {
	ListTeams(ctx context.Context) ([]apiclient.Team, error)
}

// PreloadResult reports one Preload call.
type PreloadResult struct {
	Success       bool          `json:"success"`
	AlreadyLoaded bool          `json:"already_loaded"`
	TeamCount     int           `json:"team_count"`
	LoadTime      time.Duration `json:"load_time"`
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Loaded       bool          `json:"loaded"`
	Enabled      bool          `json:"enabled"`
	TeamCount    int           `json:"team_count"`
	LoadTime     time.Duration `json:"load_time"`
	HitCount     int           `json:"hit_count"`
	MissCount    int           `json:"miss_count"`
	HitRate      float64       `json:"hit_rate"`
	RefreshCount int           `json:"refresh_count"`
}

// Cache maps canonical team keys to remote team IDs for one run.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	client   TeamLister
	cfg      Config
	logger   *zap.Logger
	teams    map[string]int64
	loaded   bool
	loadTime time.Duration
	hits     int
	misses   int
	refresh  int
}

// NewCache creates an empty cache backed by client.
func NewCache(client TeamLister, cfg Config, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		client: client,
		cfg:    cfg,
		logger: logger,
		teams:  make(map[string]int64),
	}
}

// Enabled reports whether bulk preloading is configured.
func (c *Cache) Enabled() bool {
	return c.cfg.Enabled
}

// Preload fetches every team once. A second call performs no I/O and reports
// AlreadyLoaded. With the cache disabled it is a no-op.
func (c *Cache) Preload(ctx context.Context) (PreloadResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return PreloadResult{
			Success:       true,
			AlreadyLoaded: true,
			TeamCount:     len(c.teams),
			LoadTime:      c.loadTime,
		}, nil
	}
	if !c.cfg.Enabled {
		c.logger.Debug("Team cache disabled, skipping preload")
		return PreloadResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PreloadTimeout())
	defer cancel()

	start := time.Now()
	teams, err := c.client.ListTeams(ctx)
	if err != nil {
		c.logger.Warn("Team cache preload failed", zap.Error(err))
		return PreloadResult{LoadTime: time.Since(start)}, err
	}
	for _, t := range teams {
		c.teams[matches.TeamKey(t.Name)] = t.ID
	}
	c.loaded = true
	c.loadTime = time.Since(start)

	c.logger.Info("Team cache loaded",
		zap.Int("teams", len(c.teams)),
		zap.Duration("load_time", c.loadTime),
	)
	return PreloadResult{Success: true, TeamCount: len(c.teams), LoadTime: c.loadTime}, nil
}

// Lookup returns the ID of the named team.
//
// A hit in memory is always served without I/O. On a loaded cache a miss is
// counted and, when RefreshOnMiss is set, the remote list is scanned once.
// Before the cache is loaded the lookup falls back to an uncached scan whose
// result is written back into the map.
func (c *Cache) Lookup(ctx context.Context, name string) (int64, bool, error) {
	key := matches.TeamKey(name)
	if key == "" {
		return 0, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.teams[key]; ok {
		c.hits++
		return id, true, nil
	}

	if c.loaded {
		c.misses++
		if !c.cfg.RefreshOnMiss {
			return 0, false, nil
		}
		c.refresh++
		c.logger.Debug("Team cache miss, refreshing", zap.String("team", name))
	}

	teams, err := c.client.ListTeams(ctx)
	if err != nil {
		return 0, false, err
	}
	var found int64
	for _, t := range teams {
		if matches.TeamKey(t.Name) == key {
			found = t.ID
			break
		}
	}
	if found == 0 {
		return 0, false, nil
	}
	c.teams[key] = found
	return found, true, nil
}

// RecordCreated stores a team created during this run.
func (c *Cache) RecordCreated(name string, id int64) {
	key := matches.TeamKey(name)
	if key == "" || id <= 0 {
		return
	}
	c.mu.Lock()
	c.teams[key] = id
	c.mu.Unlock()
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	if total < 1 {
		total = 1
	}
	return Stats{
		Loaded:       c.loaded,
		Enabled:      c.cfg.Enabled,
		TeamCount:    len(c.teams),
		LoadTime:     c.loadTime,
		HitCount:     c.hits,
		MissCount:    c.misses,
		HitRate:      float64(c.hits) / float64(total),
		RefreshCount: c.refresh,
	}
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teams = make(map[string]int64)
	c.loaded = false
	c.loadTime = 0
	c.hits = 0
	c.misses = 0
	c.refresh = 0
}
