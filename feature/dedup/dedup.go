package dedup

import (
	"context"
	"fmt"

	"match-sync/core/apiclient"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// Key identifies a match by date and team pair. It has no time component, so
// two fixtures between the same teams on one day share a key and the second
// is reported as a duplicate.
type Key struct {
	Date       string `json:"date"`
	HomeTeamID int64  `json:"home_team_id"`
	AwayTeamID int64  `json:"away_team_id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d", k.Date, k.HomeTeamID, k.AwayTeamID)
}

// KeyFor is the single derivation of Key.
func KeyFor(date string, homeTeamID, awayTeamID int64) Key {
	return Key{
		Date:       matches.NormalizeDate(date),
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
	}
}

// KeyForRemote derives the key of a remote match.
func KeyForRemote(m apiclient.Match) Key {
	return KeyFor(m.MatchDate, m.HomeTeamID, m.AwayTeamID)
}

// KeyForWire derives the key of an outgoing POST /matches payload.
func KeyForWire(m apiclient.MatchCreate) Key {
	return KeyFor(m.MatchDate, m.HomeTeamID, m.AwayTeamID)
}

// Index maps keys to remote matches.
type Index struct {
	entries  map[Key]apiclient.Match
	degraded bool
}

// NewIndex builds an index from remote matches. Later entries win.
func NewIndex(remote []apiclient.Match) *Index {
	idx := &Index{entries: make(map[Key]apiclient.Match, len(remote))}
	for _, m := range remote {
		idx.Put(m)
	}
	return idx
}

// Get returns the remote match stored under k.
func (i *Index) Get(k Key) (apiclient.Match, bool) {
	m, ok := i.entries[k]
	return m, ok
}

// Put stores m under its key. The reconciler calls it after every create so
// one key is posted at most once per batch.
func (i *Index) Put(m apiclient.Match) {
	i.entries[KeyForRemote(m)] = m
}

// Len returns the number of entries.
func (i *Index) Len() int {
	return len(i.entries)
}

// Degraded reports an index built without remote data after a query failure.
func (i *Index) Degraded() bool {
	return i.degraded
}

// MatchLister is the API subset used to build an index.
type MatchLister interface {
	ListMatches(ctx context.Context, q apiclient.MatchQuery) ([]apiclient.Match, error)
}

// Builder queries remote matches for a batch.
type Builder struct {
	api    MatchLister
	logger *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(api MatchLister, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{api: api, logger: logger}
}

// Build queries GET /matches over the date window of ms and indexes the
// result. A query failure degrades to an empty index instead of failing the
// run; every match is then treated as new. Invalid rows are dropped without
// degrading the index.
func (b *Builder) Build(ctx context.Context, ms []matches.Match, ageGroupID, divisionID int64) *Index {
	start, end, ok := matches.Window(ms)
	if !ok {
		return NewIndex(nil)
	}

	remote, err := b.api.ListMatches(ctx, apiclient.MatchQuery{
		StartDate:  start,
		EndDate:    end,
		AgeGroupID: ageGroupID,
		DivisionID: divisionID,
	})
	if err != nil {
		b.logger.Warn("Dedup query failed, treating every match as new",
			zap.String("start_date", start),
			zap.String("end_date", end),
			zap.Error(err),
		)
		idx := NewIndex(nil)
		idx.degraded = true
		return idx
	}

	usable := make([]apiclient.Match, 0, len(remote))
	for _, m := range remote {
		if err := m.Validate(); err != nil {
			b.logger.Warn("Ignoring invalid remote match", zap.Int64("match_id", m.ID), zap.Error(err))
			continue
		}
		usable = append(usable, m)
	}

	idx := NewIndex(usable)
	b.logger.Debug("Dedup index built",
		zap.String("start_date", start),
		zap.String("end_date", end),
		zap.Int("remote_matches", len(remote)),
		zap.Int("keys", idx.Len()),
	)
	return idx
}
