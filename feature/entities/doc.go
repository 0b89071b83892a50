// Package entities resolves natural keys (team, age group, division, season,
// match type) into remote IDs.
//
// # Cache
//
// Cache holds the team name to ID map for one synchronization run. Preload
// fetches every team once; Lookup serves hits from memory and counts hits and
// misses. A miss on a loaded cache can trigger a single refresh fetch, and a
// lookup before the cache is loaded falls back to an uncached scan of the
// remote team list. RecordCreated inserts freshly created teams so later
// lookups in the same run never go back to the network.
//
// # Resolver
//
// Resolver is the batch precondition of a sync: ResolveAll get-or-creates the
// age group, the division and every distinct team of the batch. Any failure
// aborts the batch with a *ResolutionError, because a partially created set of
// teams would leave later matches with inconsistent foreign keys.
// ResolveSeason and ResolveMatchType never fail: they walk an ordered list of
// strategies and fall back to fixed default IDs.
package entities
