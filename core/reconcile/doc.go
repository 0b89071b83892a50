// Package reconcile provides a generic per-item reconcile engine that turns a
// batch of source records into remote mutations and aggregates the outcome.
//
// The engine is designed around three guarantees:
//   - A batch precondition (Adapter.Prepare) either succeeds for the whole
//     batch or aborts it before any mutation is issued
//   - Items are processed one at a time in input order, so the adapter can
//     update its own indices between items
//   - A failure or panic while processing one item is recorded and never stops
//     the rest of the batch
//
// # Architecture
//
// 1. Adapter: model-specific logic that prepares the batch, plans one Action
// per item and applies it against the remote system.
//
// 2. Engine: Run drives the adapter, converts each step into a Record and
// folds it into a SyncResult whose counters always add up to the number of
// items processed.
//
// 3. Flight: a TTL result cache with stampede protection that collapses
// concurrent runs for the same key into one.
//
// # Usage Example
//
//	adapter := reconciler.NewAdapter(resolver, builder, api, logger)
//	result, err := reconcile.Run(ctx, adapter, matches, reconcile.Options{
//	    DryRun: false,
//	    Scope:  "U14/Northeast",
//	}, logger)
//
// # Creating Adapters
//
// To support a new record type, implement Adapter[T]. Plan must not mutate
// the remote system; Apply performs exactly the mutation the Action names.
package reconcile
