package reconcile

import "context"

// Adapter defines the model-specific logic the engine drives.
// Each adapter implements how to prepare, plan and apply one kind of record.
type Adapter[T any] interface {
	// Name returns the unique name of this adapter (e.g., "matches").
	Name() string

	// Prepare runs the batch precondition: resolving references and loading
	// indices. An error aborts the batch before any item is processed.
	Prepare(ctx context.Context, items []T, opts Options) error

	// Describe returns the diagnostic identity of an item.
	Describe(item T) Subject

	// Plan decides the action for an item. It must not mutate the remote
	// system. Returning ActionSkip with a Reason records a skip.
	Plan(ctx context.Context, item T) (Action, error)

	// Apply executes a create or update action. The returned record carries
	// the remote ID and detail; its Outcome may downgrade the action (for
	// example a failed update recorded as a duplicate). Apply is never called
	// for duplicate or skip actions, nor in dry-run mode.
	Apply(ctx context.Context, item T, action Action) (Record, error)
}

// Observer is optionally implemented by adapters that track planned actions
// in dry-run mode, so that repeated keys within one batch plan as duplicates.
type Observer interface {
	Observe(action Action)
}
