// Package reconciler synchronizes extracted matches into the remote API.
//
// Reconciler.Sync resolves entities for the whole batch, builds the
// deduplication index for the batch's date window and then decides per match:
//
//   - unresolved team or age group IDs: skipped
//   - key absent from the index: created with POST /matches, and the new
//     match is added to the index so a repeated key in the same batch is a
//     duplicate
//   - key present, incoming match scored and remote score a placeholder:
//     PATCH /matches/{id} with the score fields; a failed patch is recorded as
//     a duplicate because the match already exists
//   - otherwise: duplicate
//
// The per-match loop itself lives in core/reconcile.
package reconciler
