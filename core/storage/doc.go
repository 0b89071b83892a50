// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations match-sync needs: reading scraper exports and archiving run
// reports. This abstraction supports both AWS S3 and self-hosted MinIO
// instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists / EnsureBucket: Verifies access to (or creates) the bucket.
//   - GetJSON / PutJSON: Decode or encode a JSON object.
//   - ObjectExists: Checks an object without downloading it.
//   - ListKeys: Lists object keys under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	var export workflow.Export
//	err = storage.GetJSON(ctx, client, "scraper", "exports/u14/northeast.json", &export)
package storage
