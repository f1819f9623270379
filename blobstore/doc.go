// Package blobstore provides the storage abstraction for encoded sequences.
//
// A benchmark run encodes a sequence into a scratch blob, decodes it back and
// then discards it. BlobStore covers exactly that lifecycle:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Streaming write, commit on Close
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and pure CPU measurements
//   - LocalStore: local filesystem, atomic writes, mmap reads
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
//
// Implementations must be safe for concurrent use.
package blobstore
