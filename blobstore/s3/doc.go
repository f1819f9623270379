// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Writes stream through the SDK's multipart upload manager; reads use ranged
// GetObject requests. Create a store from the default AWS configuration chain:
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("seqbench/"))
package s3
