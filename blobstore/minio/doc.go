// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible object stores (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", "sequences",
//	    minio.WithPrefix("bench/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	st := seqbench.Open(store)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
