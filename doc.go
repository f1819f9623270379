// Package seqbench saves and loads sequences of fixed-width numbers and
// strings through a blob store, and measures how fast that round trip is.
//
// The byte layout is defined by package seq: an 8-byte little-endian element
// count followed by the raw elements, or by one [length][bytes] record per
// string. A Store adds what a benchmark scratch area needs on top of that:
// block compression, a CRC32-C checksum, optional write throttling and a
// catalog recording what each blob holds.
//
// # Quick Start
//
//	ctx := context.Background()
//	st := seqbench.Open(blobstore.NewMemoryStore(),
//	    seqbench.WithCatalog(catalog.NewMemoryCatalog()))
//
//	ids := make([]uint64, 1000)
//	for i := range ids {
//	    ids[i] = uint64(i)
//	}
//	entry, _ := seqbench.SaveFixed(ctx, st, "ids", ids)
//	fmt.Println(entry.EncodedBytes) // 8008
//
//	got, _ := seqbench.LoadFixed[uint64](ctx, st, "ids")
//	_ = st.Discard(ctx, "ids")
//
// # Storage Backends
//
//	seqbench.Open(blobstore.NewLocalStore("./scratch"))
//	seqbench.Open(minioStore)  // blobstore/minio
//	seqbench.Open(s3Store)     // blobstore/s3
//
// # Compression
//
// Blobs can be framed into LZ4 or ZSTD compressed blocks:
//
//	st := seqbench.Open(bs, seqbench.WithCompression(seqbench.CompressionZSTD))
//
// The checksum always covers the uncompressed encoding, so the same sequence
// has the same checksum regardless of compression.
//
// # Errors
//
// Loads fail with ErrNotFound for missing blobs, *TruncatedInputError when
// the stream ends before a declared count or length is satisfied, and
// *IOError when the blob store itself fails. Partial sequences are never
// returned.
package seqbench
