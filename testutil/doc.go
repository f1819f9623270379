// Package testutil provides seeded data generators for tests and benchmarks.
//
// # Random Sequences
//
//	rng := testutil.NewRNG(seed)
//	ids := testutil.Iota[uint64](1000)          // 0, 1, ..., 999
//	vals := testutil.Values[int32](rng, 1<<16)  // random bit patterns
//	floats := rng.Float64s(1 << 16)             // finite, never NaN
//	words := rng.Strings(100, 32)               // printable ASCII
//	blobs := rng.BinaryStrings(100, 32)         // arbitrary bytes, including NUL
package testutil
