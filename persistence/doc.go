// Package persistence provides the file and stream plumbing shared by the
// seqbench blob stores:
//
//   - AtomicFile, SaveToFile, LoadFromFile: write-to-temp-then-rename files
//     that either appear complete or not at all
//   - ChecksumWriter, ChecksumReader: running CRC32 over a stream
//   - RateLimitedWriter: throughput throttling for IO-bound benchmark runs
package persistence
