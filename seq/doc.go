// Package seq implements the binary vector codecs used by seqbench.
//
// Two encoding strategies are provided, selected by the element type:
//
//   - Fixed-width elements (any type satisfying Fixed) are written as an
//     8-byte element count followed by count*W bytes, where W is the element
//     width.
//   - Strings are written as an 8-byte element count followed by one
//     length-prefixed record per string: an 8-byte byte length and exactly that
//     many raw bytes.
//
// Layout:
//
//	fixed:   [u64 count][count * W bytes]
//	strings: [u64 count]{[u64 length][length bytes]}*count
//
// All integers are little-endian regardless of the host platform. There is no
// header, magic number or version field; the element type must be known by the
// reader.
//
// Decoders check every declared count and length against the bytes actually
// available and fail with a *TruncatedInputError instead of returning a
// partially filled sequence.
//
// A whitespace-delimited text codec (EncodeText / DecodeText) is included as a
// baseline for comparison runs.
package seq
