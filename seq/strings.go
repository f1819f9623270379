package seq

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// StringsSize returns the encoded size of s: 8 + Σ(8 + len(s[i])).
func StringsSize(s []string) int64 {
	n := int64(CountSize)
	for _, str := range s {
		n += CountSize + int64(len(str))
	}
	return n
}

// EncodeStrings writes s to w as a count followed by one [u64 length][bytes]
// record per string. String contents are copied verbatim; no terminator or
// character-set conversion is applied.
func EncodeStrings(w io.Writer, s []string) error {
	buf := make([]byte, 0, min(StringsSize(s), chunkSize))
	buf = le.AppendUint64(buf, uint64(len(s)))
	for _, str := range s {
		if len(buf)+CountSize > cap(buf) {
			if err := writeAll(w, buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
		buf = le.AppendUint64(buf, uint64(len(str)))
		for len(str) > 0 {
			if len(buf) == cap(buf) {
				if err := writeAll(w, buf); err != nil {
					return err
				}
				buf = buf[:0]
			}
			n := copy(buf[len(buf):cap(buf)], str)
			buf = buf[:len(buf)+n]
			str = str[n:]
		}
	}
	return writeAll(w, buf)
}

// AppendStrings appends the encoding of s to dst and returns the extended buffer.
func AppendStrings(dst []byte, s []string) []byte {
	dst = le.AppendUint64(dst, uint64(len(s)))
	for _, str := range s {
		dst = le.AppendUint64(dst, uint64(len(str)))
		dst = append(dst, str...)
	}
	return dst
}

// DecodeStrings reads a sequence written by EncodeStrings.
//
// Empty strings and strings containing zero bytes round-trip unchanged. If r
// ends before a length field or its payload has been fully read, a
// *TruncatedInputError is returned together with a nil slice.
func DecodeStrings(r io.Reader) ([]string, error) {
	count, err := readUint64(r, "count", -1)
	if err != nil {
		return nil, err
	}

	// Every record carries at least its length field.
	capHint := min(count, chunkSize/CountSize)
	if rem, ok := remaining(r); ok {
		if count > uint64(rem)/CountSize {
			want := int64(math.MaxInt64)
			if count <= math.MaxInt64/CountSize {
				want = int64(count) * CountSize
			}
			return nil, &TruncatedInputError{Field: "length", Index: -1, Want: want, Got: rem}
		}
		capHint = count
	}
	if count > math.MaxInt {
		return nil, fmt.Errorf("%w: %d strings", ErrLengthOverflow, count)
	}

	s := make([]string, 0, capHint)
	for i := 0; i < int(count); i++ {
		n, err := readUint64(r, "length", i)
		if err != nil {
			return nil, err
		}
		if n > math.MaxInt {
			return nil, fmt.Errorf("%w: string %d of %d bytes", ErrLengthOverflow, i, n)
		}
		if rem, ok := remaining(r); ok && int64(n) > rem {
			return nil, &TruncatedInputError{Field: "payload", Index: i, Want: int64(n), Got: rem}
		}
		b, err := readBytes(r, int64(n), "payload", i)
		if err != nil {
			return nil, err
		}
		s = append(s, string(b))
	}
	return s, nil
}

// UnmarshalStrings decodes a string sequence from the start of data and reports
// how many bytes it consumed.
func UnmarshalStrings(data []byte) ([]string, int, error) {
	r := bytes.NewReader(data)
	s, err := DecodeStrings(r)
	if err != nil {
		return nil, 0, err
	}
	return s, len(data) - r.Len(), nil
}
