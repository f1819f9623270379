package seq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// CountSize is the encoded size of the element count and of every string
// length field.
const CountSize = 8

// chunkSize bounds encoder buffers and speculative decoder allocations.
// It is a multiple of every supported element width.
const chunkSize = 64 << 10

var le = binary.LittleEndian

// lener is implemented by in-memory sources (*bytes.Reader, *bytes.Buffer,
// *strings.Reader) that know how many unread bytes remain.
type lener interface {
	Len() int
}

func remaining(r io.Reader) (int64, bool) {
	if l, ok := r.(lener); ok {
		return int64(l.Len()), true
	}
	return 0, false
}

func writeAll(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if _, err := w.Write(p); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// readErr classifies a short read. End of stream means the input was
// truncated; anything else is a failure of the source itself.
func readErr(err error, field string, index int, want, got int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &TruncatedInputError{Field: field, Index: index, Want: want, Got: got}
	}
	return &IOError{Op: "read", Err: err}
}

func readUint64(r io.Reader, field string, index int) (uint64, error) {
	var b [CountSize]byte
	n, err := io.ReadFull(r, b[:])
	if err != nil {
		return 0, readErr(err, field, index, CountSize, int64(n))
	}
	return le.Uint64(b[:]), nil
}

// byteSize returns count*width, failing if the product does not fit in an int.
func byteSize(count uint64, width int) (int64, error) {
	if count > uint64(math.MaxInt)/uint64(width) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes", ErrLengthOverflow, count, width)
	}
	return int64(count) * int64(width), nil
}

// readBytes reads exactly n bytes, growing the result in chunks so a corrupt
// length cannot force a huge allocation before the data is seen.
func readBytes(r io.Reader, n int64, field string, index int) ([]byte, error) {
	buf := make([]byte, 0, min(n, chunkSize))
	for int64(len(buf)) < n {
		step := int(min(n-int64(len(buf)), chunkSize))
		if cap(buf)-len(buf) < step {
			grown := make([]byte, len(buf), len(buf)+max(step, len(buf)))
			copy(grown, buf)
			buf = grown
		}
		m, err := io.ReadFull(r, buf[len(buf):len(buf)+step])
		buf = buf[:len(buf)+m]
		if err != nil {
			return nil, readErr(err, field, index, n, int64(len(buf)))
		}
	}
	return buf, nil
}
