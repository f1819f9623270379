package seq

import (
	"bytes"
	"io"
	"math"
	"reflect"
	"unsafe"
)

// Fixed is the set of element types with a constant encoded width.
type Fixed interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Width returns the encoded size in bytes of a single T.
func Width[T Fixed]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// FixedSize returns the encoded size of a sequence of count elements of T.
func FixedSize[T Fixed](count int) int64 {
	return CountSize + int64(count)*int64(Width[T]())
}

// layout holds the little-endian element conversion for T, chosen once per call.
type layout[T Fixed] struct {
	width int
	put   func(b []byte, v T)
	get   func(b []byte) T
}

func layoutOf[T Fixed]() layout[T] {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float32:
		return layout[T]{
			width: 4,
			put:   func(b []byte, v T) { le.PutUint32(b, math.Float32bits(float32(v))) },
			get:   func(b []byte) T { return T(math.Float32frombits(le.Uint32(b))) },
		}
	case reflect.Float64:
		return layout[T]{
			width: 8,
			put:   func(b []byte, v T) { le.PutUint64(b, math.Float64bits(float64(v))) },
			get:   func(b []byte) T { return T(math.Float64frombits(le.Uint64(b))) },
		}
	}

	// Integer conversions between equal widths keep the bit pattern, so signed
	// values round-trip through their unsigned counterpart.
	switch unsafe.Sizeof(zero) {
	case 1:
		return layout[T]{
			width: 1,
			put:   func(b []byte, v T) { b[0] = byte(v) },
			get:   func(b []byte) T { return T(b[0]) },
		}
	case 2:
		return layout[T]{
			width: 2,
			put:   func(b []byte, v T) { le.PutUint16(b, uint16(v)) },
			get:   func(b []byte) T { return T(le.Uint16(b)) },
		}
	case 4:
		return layout[T]{
			width: 4,
			put:   func(b []byte, v T) { le.PutUint32(b, uint32(v)) },
			get:   func(b []byte) T { return T(le.Uint32(b)) },
		}
	default:
		return layout[T]{
			width: 8,
			put:   func(b []byte, v T) { le.PutUint64(b, uint64(v)) },
			get:   func(b []byte) T { return T(le.Uint64(b)) },
		}
	}
}

// EncodeFixed writes s to w as [u64 count][count * W bytes].
//
// Exactly FixedSize[T](len(s)) bytes are written. Write failures are returned
// as *IOError.
func EncodeFixed[T Fixed](w io.Writer, s []T) error {
	lay := layoutOf[T]()
	total := CountSize + int64(len(s))*int64(lay.width)

	buf := make([]byte, 0, min(total, chunkSize))
	buf = le.AppendUint64(buf, uint64(len(s)))
	for _, v := range s {
		if len(buf)+lay.width > cap(buf) {
			if err := writeAll(w, buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
		n := len(buf)
		buf = buf[:n+lay.width]
		lay.put(buf[n:], v)
	}
	return writeAll(w, buf)
}

// AppendFixed appends the encoding of s to dst and returns the extended buffer.
func AppendFixed[T Fixed](dst []byte, s []T) []byte {
	lay := layoutOf[T]()
	need := CountSize + len(s)*lay.width
	if cap(dst)-len(dst) < need {
		grown := make([]byte, len(dst), len(dst)+need)
		copy(grown, dst)
		dst = grown
	}
	dst = le.AppendUint64(dst, uint64(len(s)))
	for _, v := range s {
		n := len(dst)
		dst = dst[:n+lay.width]
		lay.put(dst[n:], v)
	}
	return dst
}

// DecodeFixed reads a sequence written by EncodeFixed.
//
// The returned slice is never nil on success, even for an empty sequence. If r
// ends before the declared number of elements has been read, a
// *TruncatedInputError is returned together with a nil slice.
func DecodeFixed[T Fixed](r io.Reader) ([]T, error) {
	lay := layoutOf[T]()

	count, err := readUint64(r, "count", -1)
	if err != nil {
		return nil, err
	}
	want, err := byteSize(count, lay.width)
	if err != nil {
		return nil, err
	}

	capHint := min(want, chunkSize) / int64(lay.width)
	if rem, ok := remaining(r); ok {
		if want > rem {
			return nil, &TruncatedInputError{Field: "elements", Index: -1, Want: want, Got: rem}
		}
		capHint = int64(count)
	}

	s := make([]T, 0, capHint)
	chunk := make([]byte, min(want, chunkSize))
	var got int64
	for got < want {
		step := min(int64(len(chunk)), want-got)
		n, err := io.ReadFull(r, chunk[:step])
		got += int64(n)
		if err != nil {
			return nil, readErr(err, "elements", -1, want, got)
		}
		for off := 0; off < int(step); off += lay.width {
			s = append(s, lay.get(chunk[off:]))
		}
	}
	return s, nil
}

// UnmarshalFixed decodes a sequence from the start of data and reports how many
// bytes it consumed.
func UnmarshalFixed[T Fixed](data []byte) ([]T, int, error) {
	r := bytes.NewReader(data)
	s, err := DecodeFixed[T](r)
	if err != nil {
		return nil, 0, err
	}
	return s, len(data) - r.Len(), nil
}
