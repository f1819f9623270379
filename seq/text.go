package seq

import (
	"bufio"
	"io"
	"reflect"
	"strconv"
	"unsafe"
)

type textLayout[T Fixed] struct {
	format func(dst []byte, v T) []byte
	parse  func(tok string) (T, error)
}

func textLayoutOf[T Fixed]() textLayout[T] {
	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float32, reflect.Float64:
		return textLayout[T]{
			format: func(dst []byte, v T) []byte { return strconv.AppendFloat(dst, float64(v), 'g', -1, bits) },
			parse: func(tok string) (T, error) {
				f, err := strconv.ParseFloat(tok, bits)
				return T(f), err
			},
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return textLayout[T]{
			format: func(dst []byte, v T) []byte { return strconv.AppendUint(dst, uint64(v), 10) },
			parse: func(tok string) (T, error) {
				u, err := strconv.ParseUint(tok, 10, bits)
				return T(u), err
			},
		}
	default:
		return textLayout[T]{
			format: func(dst []byte, v T) []byte { return strconv.AppendInt(dst, int64(v), 10) },
			parse: func(tok string) (T, error) {
				i, err := strconv.ParseInt(tok, 10, bits)
				return T(i), err
			},
		}
	}
}

// EncodeText writes every element of s in its shortest decimal form followed by
// a single space. No count is written; the sequence ends at end of stream.
func EncodeText[T Fixed](w io.Writer, s []T) error {
	lay := textLayoutOf[T]()
	bw := bufio.NewWriterSize(w, chunkSize)
	var tok []byte
	for _, v := range s {
		tok = lay.format(tok[:0], v)
		tok = append(tok, ' ')
		if _, err := bw.Write(tok); err != nil {
			return &IOError{Op: "write", Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// DecodeText reads whitespace-separated values until end of stream.
// A token that does not parse as T fails with *SyntaxError.
func DecodeText[T Fixed](r io.Reader) ([]T, error) {
	lay := textLayoutOf[T]()
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	s := make([]T, 0)
	for sc.Scan() {
		tok := sc.Text()
		v, err := lay.parse(tok)
		if err != nil {
			return nil, &SyntaxError{Index: len(s), Token: tok, Err: err}
		}
		s = append(s, v)
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	return s, nil
}
