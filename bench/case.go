package bench

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/seqbench"
	"github.com/hupe1980/seqbench/codec"
	"github.com/hupe1980/seqbench/seq"
)

// Case is one round trip: Write produces an encoded form and reports its
// size, Read decodes it and verifies it against the input.
type Case struct {
	Name  string
	Kind  string
	Count int

	Write func(ctx context.Context) (int64, error)
	Read  func(ctx context.Context) error
	// Cleanup releases scratch state. It may be nil.
	Cleanup func(ctx context.Context) error
}

// FixedCase round-trips s through the binary fixed-width codec in memory.
func FixedCase[T seq.Fixed](name string, s []T) Case {
	var buf bytes.Buffer
	return Case{
		Name:  name,
		Kind:  seqbench.FixedKind[T](),
		Count: len(s),
		Write: func(context.Context) (int64, error) {
			buf.Reset()
			if err := seq.EncodeFixed(&buf, s); err != nil {
				return 0, err
			}
			return int64(buf.Len()), nil
		},
		Read: func(context.Context) error {
			got, err := seq.DecodeFixed[T](bytes.NewReader(buf.Bytes()))
			if err != nil {
				return err
			}
			return verify(name, s, got)
		},
	}
}

// StringsCase round-trips s through the length-prefixed string codec in memory.
func StringsCase(name string, s []string) Case {
	var buf bytes.Buffer
	return Case{
		Name:  name,
		Kind:  "strings",
		Count: len(s),
		Write: func(context.Context) (int64, error) {
			buf.Reset()
			if err := seq.EncodeStrings(&buf, s); err != nil {
				return 0, err
			}
			return int64(buf.Len()), nil
		},
		Read: func(context.Context) error {
			got, err := seq.DecodeStrings(bytes.NewReader(buf.Bytes()))
			if err != nil {
				return err
			}
			return verify(name, s, got)
		},
	}
}

// TextCase round-trips s through the whitespace-separated decimal codec.
func TextCase[T seq.Fixed](name string, s []T) Case {
	var buf bytes.Buffer
	return Case{
		Name:  name,
		Kind:  "text:" + seqbench.FixedKind[T](),
		Count: len(s),
		Write: func(context.Context) (int64, error) {
			buf.Reset()
			if err := seq.EncodeText(&buf, s); err != nil {
				return 0, err
			}
			return int64(buf.Len()), nil
		},
		Read: func(context.Context) error {
			got, err := seq.DecodeText[T](bytes.NewReader(buf.Bytes()))
			if err != nil {
				return err
			}
			return verify(name, s, got)
		},
	}
}

// CodecCase round-trips s through a whole-value codec.
func CodecCase[T comparable](name string, c codec.Codec, s []T) Case {
	var data []byte
	return Case{
		Name:  name,
		Kind:  "codec:" + c.Name(),
		Count: len(s),
		Write: func(context.Context) (int64, error) {
			var err error
			if data, err = c.Marshal(s); err != nil {
				return 0, fmt.Errorf("%s marshal: %w", c.Name(), err)
			}
			return int64(len(data)), nil
		},
		Read: func(context.Context) error {
			var got []T
			if err := c.Unmarshal(data, &got); err != nil {
				return fmt.Errorf("%s unmarshal: %w", c.Name(), err)
			}
			return verify(name, s, got)
		},
	}
}

// StoreCase round-trips s through st under the blob name. The blob is
// discarded by Cleanup.
func StoreCase[T seq.Fixed](name string, st *seqbench.Store, blob string, s []T) Case {
	return Case{
		Name:  name,
		Kind:  "store:" + seqbench.FixedKind[T](),
		Count: len(s),
		Write: func(ctx context.Context) (int64, error) {
			e, err := seqbench.SaveFixed(ctx, st, blob, s)
			return e.StoredBytes, err
		},
		Read: func(ctx context.Context) error {
			got, err := seqbench.LoadFixed[T](ctx, st, blob)
			if err != nil {
				return err
			}
			return verify(name, s, got)
		},
		Cleanup: func(ctx context.Context) error {
			return st.Discard(ctx, blob)
		},
	}
}

// StoreStringsCase round-trips s through st under the blob name.
func StoreStringsCase(name string, st *seqbench.Store, blob string, s []string) Case {
	return Case{
		Name:  name,
		Kind:  "store:strings",
		Count: len(s),
		Write: func(ctx context.Context) (int64, error) {
			e, err := seqbench.SaveStrings(ctx, st, blob, s)
			return e.StoredBytes, err
		},
		Read: func(ctx context.Context) error {
			got, err := seqbench.LoadStrings(ctx, st, blob)
			if err != nil {
				return err
			}
			return verify(name, s, got)
		},
		Cleanup: func(ctx context.Context) error {
			return st.Discard(ctx, blob)
		},
	}
}
