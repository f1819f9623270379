package bench

import (
	"fmt"
	"io"
	"reflect"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Diff returns the positions at which want and got differ. Positions present
// in only one of them are included.
func Diff[T comparable](want, got []T) *roaring64.Bitmap {
	bm := roaring64.New()
	n := min(len(want), len(got))
	for i := range n {
		if want[i] != got[i] {
			bm.Add(uint64(i))
		}
	}
	if longest := max(len(want), len(got)); longest > n {
		bm.AddRange(uint64(n), uint64(longest))
	}
	return bm
}

// MismatchError reports a round trip that did not reproduce its input.
type MismatchError struct {
	Case      string
	Positions *roaring64.Bitmap
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("case %s: %d positions differ, first at %d",
		e.Case, e.Positions.GetCardinality(), e.Positions.Minimum())
}

func verify[T comparable](name string, want, got []T) error {
	if bm := Diff(want, got); !bm.IsEmpty() {
		return &MismatchError{Case: name, Positions: bm}
	}
	return nil
}

// PrintSequence writes one element per line followed by the element size
// and the payload size in bytes.
func PrintSequence[T any](w io.Writer, s []T) error {
	size := reflect.TypeFor[T]().Size()
	if _, err := fmt.Fprintln(w, "------------------------------"); err != nil {
		return err
	}
	for _, e := range s {
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "sizeof(T): %d\nsizeof(vec): %d\n", size, uintptr(len(s))*size)
	return err
}
