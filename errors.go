package seqbench

import (
	"errors"
	"fmt"

	"github.com/hupe1980/seqbench/blobstore"
	"github.com/hupe1980/seqbench/catalog"
	"github.com/hupe1980/seqbench/persistence"
	"github.com/hupe1980/seqbench/seq"
)

var (
	// ErrNotFound is returned when a sequence does not exist.
	ErrNotFound = errors.New("not found")

	// ErrKindMismatch is returned when a sequence is loaded as a different
	// element kind than it was saved with.
	ErrKindMismatch = errors.New("element kind mismatch")

	// ErrTrailingData is returned when a blob holds bytes past the end of the
	// encoded sequence.
	ErrTrailingData = errors.New("trailing data after sequence")

	// ErrTruncatedInput matches every *TruncatedInputError.
	ErrTruncatedInput = seq.ErrTruncatedInput

	// ErrConcurrentModification is returned when two saves of the same name race.
	ErrConcurrentModification = catalog.ErrConcurrentModification
)

// TruncatedInputError reports a stream that ended before a declared count or
// length was satisfied.
type TruncatedInputError = seq.TruncatedInputError

// IOError wraps a failure of the underlying blob store.
type IOError = seq.IOError

// ChecksumMismatchError reports a blob whose contents differ from what was saved.
type ChecksumMismatchError = persistence.ChecksumMismatchError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// blobstore and catalog both report missing items as os.ErrNotExist.
	if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
