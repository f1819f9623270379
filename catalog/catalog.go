// Package catalog records the sequences a Store has saved.
//
// An Entry describes how a blob was written (element kind, count, sizes,
// compression and checksum) so a later load can verify it. Entries carry a
// version; Put only succeeds when the version advances, which detects two
// writers saving the same name concurrently.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no entry exists for a name.
	ErrNotFound = os.ErrNotExist

	// ErrConcurrentModification is returned when Put does not advance the
	// stored version.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// KindStrings is the kind of a length-prefixed string sequence.
const KindStrings = "strings"

// Entry describes one saved sequence.
type Entry struct {
	Name string `json:"name"`
	// Blob is the blob holding this version. Empty means the blob is Name.
	Blob string `json:"blob,omitempty"`
	// Kind is "fixed:<type>" (e.g. "fixed:uint64") or "strings".
	Kind string `json:"kind"`
	// Width is the element size in bytes; 0 for strings.
	Width int `json:"width"`
	// Count is the number of elements.
	Count int64 `json:"count"`
	// EncodedBytes is the size of the encoded stream.
	EncodedBytes int64 `json:"encoded_bytes"`
	// StoredBytes is the size of the blob after compression.
	StoredBytes int64 `json:"stored_bytes"`
	// Compression names the block compression ("none", "lz4", "zstd").
	Compression string `json:"compression"`
	// Checksum is the CRC32-C of the encoded stream.
	Checksum  uint32    `json:"checksum"`
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// BlobName returns the blob holding the entry's data.
func (e Entry) BlobName() string {
	if e.Blob != "" {
		return e.Blob
	}
	return e.Name
}

// NewBlobName returns a fresh blob name for version v of name. Every call
// yields a distinct name, so two writers racing for the same version never
// share a blob and the loser of the Put cannot replace the winner's data.
func NewBlobName(name string, v uint64) string {
	return fmt.Sprintf("%s@v%d-%s", name, v, uuid.NewString())
}

// FixedKind returns the kind string for a fixed-width element type name.
func FixedKind(typeName string) string {
	return "fixed:" + typeName
}

// Catalog stores entries by name.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Get returns the entry for name or ErrNotFound.
	Get(ctx context.Context, name string) (Entry, error)
	// Put stores e if e.Version is greater than the stored version.
	Put(ctx context.Context, e Entry) error
	// Delete removes the entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, name string) error
}
