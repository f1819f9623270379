package seqbench

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/hupe1980/seqbench/blobstore"
	"github.com/hupe1980/seqbench/catalog"
	"github.com/hupe1980/seqbench/internal/compress"
	"github.com/hupe1980/seqbench/internal/resource"
	"github.com/hupe1980/seqbench/persistence"
	"github.com/hupe1980/seqbench/seq"
	"golang.org/x/time/rate"
)

// readBufferSize is the read-ahead used when decoding a blob.
const readBufferSize = 64 * 1024

// Store saves and loads named sequences in a blob store.
// A Store is safe for concurrent use if its blob store and catalog are.
type Store struct {
	bs          blobstore.BlobStore
	catalog     catalog.Catalog
	compression Compression
	blockSize   int
	rc          *resource.Controller
	limiter     *rate.Limiter
	deleteLimit int
	logger      *Logger
	metrics     MetricsCollector
}

// Open returns a Store writing to bs.
func Open(bs blobstore.BlobStore, optFns ...Option) *Store {
	o := applyOptions(optFns)
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		MaxConcurrentOps:   o.maxConcurrency,
		IOLimitBytesPerSec: o.ioLimit,
	})
	return &Store{
		bs:          bs,
		catalog:     o.catalog,
		compression: o.compression,
		blockSize:   o.blockSize,
		rc:          rc,
		limiter:     rc.IOLimiter(),
		deleteLimit: o.deleteLimit,
		logger:      o.logger,
		metrics:     o.metricsCollector,
	}
}

// BlobStore returns the underlying blob store.
func (st *Store) BlobStore() blobstore.BlobStore {
	return st.bs
}

// Catalog returns the configured catalog, or nil.
func (st *Store) Catalog() catalog.Catalog {
	return st.catalog
}

// FixedKind returns the catalog kind recorded for sequences of T.
func FixedKind[T seq.Fixed]() string {
	return catalog.FixedKind(reflect.TypeFor[T]().Kind().String())
}

// SaveFixed encodes s and stores it as the sequence name, replacing any
// previous version. Without a catalog the blob is name itself; with one each
// version gets a fresh blob recorded in the entry. The returned entry
// describes the stored blob.
func SaveFixed[T seq.Fixed](ctx context.Context, st *Store, name string, s []T) (catalog.Entry, error) {
	return st.save(ctx, name, FixedKind[T](), seq.Width[T](), len(s), func(w io.Writer) error {
		return seq.EncodeFixed(w, s)
	})
}

// LoadFixed reads the sequence name and decodes it as a sequence of T.
func LoadFixed[T seq.Fixed](ctx context.Context, st *Store, name string) ([]T, error) {
	var out []T
	err := st.load(ctx, name, FixedKind[T](), func(r io.Reader) (int, error) {
		var err error
		out, err = seq.DecodeFixed[T](r)
		return len(out), err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveStrings encodes s and stores it as the sequence name.
func SaveStrings(ctx context.Context, st *Store, name string, s []string) (catalog.Entry, error) {
	return st.save(ctx, name, catalog.KindStrings, 0, len(s), func(w io.Writer) error {
		return seq.EncodeStrings(w, s)
	})
}

// LoadStrings reads the sequence name and decodes it as a string sequence.
func LoadStrings(ctx context.Context, st *Store, name string) ([]string, error) {
	var out []string
	err := st.load(ctx, name, catalog.KindStrings, func(r io.Reader) (int, error) {
		var err error
		out, err = seq.DecodeStrings(r)
		return len(out), err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Discard removes the named sequences: their blobs and their catalog entries.
func (st *Store) Discard(ctx context.Context, names ...string) (err error) {
	start := time.Now()
	defer func() {
		st.metrics.RecordDiscard(len(names), time.Since(start), err)
		st.logger.LogDiscard(ctx, len(names), err)
	}()

	blobs := names
	if st.catalog != nil {
		blobs = make([]string, 0, len(names))
		for _, name := range names {
			e, err := st.catalog.Get(ctx, name)
			switch {
			case err == nil:
				blobs = append(blobs, e.BlobName())
			case errors.Is(err, catalog.ErrNotFound):
				blobs = append(blobs, name)
			default:
				return fmt.Errorf("catalog get %s: %w", name, err)
			}
		}
	}

	if err := blobstore.DeleteAll(ctx, st.bs, blobs, st.deleteLimit); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if st.catalog == nil {
		return nil
	}
	for _, name := range names {
		if err := st.catalog.Delete(ctx, name); err != nil {
			return fmt.Errorf("catalog delete %s: %w", name, err)
		}
	}
	return nil
}

func (st *Store) save(ctx context.Context, name, kind string, width, count int, encode func(io.Writer) error) (entry catalog.Entry, err error) {
	start := time.Now()
	defer func() {
		st.metrics.RecordSave(kind, entry.StoredBytes, time.Since(start), err)
		st.logger.LogSave(ctx, name, kind, count, entry.StoredBytes, err)
	}()

	if err := st.rc.AcquireOp(ctx); err != nil {
		return catalog.Entry{}, err
	}
	defer st.rc.ReleaseOp()

	// With a catalog every version gets its own blob; the entry points at it
	// and the superseded blob is removed once the new entry is in place.
	var (
		version  = uint64(1)
		blobName = name
		prevBlob string
	)
	if st.catalog != nil {
		prev, err := st.catalog.Get(ctx, name)
		switch {
		case err == nil:
			version = prev.Version + 1
			prevBlob = prev.BlobName()
		case !errors.Is(err, catalog.ErrNotFound):
			return catalog.Entry{}, fmt.Errorf("catalog get %s: %w", name, err)
		}
		blobName = catalog.NewBlobName(name, version)
	}

	blob, err := st.bs.Create(ctx, blobName)
	if err != nil {
		return catalog.Entry{}, translateError(&IOError{Op: "write", Err: err})
	}
	committed := false
	defer func() {
		if !committed {
			_ = blob.Abort()
		}
	}()

	var sink io.Writer = blob
	if st.limiter != nil {
		sink = persistence.NewRateLimitedWriter(ctx, sink, st.limiter)
	}
	var cw *compress.Writer
	if st.compression != CompressionNone {
		cw = compress.NewWriter(sink, st.compression, st.blockSize)
		sink = cw
	}
	sum := persistence.NewChecksumWriter(sink)

	if err := encode(sum); err != nil {
		return catalog.Entry{}, err
	}

	stored := sum.BytesWritten()
	if cw != nil {
		if err := cw.Close(); err != nil {
			return catalog.Entry{}, &IOError{Op: "write", Err: err}
		}
		stored = cw.BytesWritten()
	}

	committed = true
	if err := blob.Close(); err != nil {
		return catalog.Entry{}, &IOError{Op: "write", Err: err}
	}

	e := catalog.Entry{
		Name:         name,
		Kind:         kind,
		Width:        width,
		Count:        int64(count),
		EncodedBytes: sum.BytesWritten(),
		StoredBytes:  stored,
		Compression:  st.compression.String(),
		Checksum:     sum.Sum(),
		Version:      version,
		CreatedAt:    time.Now().UTC(),
	}
	if st.catalog != nil {
		e.Blob = blobName
		if err := st.catalog.Put(ctx, e); err != nil {
			st.removeBlob(ctx, blobName)
			return catalog.Entry{}, fmt.Errorf("catalog put %s: %w", name, err)
		}
		if prevBlob != "" {
			st.removeBlob(ctx, prevBlob)
		}
	}
	return e, nil
}

// removeBlob deletes a blob that no catalog entry references. Failures only
// leave garbage behind, so they are logged instead of returned.
func (st *Store) removeBlob(ctx context.Context, name string) {
	if err := st.bs.Delete(ctx, name); err != nil {
		st.logger.WarnContext(ctx, "blob cleanup failed", "blob", name, "error", err)
	}
}

func (st *Store) load(ctx context.Context, name, kind string, decode func(io.Reader) (int, error)) (err error) {
	var (
		start   = time.Now()
		count   int
		encoded int64
	)
	defer func() {
		st.metrics.RecordLoad(kind, encoded, time.Since(start), err)
		st.logger.LogLoad(ctx, name, kind, count, err)
	}()

	if err := st.rc.AcquireOp(ctx); err != nil {
		return err
	}
	defer st.rc.ReleaseOp()

	var (
		entry *catalog.Entry
		blob  blobstore.Blob
	)
	if st.catalog != nil {
		e, b, err := st.openEntry(ctx, name, kind)
		if err != nil {
			return err
		}
		entry, blob = &e, b
	} else {
		b, err := st.bs.Open(ctx, name)
		if err != nil {
			return translateError(&IOError{Op: "read", Err: err})
		}
		blob = b
	}
	defer blob.Close()

	ct := st.compression
	if entry != nil {
		if ct, err = compress.ParseType(entry.Compression); err != nil {
			return err
		}
	}

	// Decoded size is close to the encoded size; fall back to the blob size
	// when no catalog entry is available.
	budget := blob.Size()
	if entry != nil {
		budget = entry.EncodedBytes
	}
	reserved, err := st.rc.AcquireMemory(ctx, budget)
	if err != nil {
		return err
	}
	defer st.rc.ReleaseMemory(reserved)

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return &IOError{Op: "read", Err: err}
	}
	defer rc.Close()

	var src io.Reader = rc
	if ct != CompressionNone {
		src = compress.NewReader(src, ct)
	}
	sum := persistence.NewChecksumReader(src)
	br := bufio.NewReaderSize(sum, readBufferSize)

	if count, err = decode(br); err != nil {
		count = 0
		return err
	}

	switch _, err := br.ReadByte(); {
	case err == nil:
		count = 0
		return fmt.Errorf("%w: %s", ErrTrailingData, name)
	case !errors.Is(err, io.EOF):
		count = 0
		return &IOError{Op: "read", Err: err}
	}

	encoded = sum.BytesRead()
	if entry != nil {
		if err := sum.Verify(entry.Checksum); err != nil {
			count = 0
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// openEntry reads the catalog entry for name and opens its blob. A save that
// completes between the two steps removes the old blob, so a missing blob is
// retried once against the current entry.
func (st *Store) openEntry(ctx context.Context, name, kind string) (catalog.Entry, blobstore.Blob, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		e, err := st.catalog.Get(ctx, name)
		if err != nil {
			return catalog.Entry{}, nil, translateError(err)
		}
		if e.Kind != kind {
			return catalog.Entry{}, nil, fmt.Errorf("%w: %s holds %s, loaded as %s", ErrKindMismatch, name, e.Kind, kind)
		}
		blob, err := st.bs.Open(ctx, e.BlobName())
		if err == nil {
			return e, blob, nil
		}
		lastErr = translateError(&IOError{Op: "read", Err: err})
		if !errors.Is(err, blobstore.ErrNotFound) {
			break
		}
	}
	return catalog.Entry{}, nil, lastErr
}
