package seqbench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/seqbench/blobstore"
	"github.com/hupe1980/seqbench/catalog"
	"github.com/hupe1980/seqbench/persistence"
	"github.com/hupe1980/seqbench/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var referenceStrings = []string{"abc", "xyz012", "0123456789", "7654321"}

func iota64(n int) []uint64 {
	s := make([]uint64, n)
	for i := range s {
		s[i] = uint64(i)
	}
	return s
}

func testStores(t *testing.T) map[string]blobstore.BlobStore {
	t.Helper()
	return map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
}

var compressions = []Compression{CompressionNone, CompressionLZ4, CompressionZSTD}

func blobBytes(t *testing.T, bs blobstore.BlobStore, name string) []byte {
	t.Helper()
	blob, err := bs.Open(context.Background(), name)
	require.NoError(t, err)
	defer blob.Close()
	m, ok := blob.(blobstore.Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	return bytes.Clone(data)
}

func TestStore_Scenarios(t *testing.T) {
	ctx := context.Background()

	for storeName, bs := range testStores(t) {
		for _, c := range compressions {
			t.Run(storeName+"/"+c.String(), func(t *testing.T) {
				st := Open(bs, WithCompression(c), WithCatalog(catalog.NewMemoryCatalog()))
				prefix := c.String() + "-"

				// Scenario 1: 1000 consecutive uint64 values.
				ids := iota64(1000)
				e, err := SaveFixed(ctx, st, prefix+"iota", ids)
				require.NoError(t, err)
				assert.Equal(t, seq.FixedSize[uint64](1000), e.EncodedBytes)
				assert.Equal(t, int64(1000), e.Count)
				assert.Equal(t, 8, e.Width)
				assert.Equal(t, "fixed:uint64", e.Kind)

				gotIDs, err := LoadFixed[uint64](ctx, st, prefix+"iota")
				require.NoError(t, err)
				assert.Equal(t, ids, gotIDs)

				// Scenario 2: the reference strings.
				e, err = SaveStrings(ctx, st, prefix+"strings", referenceStrings)
				require.NoError(t, err)
				assert.Equal(t, seq.StringsSize(referenceStrings), e.EncodedBytes)
				assert.Equal(t, catalog.KindStrings, e.Kind)

				gotStrings, err := LoadStrings(ctx, st, prefix+"strings")
				require.NoError(t, err)
				assert.Equal(t, referenceStrings, gotStrings)

				// Scenario 3: empty numeric sequence.
				e, err = SaveFixed(ctx, st, prefix+"empty", []uint64{})
				require.NoError(t, err)
				assert.Equal(t, int64(8), e.EncodedBytes)

				gotEmpty, err := LoadFixed[uint64](ctx, st, prefix+"empty")
				require.NoError(t, err)
				assert.Empty(t, gotEmpty)
				assert.NotNil(t, gotEmpty)

				// Scenario 4: a single empty string.
				e, err = SaveStrings(ctx, st, prefix+"blank", []string{""})
				require.NoError(t, err)
				assert.Equal(t, int64(16), e.EncodedBytes)

				gotBlank, err := LoadStrings(ctx, st, prefix+"blank")
				require.NoError(t, err)
				assert.Equal(t, []string{""}, gotBlank)
			})
		}
	}
}

func TestStore_UncompressedLayout(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	st := Open(bs)

	_, err := SaveStrings(ctx, st, "blank", []string{""})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, blobBytes(t, bs, "blank"))

	_, err = SaveFixed(ctx, st, "empty", []int32{})
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), blobBytes(t, bs, "empty"))
}

func TestStore_WithoutCatalog(t *testing.T) {
	ctx := context.Background()
	st := Open(blobstore.NewMemoryStore(), WithCompression(CompressionLZ4))

	in := []float64{-1.5, 0, 3.25}
	e, err := SaveFixed(ctx, st, "floats", in)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Version)
	assert.Equal(t, "lz4", e.Compression)
	assert.Empty(t, e.Blob)
	assert.Equal(t, "floats", e.BlobName())

	got, err := LoadFixed[float64](ctx, st, "floats")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestStore_ChecksumIndependentOfCompression(t *testing.T) {
	ctx := context.Background()
	ids := iota64(5000)

	var sums []uint32
	for _, c := range compressions {
		st := Open(blobstore.NewMemoryStore(), WithCompression(c))
		e, err := SaveFixed(ctx, st, "ids", ids)
		require.NoError(t, err)
		sums = append(sums, e.Checksum)
	}
	assert.Equal(t, sums[0], sums[1])
	assert.Equal(t, sums[0], sums[2])
	assert.Equal(t, persistence.Checksum(seq.AppendFixed(nil, ids)), sums[0])
}

func TestStore_CompressionShrinksBlob(t *testing.T) {
	ctx := context.Background()
	st := Open(blobstore.NewMemoryStore(), WithCompression(CompressionZSTD))

	e, err := SaveFixed(ctx, st, "ids", iota64(100_000))
	require.NoError(t, err)
	assert.Less(t, e.StoredBytes, e.EncodedBytes/2)
}

func TestStore_Versions(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	cat := catalog.NewMemoryCatalog()
	st := Open(bs, WithCatalog(cat))

	e1, err := SaveFixed(ctx, st, "ids", iota64(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e1.Version)

	e2, err := SaveFixed(ctx, st, "ids", iota64(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e2.Version)
	assert.NotEqual(t, e1.Blob, e2.Blob)

	got, err := LoadFixed[uint64](ctx, st, "ids")
	require.NoError(t, err)
	assert.Equal(t, iota64(5), got)

	// The superseded blob is removed.
	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{e2.Blob}, names)
}

// racyCatalog hides stored entries from the first misses Get calls, as if
// that many writers read the catalog before any of them stored an entry.
type racyCatalog struct {
	*catalog.MemoryCatalog
	misses atomic.Int32
}

func (c *racyCatalog) Get(ctx context.Context, name string) (catalog.Entry, error) {
	if c.misses.Add(-1) >= 0 {
		return catalog.Entry{}, catalog.ErrNotFound
	}
	return c.MemoryCatalog.Get(ctx, name)
}

func TestStore_ConcurrentModification(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	cat := &racyCatalog{MemoryCatalog: catalog.NewMemoryCatalog()}
	cat.misses.Store(2)
	st := Open(bs, WithCatalog(cat))

	winner, err := SaveFixed(ctx, st, "ids", iota64(3))
	require.NoError(t, err)

	_, err = SaveFixed(ctx, st, "ids", iota64(4))
	require.ErrorIs(t, err, ErrConcurrentModification)

	// The losing save leaves the winner's data intact.
	got, err := LoadFixed[uint64](ctx, st, "ids")
	require.NoError(t, err)
	assert.Equal(t, iota64(3), got)

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{winner.Blob}, names)
}

// lateCatalog returns a fixed entry on the first Get, as seen by a load that
// read the catalog just before a newer save replaced it.
type lateCatalog struct {
	*catalog.MemoryCatalog
	first atomic.Pointer[catalog.Entry]
}

func (c *lateCatalog) Get(ctx context.Context, name string) (catalog.Entry, error) {
	if e := c.first.Swap(nil); e != nil {
		return *e, nil
	}
	return c.MemoryCatalog.Get(ctx, name)
}

func TestStore_LoadAfterConcurrentSave(t *testing.T) {
	ctx := context.Background()
	cat := &lateCatalog{MemoryCatalog: catalog.NewMemoryCatalog()}
	st := Open(blobstore.NewMemoryStore(), WithCatalog(cat))

	old, err := SaveFixed(ctx, st, "ids", iota64(3))
	require.NoError(t, err)
	_, err = SaveFixed(ctx, st, "ids", iota64(6))
	require.NoError(t, err)

	cat.first.Store(&old)
	got, err := LoadFixed[uint64](ctx, st, "ids")
	require.NoError(t, err)
	assert.Equal(t, iota64(6), got)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog", func(t *testing.T) {
		st := Open(blobstore.NewMemoryStore(), WithCatalog(catalog.NewMemoryCatalog()))
		got, err := LoadFixed[uint64](ctx, st, "missing")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("blob", func(t *testing.T) {
		st := Open(blobstore.NewLocalStore(t.TempDir()))
		got, err := LoadStrings(ctx, st, "missing")
		require.ErrorIs(t, err, ErrNotFound)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "read", ioErr.Op)
		assert.Nil(t, got)
	})
}

func TestStore_KindMismatch(t *testing.T) {
	ctx := context.Background()
	st := Open(blobstore.NewMemoryStore(), WithCatalog(catalog.NewMemoryCatalog()))

	_, err := SaveFixed(ctx, st, "ids", iota64(10))
	require.NoError(t, err)

	_, err = LoadFixed[float64](ctx, st, "ids")
	require.ErrorIs(t, err, ErrKindMismatch)

	_, err = LoadStrings(ctx, st, "ids")
	require.ErrorIs(t, err, ErrKindMismatch)
}

func TestStore_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	st := Open(bs, WithCatalog(catalog.NewMemoryCatalog()))

	e, err := SaveFixed(ctx, st, "ids", iota64(100))
	require.NoError(t, err)

	data := blobBytes(t, bs, e.Blob)
	data[100] ^= 0xff
	require.NoError(t, bs.Put(ctx, e.Blob, data))

	got, err := LoadFixed[uint64](ctx, st, "ids")
	require.Error(t, err)
	assert.True(t, persistence.IsChecksumMismatch(err))
	assert.Nil(t, got)
}

func TestStore_TrailingData(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	st := Open(bs)

	data := seq.AppendFixed(nil, []uint16{1, 2, 3})
	require.NoError(t, bs.Put(ctx, "ids", append(data, 0)))

	got, err := LoadFixed[uint16](ctx, st, "ids")
	require.ErrorIs(t, err, ErrTrailingData)
	assert.Nil(t, got)
}

func TestStore_Truncated(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	st := Open(bs)

	data := seq.AppendStrings(nil, referenceStrings)
	require.NoError(t, bs.Put(ctx, "strings", data[:len(data)-3]))

	got, err := LoadStrings(ctx, st, "strings")
	require.ErrorIs(t, err, ErrTruncatedInput)
	var te *TruncatedInputError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "payload", te.Field)
	assert.Equal(t, 3, te.Index)
	assert.Nil(t, got)
}

func TestStore_TruncatedCompressed(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	st := Open(bs, WithCompression(CompressionLZ4))

	_, err := SaveFixed(ctx, st, "ids", iota64(1000))
	require.NoError(t, err)

	data := blobBytes(t, bs, "ids")
	require.NoError(t, bs.Put(ctx, "ids", data[:len(data)/2]))

	_, err = LoadFixed[uint64](ctx, st, "ids")
	require.ErrorIs(t, err, ErrTruncatedInput)
}

var errDisk = errors.New("disk full")

// failingStore accepts at most limit bytes per blob.
type failingStore struct {
	*blobstore.MemoryStore
	limit   int
	aborted int
}

func (s *failingStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	w, err := s.MemoryStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &failingBlob{WritableBlob: w, store: s, left: s.limit}, nil
}

type failingBlob struct {
	blobstore.WritableBlob
	store *failingStore
	left  int
}

func (b *failingBlob) Write(p []byte) (int, error) {
	if len(p) > b.left {
		n, _ := b.WritableBlob.Write(p[:b.left])
		b.left = 0
		return n, errDisk
	}
	b.left -= len(p)
	return b.WritableBlob.Write(p)
}

func (b *failingBlob) Abort() error {
	b.store.aborted++
	return b.WritableBlob.Abort()
}

func TestStore_WriteError(t *testing.T) {
	ctx := context.Background()

	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			fs := &failingStore{MemoryStore: blobstore.NewMemoryStore(), limit: 100}
			cat := catalog.NewMemoryCatalog()
			st := Open(fs, WithCompression(c), WithCatalog(cat))

			_, err := SaveFixed(ctx, st, "ids", iota64(10_000))
			require.ErrorIs(t, err, errDisk)
			var ioErr *IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, "write", ioErr.Op)

			assert.Equal(t, 1, fs.aborted)
			names, err := fs.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)

			_, err = cat.Get(ctx, "ids")
			require.ErrorIs(t, err, catalog.ErrNotFound)
		})
	}
}

func TestStore_Discard(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	cat := catalog.NewMemoryCatalog()
	metrics := &BasicMetricsCollector{}
	st := Open(bs, WithCatalog(cat), WithMetricsCollector(metrics))

	_, err := SaveFixed(ctx, st, "a", iota64(10))
	require.NoError(t, err)
	_, err = SaveStrings(ctx, st, "b", referenceStrings)
	require.NoError(t, err)

	require.NoError(t, st.Discard(ctx, "a", "b", "never-saved"))

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, cat.Entries())

	_, err = LoadFixed[uint64](ctx, st, "a")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(1), metrics.GetStats().DiscardCount)
}

func TestStore_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	st := Open(blobstore.NewMemoryStore(), WithMetricsCollector(metrics))

	_, err := SaveFixed(ctx, st, "ids", iota64(1000))
	require.NoError(t, err)
	_, err = LoadFixed[uint64](ctx, st, "ids")
	require.NoError(t, err)
	_, err = LoadFixed[uint64](ctx, st, "missing")
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SaveCount)
	assert.Equal(t, int64(0), stats.SaveErrors)
	assert.Equal(t, int64(8008), stats.SaveBytes)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(8008), stats.LoadBytes)
}

func TestStore_IOLimit(t *testing.T) {
	ctx := context.Background()
	st := Open(blobstore.NewMemoryStore(), WithIOLimit(1<<20), WithLogger(nil), WithMetricsCollector(nil))

	in := iota64(10_000)
	_, err := SaveFixed(ctx, st, "ids", in)
	require.NoError(t, err)

	got, err := LoadFixed[uint64](ctx, st, "ids")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestStore_IOLimitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bs := blobstore.NewMemoryStore()
	st := Open(bs, WithIOLimit(1024))

	_, err := SaveFixed(ctx, st, "ids", iota64(10_000))
	require.ErrorIs(t, err, context.Canceled)

	names, err := bs.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFixedKind(t *testing.T) {
	type celsius float64

	assert.Equal(t, "fixed:uint64", FixedKind[uint64]())
	assert.Equal(t, "fixed:int8", FixedKind[int8]())
	assert.Equal(t, "fixed:float64", FixedKind[celsius]())
}

func TestParseCompression(t *testing.T) {
	for _, c := range compressions {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("snappy")
	require.Error(t, err)
}

func TestStore_ConcurrentWithLimits(t *testing.T) {
	ctx := context.Background()
	st := Open(blobstore.NewMemoryStore(),
		WithCatalog(catalog.NewMemoryCatalog()),
		WithCompression(CompressionLZ4),
		WithMaxConcurrency(2),
		WithMemoryLimit(4096))

	g, gctx := errgroup.WithContext(ctx)
	for i := range 8 {
		name := fmt.Sprintf("seq-%d", i)
		g.Go(func() error {
			in := iota64(1000 + i)
			if _, err := SaveFixed(gctx, st, name, in); err != nil {
				return err
			}
			got, err := LoadFixed[uint64](gctx, st, name)
			if err != nil {
				return err
			}
			if len(got) != len(in) || got[len(got)-1] != in[len(in)-1] {
				return fmt.Errorf("%s: round trip mismatch", name)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(0), st.rc.MemoryUsage())
}

func TestStore_ConcurrencySlotCanceled(t *testing.T) {
	st := Open(blobstore.NewMemoryStore(), WithMaxConcurrency(1))
	require.True(t, st.rc.TryAcquireOp())
	defer st.rc.ReleaseOp()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SaveFixed(ctx, st, "ids", iota64(3))
	require.ErrorIs(t, err, context.Canceled)
	_, err = LoadFixed[uint64](ctx, st, "ids")
	require.ErrorIs(t, err, context.Canceled)
}
