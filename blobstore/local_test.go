package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/seqbench/internal/fs"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	testStoreLifecycle(t, store)

	_, err := os.Stat(filepath.Join(tmpDir, "runs", "data-002.bin"))
	require.NoError(t, err)
}

func TestMemoryBlobStore_Lifecycle(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore())
}

func testStoreLifecycle(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	blobName := "data-001.bin"
	data := []byte("hello world, this is a test blob for seqbench")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	r, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "world", string(got))

	r, err = NewReader(ctx, blob)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put(ctx, "runs/data-002.bin", []byte("second")))
	require.NoError(t, store.Put(ctx, "empty.bin", nil))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"data-001.bin", "empty.bin", "runs/data-002.bin"}, names)

	names, err = store.List(ctx, "runs/")
	require.NoError(t, err)
	require.Equal(t, []string{"runs/data-002.bin"}, names)

	empty, err := store.Open(ctx, "empty.bin")
	require.NoError(t, err)
	require.Zero(t, empty.Size())
	r, err = NewReader(ctx, empty)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, empty.Close())

	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName), "delete is idempotent")

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBlobStore_Abort(t *testing.T) {
	for name, store := range map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			w, err := store.Create(ctx, "scratch.bin")
			require.NoError(t, err)
			_, err = w.Write([]byte("never visible"))
			require.NoError(t, err)
			require.NoError(t, w.Abort())

			_, err = store.Open(ctx, "scratch.bin")
			require.ErrorIs(t, err, ErrNotFound)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			require.Empty(t, names)
		})
	}
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))

	r, err = blob.ReadRange(ctx, 10, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, content)

	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
}

func TestLocalBlobStore_InvalidNames(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "../escape.bin", "/abs.bin", "x.tmp-1"} {
		_, err := store.Create(ctx, name)
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestLocalBlobStore_WriteFault(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("faulty.bin", fs.Fault{FailAfterBytes: 0})
	store.fsys = ffs

	ctx := context.Background()
	w, err := store.Create(ctx, "faulty.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("buffered"))
	require.NoError(t, err)
	require.ErrorIs(t, w.Close(), fs.ErrInjected)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	require.ErrorIs(t, store.Put(ctx, "faulty.bin", []byte("x")), fs.ErrInjected)
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}
