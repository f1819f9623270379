package blobstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingDeleteStore struct {
	*MemoryStore
	err error
}

func (s failingDeleteStore) Delete(context.Context, string) error { return s.err }

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 20; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("scratch/%02d.bin", i), []byte{byte(i)}))
	}
	require.NoError(t, store.Put(ctx, "keep.bin", nil))

	require.NoError(t, DeletePrefix(ctx, store, "scratch/", 4))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"keep.bin"}, names)
}

func TestDeleteAll_Error(t *testing.T) {
	boom := errors.New("permission denied")
	store := failingDeleteStore{MemoryStore: NewMemoryStore(), err: boom}

	err := DeleteAll(context.Background(), store, []string{"a", "b", "c"}, 0)
	require.ErrorIs(t, err, boom)
}
