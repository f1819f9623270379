package blobstore

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DeleteAll removes the named blobs with at most limit deletes in flight
// (unbounded if limit <= 0). The first failure cancels the remaining deletes.
func DeleteAll(ctx context.Context, bs BlobStore, names []string, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return bs.Delete(ctx, name)
		})
	}
	return g.Wait()
}

// DeletePrefix removes every blob whose name starts with prefix.
func DeletePrefix(ctx context.Context, bs BlobStore, prefix string, limit int) error {
	names, err := bs.List(ctx, prefix)
	if err != nil {
		return err
	}
	return DeleteAll(ctx, bs, names, limit)
}
