package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Counter increments are single atomic UPDATE ... RETURNING statements, so
// concurrent requests are serialized by the database and the returned value
// is the authoritative post-increment count. There is no per-client
// de-duplication; repeated calls each count.

// IncrementPackageLike adds one like to a package and returns the new count.
func (r *Repository) IncrementPackageLike(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE pacotes SET like_count = like_count + 1
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING like_count
	`
	return r.incrementCounter(ctx, q, id, "package like")
}

// IncrementPackageView adds one view to a package and returns the new count.
func (r *Repository) IncrementPackageView(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE pacotes SET view_count = view_count + 1
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING view_count
	`
	return r.incrementCounter(ctx, q, id, "package view")
}

// IncrementPhotoLike adds one like to a photo and returns the new count.
func (r *Repository) IncrementPhotoLike(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE pacote_fotos SET like_count = like_count + 1
		WHERE id = $1
		RETURNING like_count
	`
	return r.incrementCounter(ctx, q, id, "photo like")
}

// IncrementPhotoView adds one view to a photo and returns the new count.
func (r *Repository) IncrementPhotoView(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE pacote_fotos SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
	`
	return r.incrementCounter(ctx, q, id, "photo view")
}

func (r *Repository) incrementCounter(ctx context.Context, q, id, what string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, q, id).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("incrementing %s for %s: %w", what, id, err)
	}
	return n, nil
}
