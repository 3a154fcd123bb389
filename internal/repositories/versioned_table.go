package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/bibujohny/rentalAI/internal/utils"
)

// versionedEntity is a row guarded by a row_version column. comparable lets
// a nil pointer stand for "no row".
type versionedEntity interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

// updateIfVersionFunc writes entity only while its stored row_version still
// equals expected, and bumps the version in the same statement.
type updateIfVersionFunc[T versionedEntity] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)

const maxVersionConflicts = 3

// versionedTable loads rows of one table by id and applies optimistic
// read-modify-write updates to them.
type versionedTable[T versionedEntity] struct {
	db              DB
	selectByID      string
	scan            func(pgx.Row) (T, error)
	updateIfVersion updateIfVersionFunc[T]
}

func (v *versionedTable[T]) get(ctx context.Context, id uuid.UUID) (T, error) {
	return v.scan(v.db.QueryRow(ctx, v.selectByID, id))
}

func (v *versionedTable[T]) update(ctx context.Context, id uuid.UUID, mutate func(T) error) error {
	load := func(ctx context.Context) (T, error) { return v.get(ctx, id) }
	if err := updateWithRetry(ctx, maxVersionConflicts, load, v.updateIfVersion, mutate); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	return nil
}

// updateWithRetry reloads, mutates and conditionally writes until a write
// lands. mutate errors abort without writing; a missing row is ErrNotFound.
func updateWithRetry[T versionedEntity](
	ctx context.Context,
	attempts int,
	load func(context.Context) (T, error),
	write updateIfVersionFunc[T],
	mutate func(T) error,
) error {
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur, err := load(ctx)
		if err != nil {
			return err
		}
		var none T
		if cur == none {
			return utils.ErrNotFound
		}

		version := cur.GetRowVersion()
		if err := mutate(cur); err != nil {
			return err
		}
		tag, err := write(ctx, cur, version)
		if err != nil {
			return mapPgError(err)
		}
		if tag.RowsAffected() == 1 {
			cur.SetRowVersion(version + 1)
			return nil
		}
		utils.Logger.WithField("attempt", i).Debug("Row changed during update; reloading")
	}
	return fmt.Errorf("%w after %d attempts", utils.ErrRowVersionConflict, attempts)
}
