package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/foodgram-go/apperror"
)

var favoriteEdge = Edge{
	Table:      "favorites",
	OwnerCol:   "user_id",
	TargetCol:  "recipe_id",
	AlreadyMsg: "recipe is already in favorites",
	MissingMsg: "recipe is not in favorites",
}

// fakeQuerier scripts Exec and QueryRow results for one call.
type fakeQuerier struct {
	execTag   pgconn.CommandTag
	execErr   error
	lastSQL   string
	lastArgs  []any
	existsVal bool
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return f.execTag, f.execErr
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	return fakeRow{exists: f.existsVal}
}

type fakeRow struct{ exists bool }

func (r fakeRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = r.exists
	return nil
}

func TestAdd(t *testing.T) {
	t.Run("inserts the edge", func(t *testing.T) {
		q := &fakeQuerier{execTag: pgconn.NewCommandTag("INSERT 0 1")}
		err := favoriteEdge.Add(context.Background(), q, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)", q.lastSQL)
		assert.Equal(t, []any{int64(1), int64(2)}, q.lastArgs)
	})

	t.Run("unique violation becomes a 400 state conflict", func(t *testing.T) {
		q := &fakeQuerier{execErr: &pgconn.PgError{Code: "23505", ConstraintName: "favorites_user_recipe_key"}}
		err := favoriteEdge.Add(context.Background(), q, 1, 2)
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
		assert.Contains(t, err.Error(), "already in favorites")
	})

	t.Run("other database errors stay 500s", func(t *testing.T) {
		q := &fakeQuerier{execErr: errors.New("connection reset")}
		err := favoriteEdge.Add(context.Background(), q, 1, 2)
		require.Error(t, err)
		appErr, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.DatabaseError, appErr.Type)
	})
}

func TestRemove(t *testing.T) {
	t.Run("deletes the edge", func(t *testing.T) {
		q := &fakeQuerier{execTag: pgconn.NewCommandTag("DELETE 1")}
		err := favoriteEdge.Remove(context.Background(), q, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2", q.lastSQL)
	})

	t.Run("absent edge is a 400 state conflict", func(t *testing.T) {
		q := &fakeQuerier{execTag: pgconn.NewCommandTag("DELETE 0")}
		err := favoriteEdge.Remove(context.Background(), q, 1, 2)
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
		assert.Contains(t, err.Error(), "not in favorites")
	})

	t.Run("database error", func(t *testing.T) {
		q := &fakeQuerier{execErr: errors.New("boom")}
		err := favoriteEdge.Remove(context.Background(), q, 1, 2)
		require.Error(t, err)
		assert.False(t, apperror.IsStateConflict(err))
	})
}

func TestExists(t *testing.T) {
	q := &fakeQuerier{existsVal: true}
	exists, err := favoriteEdge.Exists(context.Background(), q, 3, 4)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, q.lastSQL, "SELECT EXISTS")
}
