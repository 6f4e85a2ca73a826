package recipes

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/media"
)

// fakeRow replays one scripted QueryRow result.
type fakeRow struct {
	err  error
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.scan != nil {
		return r.scan(dest...)
	}
	return nil
}

// fakeRows replays scripted shopping list rows through the pgx.Rows
// interface.
type fakeRows struct {
	items []ShoppingItem
	idx   int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	return r.idx < len(r.items)
}

func (r *fakeRows) Scan(dest ...any) error {
	item := r.items[r.idx]
	r.idx++
	*(dest[0].(*string)) = item.Name
	*(dest[1].(*string)) = item.MeasurementUnit
	*(dest[2].(*int)) = item.Total
	return nil
}

// fakeQuerier pops one fakeRow per QueryRow call, serves queryRows for
// Query, and records every statement.
type fakeQuerier struct {
	rows      []fakeRow
	queryRows pgx.Rows
	sqls      []string
	beginned  bool
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.sqls = append(f.sqls, sql)
	if len(f.rows) == 0 {
		return fakeRow{err: errors.New("no scripted row")}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sqls = append(f.sqls, sql)
	if f.queryRows == nil {
		return nil, errors.New("not scripted")
	}
	return f.queryRows, nil
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	f.beginned = true
	return nil, errors.New("not scripted")
}

// countRow scripts a count(*) scan.
func countRow(n int) fakeRow {
	return fakeRow{scan: func(dest ...any) error {
		*(dest[0].(*int)) = n
		return nil
	}}
}

func newTestService(t *testing.T, q *fakeQuerier) *Service {
	t.Helper()
	return NewService(q, media.NewStore(t.TempDir(), "http://test"), nil, "http://test")
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	t.Run("missing tag", func(t *testing.T) {
		q := &fakeQuerier{rows: []fakeRow{countRow(1)}}
		svc := newTestService(t, q)

		_, err := svc.Create(context.Background(), 1, validWrite())
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.Contains(t, err.Error(), "tags: one or more tags do not exist")
		require.Len(t, q.sqls, 1)
		assert.Contains(t, q.sqls[0], "FROM tags")
		assert.False(t, q.beginned, "no transaction starts for a bad payload")
	})

	t.Run("missing ingredient", func(t *testing.T) {
		q := &fakeQuerier{rows: []fakeRow{countRow(2), countRow(1)}}
		svc := newTestService(t, q)

		_, err := svc.Create(context.Background(), 1, validWrite())
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.Contains(t, err.Error(), "ingredients: one or more ingredients do not exist")
		require.Len(t, q.sqls, 2)
		assert.Contains(t, q.sqls[1], "FROM ingredients")
		assert.False(t, q.beginned)
	})
}

func TestShoppingListAggregation(t *testing.T) {
	q := &fakeQuerier{queryRows: &fakeRows{items: []ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Total: 700},
		{Name: "milk", MeasurementUnit: "ml", Total: 250},
	}}}
	svc := newTestService(t, q)

	items, err := svc.ShoppingList(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ShoppingItem{Name: "flour", MeasurementUnit: "g", Total: 700}, items[0])

	// Summing and grouping happen in SQL; pin the statement shape.
	require.Len(t, q.sqls, 1)
	assert.Contains(t, q.sqls[0], "SUM(ri.amount)")
	assert.Contains(t, q.sqls[0], "GROUP BY i.name, i.measurement_unit")
	assert.Contains(t, q.sqls[0], "ORDER BY i.name")
}
