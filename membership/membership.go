// Package membership implements the toggle pattern shared by favorites,
// the shopping basket, and follows: a uniqueness-constrained (user, target)
// join row whose existence is the only state. POST creates the edge and
// treats the unique constraint as authoritative — when two requests race,
// the database decides which one conflicts. DELETE removes the edge and
// reports the absence of one.
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/db"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// Edge describes one membership relation. Table names come from the
// application, never from request input.
type Edge struct {
	Table      string // join table, e.g. "favorites"
	OwnerCol   string // column holding the acting user, e.g. "user_id"
	TargetCol  string // column holding the target, e.g. "recipe_id"
	AlreadyMsg string // detail message for a duplicate add
	MissingMsg string // detail message for removing an absent edge
}

// Add inserts the (owner, target) edge. A duplicate — including one created
// concurrently — surfaces as a state-conflict error, not a server error.
func (e Edge) Add(ctx context.Context, q db.Querier, ownerID, targetID int64) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1, $2)",
		e.Table, e.OwnerCol, e.TargetCol,
	)
	if _, err := q.Exec(ctx, query, ownerID, targetID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewStateConflictError(e.AlreadyMsg, nil)
		}
		return apperror.NewDatabaseError("failed to create "+e.Table+" record", err)
	}
	return nil
}

// Remove deletes the (owner, target) edge. Removing an edge that does not
// exist is reported as a state conflict.
func (e Edge) Remove(ctx context.Context, q db.Querier, ownerID, targetID int64) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1 AND %s = $2",
		e.Table, e.OwnerCol, e.TargetCol,
	)
	tag, err := q.Exec(ctx, query, ownerID, targetID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete "+e.Table+" record", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewStateConflictError(e.MissingMsg, nil)
	}
	return nil
}

// Exists reports whether the (owner, target) edge is present.
func (e Edge) Exists(ctx context.Context, q db.Querier, ownerID, targetID int64) (bool, error) {
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)",
		e.Table, e.OwnerCol, e.TargetCol,
	)
	var exists bool
	if err := q.QueryRow(ctx, query, ownerID, targetID).Scan(&exists); err != nil {
		return false, apperror.NewDatabaseError("failed to check "+e.Table+" record", err)
	}
	return exists, nil
}
