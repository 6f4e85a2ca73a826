package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/foodgram-go/apperror"
)

// Service reads tags and ingredients.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// ListTags returns every tag, ordered by id.
func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, slug FROM tags ORDER BY id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tags", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan tag", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read tags", err)
	}
	return tags, nil
}

// GetTag returns a single tag by id.
func (s *Service) GetTag(ctx context.Context, id int64) (*Tag, error) {
	var t Tag
	err := s.db.QueryRow(ctx, `SELECT id, name, slug FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("tag not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get tag", err)
	}
	return &t, nil
}

// escapeLike neutralizes LIKE metacharacters in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListIngredients returns ingredients, optionally narrowed to those whose
// name starts with the given prefix. The match is case-insensitive.
func (s *Service) ListIngredients(ctx context.Context, namePrefix string) ([]Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	args := []any{}
	if namePrefix != "" {
		query += ` WHERE lower(name) LIKE $1`
		args = append(args, strings.ToLower(escapeLike(namePrefix))+"%")
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list ingredients", err)
	}
	defer rows.Close()

	ingredients := []Ingredient{}
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan ingredient", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read ingredients", err)
	}
	return ingredients, nil
}

// GetIngredient returns a single ingredient by id.
func (s *Service) GetIngredient(ctx context.Context, id int64) (*Ingredient, error) {
	var ing Ingredient
	err := s.db.QueryRow(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id).
		Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("ingredient not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get ingredient", err)
	}
	return &ing, nil
}

// ImportIngredients upserts dictionary entries in a single transaction and
// reports how many rows were inserted. Existing (name, unit) pairs are left
// untouched so the command is safe to re-run.
func (s *Service) ImportIngredients(ctx context.Context, entries []Ingredient) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for i, e := range entries {
		if e.Name == "" || e.MeasurementUnit == "" {
			return 0, apperror.NewValidationError(
				fmt.Sprintf("entry %d: name and measurement_unit are required", i+1), nil)
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2)
			 ON CONFLICT (name, measurement_unit) DO NOTHING`,
			e.Name, e.MeasurementUnit)
		if err != nil {
			return 0, apperror.NewDatabaseError("failed to insert ingredient", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperror.NewDatabaseError("failed to commit ingredients", err)
	}
	return inserted, nil
}
