package recipes

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/catalog"
	"github.com/user/foodgram-go/db"
	"github.com/user/foodgram-go/media"
	"github.com/user/foodgram-go/membership"
	"github.com/user/foodgram-go/pagination"
	"github.com/user/foodgram-go/users"
)

// psql builds queries with PostgreSQL placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	favoriteEdge = membership.Edge{
		Table:      "favorites",
		OwnerCol:   "user_id",
		TargetCol:  "recipe_id",
		AlreadyMsg: "recipe is already in favorites",
		MissingMsg: "recipe is not in favorites",
	}
	basketEdge = membership.Edge{
		Table:      "shopping_basket",
		OwnerCol:   "user_id",
		TargetCol:  "recipe_id",
		AlreadyMsg: "recipe is already in the shopping cart",
		MissingMsg: "recipe is not in the shopping cart",
	}
)

// Service implements the recipe lifecycle. It depends on db.TxQuerier
// rather than the pool so tests can substitute a fake.
type Service struct {
	db      db.TxQuerier
	media   *media.Store
	users   *users.Service
	baseURL string
}

func NewService(querier db.TxQuerier, mediaStore *media.Store, userService *users.Service, baseURL string) *Service {
	return &Service{db: querier, media: mediaStore, users: userService, baseURL: baseURL}
}

// checkReferences verifies every tag and ingredient id in the payload
// exists before any row is written.
func (s *Service) checkReferences(ctx context.Context, req WriteRequest) error {
	tagIDs := req.Tags
	var tagCount int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM tags WHERE id = ANY($1)`, tagIDs).Scan(&tagCount)
	if err != nil {
		return apperror.NewDatabaseError("failed to check tags", err)
	}
	if tagCount != len(tagIDs) {
		return apperror.NewValidationError("tags: one or more tags do not exist", nil)
	}

	ingredientIDs := make([]int64, len(req.Ingredients))
	for i, item := range req.Ingredients {
		ingredientIDs[i] = item.ID
	}
	var ingredientCount int
	err = s.db.QueryRow(ctx,
		`SELECT count(*) FROM ingredients WHERE id = ANY($1)`, ingredientIDs).Scan(&ingredientCount)
	if err != nil {
		return apperror.NewDatabaseError("failed to check ingredients", err)
	}
	if ingredientCount != len(ingredientIDs) {
		return apperror.NewValidationError("ingredients: one or more ingredients do not exist", nil)
	}
	return nil
}

// insertLines writes the tag and ingredient rows for a recipe inside tx.
func insertLines(ctx context.Context, tx pgx.Tx, recipeID int64, req WriteRequest) error {
	for _, tagID := range req.Tags {
		_, err := tx.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`, recipeID, tagID)
		if err != nil {
			return apperror.NewDatabaseError("failed to attach tag", err)
		}
	}
	for _, item := range req.Ingredients {
		_, err := tx.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES ($1, $2, $3)`,
			recipeID, item.ID, item.Amount)
		if err != nil {
			return apperror.NewDatabaseError("failed to attach ingredient", err)
		}
	}
	return nil
}

// Create stores a new recipe and returns its full read model.
func (s *Service) Create(ctx context.Context, authorID int64, req WriteRequest) (*Response, error) {
	if err := ValidateWrite(req, true); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	imagePath, err := s.media.SaveDataURI(req.Image, media.RecipeImageDir)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.media.Remove(imagePath)
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var recipeID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO recipes (author_id, name, image, text, cooking_time)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		authorID, req.Name, imagePath, req.Text, req.CookingTime).Scan(&recipeID)
	if err != nil {
		s.media.Remove(imagePath)
		return nil, apperror.NewDatabaseError("failed to create recipe", err)
	}
	if err := insertLines(ctx, tx, recipeID, req); err != nil {
		s.media.Remove(imagePath)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		s.media.Remove(imagePath)
		return nil, apperror.NewDatabaseError("failed to commit recipe", err)
	}

	return s.Get(ctx, authorID, recipeID)
}

// Update rewrites a recipe in place. Tag and ingredient rows are replaced
// wholesale; the image is replaced only when a new one is supplied. Only
// the author or an admin may update.
func (s *Service) Update(ctx context.Context, userID, recipeID int64, req WriteRequest) (*Response, error) {
	if err := ValidateWrite(req, false); err != nil {
		return nil, err
	}

	authorID, oldImage, err := s.recipeOwner(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, authorID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	imagePath := oldImage
	if req.Image != "" {
		imagePath, err = s.media.SaveDataURI(req.Image, media.RecipeImageDir)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE recipes SET name = $1, image = $2, text = $3, cooking_time = $4 WHERE id = $5`,
		req.Name, imagePath, req.Text, req.CookingTime, recipeID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update recipe", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipeID); err != nil {
		return nil, apperror.NewDatabaseError("failed to clear recipe tags", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		return nil, apperror.NewDatabaseError("failed to clear recipe ingredients", err)
	}
	if err := insertLines(ctx, tx, recipeID, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		if imagePath != oldImage {
			s.media.Remove(imagePath)
		}
		return nil, apperror.NewDatabaseError("failed to commit recipe update", err)
	}
	if imagePath != oldImage {
		s.media.Remove(oldImage)
	}

	return s.Get(ctx, userID, recipeID)
}

// Delete removes a recipe and its image. Only the author or an admin may
// delete.
func (s *Service) Delete(ctx context.Context, userID, recipeID int64) error {
	authorID, image, err := s.recipeOwner(ctx, recipeID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, authorID); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, recipeID); err != nil {
		return apperror.NewDatabaseError("failed to delete recipe", err)
	}
	s.media.Remove(image)
	return nil
}

// recipeOwner returns a recipe's author id and stored image path.
func (s *Service) recipeOwner(ctx context.Context, recipeID int64) (int64, string, error) {
	var authorID int64
	var image string
	err := s.db.QueryRow(ctx,
		`SELECT author_id, image FROM recipes WHERE id = $1`, recipeID).Scan(&authorID, &image)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", apperror.NewNotFoundError("recipe not found", err)
	}
	if err != nil {
		return 0, "", apperror.NewDatabaseError("failed to get recipe", err)
	}
	return authorID, image, nil
}

// authorize permits the author and admins, rejecting everyone else.
func (s *Service) authorize(ctx context.Context, userID, authorID int64) error {
	if userID == authorID {
		return nil
	}
	account, err := s.users.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if !account.IsAdmin {
		return apperror.NewForbiddenError("you do not have permission to modify this recipe", nil)
	}
	return nil
}

// Get returns the full read model of one recipe as seen by viewerID.
func (s *Service) Get(ctx context.Context, viewerID, recipeID int64) (*Response, error) {
	var (
		resp     Response
		authorID int64
		image    string
	)
	err := s.db.QueryRow(ctx, `
		SELECT r.id, r.author_id, r.name, r.image, r.text, r.cooking_time,
		       CASE WHEN $2 = 0 THEN FALSE ELSE
		           EXISTS (SELECT 1 FROM favorites f WHERE f.user_id = $2 AND f.recipe_id = r.id) END,
		       CASE WHEN $2 = 0 THEN FALSE ELSE
		           EXISTS (SELECT 1 FROM shopping_basket b WHERE b.user_id = $2 AND b.recipe_id = r.id) END
		FROM recipes r WHERE r.id = $1`,
		recipeID, viewerID).
		Scan(&resp.ID, &authorID, &resp.Name, &image, &resp.Text, &resp.CookingTime,
			&resp.IsFavorited, &resp.IsInShoppingCart)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("recipe not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get recipe", err)
	}
	resp.Image = s.media.URL(image)

	author, err := s.users.GetByID(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}
	resp.Author = *author

	if err := s.fillLines(ctx, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// fillLines loads a recipe's tags and ingredient rows.
func (s *Service) fillLines(ctx context.Context, resp *Response) error {
	tagRows, err := s.db.Query(ctx, `
		SELECT t.id, t.name, t.slug FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1 ORDER BY t.id`, resp.ID)
	if err != nil {
		return apperror.NewDatabaseError("failed to load recipe tags", err)
	}
	defer tagRows.Close()
	resp.Tags = []catalog.Tag{}
	for tagRows.Next() {
		var t catalog.Tag
		if err := tagRows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return apperror.NewDatabaseError("failed to scan recipe tag", err)
		}
		resp.Tags = append(resp.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return apperror.NewDatabaseError("failed to read recipe tags", err)
	}

	lineRows, err := s.db.Query(ctx, `
		SELECT i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = $1 ORDER BY i.name`, resp.ID)
	if err != nil {
		return apperror.NewDatabaseError("failed to load recipe ingredients", err)
	}
	defer lineRows.Close()
	resp.Ingredients = []LineItemResponse{}
	for lineRows.Next() {
		var line LineItemResponse
		if err := lineRows.Scan(&line.ID, &line.Name, &line.MeasurementUnit, &line.Amount); err != nil {
			return apperror.NewDatabaseError("failed to scan recipe ingredient", err)
		}
		resp.Ingredients = append(resp.Ingredients, line)
	}
	return lineRows.Err()
}

// List returns a page of recipes, newest first, narrowed by filters. The
// favorites and basket filters only apply to authenticated viewers.
func (s *Service) List(ctx context.Context, viewerID int64, filters ListFilters, p pagination.Params) ([]Response, int, error) {
	base := psql.Select().From("recipes r")
	if filters.AuthorID != 0 {
		base = base.Where(sq.Eq{"r.author_id": filters.AuthorID})
	}
	if len(filters.TagSlugs) > 0 {
		base = base.Where(
			`r.id IN (SELECT rt.recipe_id FROM recipe_tags rt
			          JOIN tags t ON t.id = rt.tag_id WHERE t.slug = ANY(?))`,
			filters.TagSlugs)
	}
	if filters.IsFavorited && viewerID != 0 {
		base = base.Where(`r.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)`, viewerID)
	}
	if filters.IsInShoppingCart && viewerID != 0 {
		base = base.Where(`r.id IN (SELECT recipe_id FROM shopping_basket WHERE user_id = ?)`, viewerID)
	}

	countSQL, countArgs, err := base.Columns("count(*)").ToSql()
	if err != nil {
		return nil, 0, apperror.NewInternalError("failed to build recipe count query", err)
	}
	var total int
	if err := s.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count recipes", err)
	}

	pageSQL, pageArgs, err := base.Columns("r.id").
		OrderBy("r.pub_date DESC", "r.id DESC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, apperror.NewInternalError("failed to build recipe page query", err)
	}

	rows, err := s.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list recipes", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, 0, apperror.NewDatabaseError("failed to scan recipe id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to read recipes", err)
	}

	results := make([]Response, 0, len(ids))
	for _, id := range ids {
		resp, err := s.Get(ctx, viewerID, id)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *resp)
	}
	return results, total, nil
}

// Favorite adds a recipe to the viewer's favorites and returns its compact
// representation.
func (s *Service) Favorite(ctx context.Context, userID, recipeID int64) (*users.RecipeShort, error) {
	return s.addEdge(ctx, favoriteEdge, userID, recipeID)
}

// Unfavorite removes a recipe from the viewer's favorites.
func (s *Service) Unfavorite(ctx context.Context, userID, recipeID int64) error {
	return s.removeEdge(ctx, favoriteEdge, userID, recipeID)
}

// AddToBasket puts a recipe in the viewer's shopping basket.
func (s *Service) AddToBasket(ctx context.Context, userID, recipeID int64) (*users.RecipeShort, error) {
	return s.addEdge(ctx, basketEdge, userID, recipeID)
}

// RemoveFromBasket takes a recipe out of the viewer's shopping basket.
func (s *Service) RemoveFromBasket(ctx context.Context, userID, recipeID int64) error {
	return s.removeEdge(ctx, basketEdge, userID, recipeID)
}

func (s *Service) addEdge(ctx context.Context, edge membership.Edge, userID, recipeID int64) (*users.RecipeShort, error) {
	short, err := s.short(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := edge.Add(ctx, s.db, userID, recipeID); err != nil {
		return nil, err
	}
	return short, nil
}

func (s *Service) removeEdge(ctx context.Context, edge membership.Edge, userID, recipeID int64) error {
	if _, err := s.short(ctx, recipeID); err != nil {
		return err
	}
	return edge.Remove(ctx, s.db, userID, recipeID)
}

// short returns the compact read model, doubling as the existence check for
// toggle endpoints.
func (s *Service) short(ctx context.Context, recipeID int64) (*users.RecipeShort, error) {
	var short users.RecipeShort
	var image string
	err := s.db.QueryRow(ctx,
		`SELECT id, name, image, cooking_time FROM recipes WHERE id = $1`, recipeID).
		Scan(&short.ID, &short.Name, &image, &short.CookingTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("recipe not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get recipe", err)
	}
	short.Image = s.media.URL(image)
	return &short, nil
}

// ShoppingList aggregates the viewer's basket: amounts of the same
// ingredient are summed across recipes, grouped by name and unit.
func (s *Service) ShoppingList(ctx context.Context, userID int64) ([]ShoppingItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT i.name, i.measurement_unit, SUM(ri.amount)
		FROM shopping_basket b
		JOIN recipe_ingredients ri ON ri.recipe_id = b.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE b.user_id = $1
		GROUP BY i.name, i.measurement_unit
		ORDER BY i.name`, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to build shopping list", err)
	}
	defer rows.Close()

	items := []ShoppingItem{}
	for rows.Next() {
		var item ShoppingItem
		if err := rows.Scan(&item.Name, &item.MeasurementUnit, &item.Total); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan shopping list row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read shopping list", err)
	}
	return items, nil
}

// ShortLink returns the public short link for a recipe, verifying it
// exists first.
func (s *Service) ShortLink(ctx context.Context, recipeID int64) (*ShortLinkResponse, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, recipeID).Scan(&exists)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check recipe", err)
	}
	if !exists {
		return nil, apperror.NewNotFoundError("recipe not found", err)
	}
	return &ShortLinkResponse{ShortLink: BuildShortLink(s.baseURL, recipeID)}, nil
}

// BuildShortLink renders the canonical short link for a recipe id.
func BuildShortLink(baseURL string, recipeID int64) string {
	return fmt.Sprintf("%s/recipes/%d/", baseURL, recipeID)
}
