package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/auth"
	"github.com/user/foodgram-go/db"
	"github.com/user/foodgram-go/media"
	"github.com/user/foodgram-go/membership"
	"github.com/user/foodgram-go/pagination"
)

const pgUniqueViolation = "23505"

// followEdge is the (user, author) membership relation behind subscribe and
// unsubscribe.
var followEdge = membership.Edge{
	Table:      "follows",
	OwnerCol:   "user_id",
	TargetCol:  "author_id",
	AlreadyMsg: "already subscribed to this author",
	MissingMsg: "subscription not found",
}

// Service implements account and subscription operations. It depends on
// db.Querier rather than the pool so tests can substitute a fake.
type Service struct {
	db    db.Querier
	media *media.Store
}

// NewService creates a users Service.
func NewService(querier db.Querier, mediaStore *media.Store) *Service {
	return &Service{db: querier, media: mediaStore}
}

// Register creates an account. The stored username is derived from the
// email; the supplied one is only validated against the username alphabet.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	email := NormalizeEmail(req.Email)
	username := DeriveUsername(req.Email)

	var id int64
	query := `INSERT INTO users (email, username, first_name, last_name, password)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err = s.db.QueryRow(ctx, query, email, username, req.FirstName, req.LastName, string(hashed)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Username derives from the email, so either constraint means
			// the same thing to the caller.
			return nil, apperror.NewValidationError("email: user with this email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	return &RegisterResponse{
		ID:        id,
		Email:     email,
		Username:  username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, nil
}

// GetByID returns the user read model for id, with is_subscribed computed
// relative to viewerID (0 for anonymous requests).
func (s *Service) GetByID(ctx context.Context, viewerID, id int64) (*UserResponse, error) {
	query := `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.avatar,
		       EXISTS (SELECT 1 FROM follows f WHERE f.user_id = $1 AND f.author_id = u.id)
		FROM users u
		WHERE u.id = $2`

	var resp UserResponse
	var avatar sql.NullString
	err := s.db.QueryRow(ctx, query, viewerID, id).Scan(
		&resp.ID, &resp.Email, &resp.Username, &resp.FirstName, &resp.LastName,
		&avatar, &resp.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	if avatar.Valid {
		resp.Avatar = s.media.URL(avatar.String)
	}
	return &resp, nil
}

// List returns one page of users ordered by id, plus the total count.
func (s *Service) List(ctx context.Context, viewerID int64, p pagination.Params) ([]UserResponse, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count users", err)
	}

	query := `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.avatar,
		       EXISTS (SELECT 1 FROM follows f WHERE f.user_id = $1 AND f.author_id = u.id)
		FROM users u
		ORDER BY u.id
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, viewerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	results := make([]UserResponse, 0, p.Limit)
	for rows.Next() {
		var resp UserResponse
		var avatar sql.NullString
		if err := rows.Scan(&resp.ID, &resp.Email, &resp.Username, &resp.FirstName,
			&resp.LastName, &avatar, &resp.IsSubscribed); err != nil {
			return nil, 0, apperror.NewDatabaseError("failed to scan user row", err)
		}
		if avatar.Valid {
			resp.Avatar = s.media.URL(avatar.String)
		}
		results = append(results, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to read user rows", err)
	}
	return results, total, nil
}

// UpdateAvatar stores a new avatar image and replaces the previous one.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, dataURI string) (*AvatarResponse, error) {
	if dataURI == "" {
		return nil, apperror.NewValidationError("avatar: this field is required", nil)
	}

	var oldAvatar sql.NullString
	err := s.db.QueryRow(ctx, `SELECT avatar FROM users WHERE id = $1`, userID).Scan(&oldAvatar)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load user", err)
	}

	newPath, err := s.media.SaveDataURI(dataURI, media.AvatarDir)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(ctx, `UPDATE users SET avatar = $1 WHERE id = $2`, newPath, userID); err != nil {
		// The file is orphaned if the row update failed; remove it.
		_ = s.media.Remove(newPath)
		return nil, apperror.NewDatabaseError("failed to update avatar", err)
	}
	if oldAvatar.Valid {
		_ = s.media.Remove(oldAvatar.String)
	}

	return &AvatarResponse{Avatar: s.media.URL(newPath)}, nil
}

// DeleteAvatar clears the avatar and removes the stored file.
func (s *Service) DeleteAvatar(ctx context.Context, userID int64) error {
	var oldAvatar sql.NullString
	err := s.db.QueryRow(ctx, `SELECT avatar FROM users WHERE id = $1`, userID).Scan(&oldAvatar)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("user not found", nil)
		}
		return apperror.NewDatabaseError("failed to load user", err)
	}
	if _, err := s.db.Exec(ctx, `UPDATE users SET avatar = NULL WHERE id = $1`, userID); err != nil {
		return apperror.NewDatabaseError("failed to remove avatar", err)
	}
	if oldAvatar.Valid {
		_ = s.media.Remove(oldAvatar.String)
	}
	return nil
}

// SetPassword verifies the current password and stores a new hash.
func (s *Service) SetPassword(ctx context.Context, userID int64, req SetPasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperror.NewValidationError("current_password and new_password are required", nil)
	}
	if len(req.NewPassword) < 8 {
		return apperror.NewValidationError("new_password: ensure this field has at least 8 characters", nil)
	}

	var currentHash string
	err := s.db.QueryRow(ctx, `SELECT password FROM users WHERE id = $1`, userID).Scan(&currentHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("user not found", nil)
		}
		return apperror.NewDatabaseError("failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)) != nil {
		return apperror.NewValidationError("current_password: wrong password", nil)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}
	if _, err := s.db.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, string(newHash), userID); err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	return nil
}

// Subscribe creates a follow edge from userID to authorID and returns the
// annotated author.
func (s *Service) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*SubscriptionResponse, error) {
	if userID == authorID {
		return nil, apperror.NewStateConflictError("cannot subscribe to yourself", nil)
	}
	// 404 for an unknown author, before the edge insert can fail on the
	// foreign key.
	if _, err := s.GetByID(ctx, userID, authorID); err != nil {
		return nil, err
	}

	if err := followEdge.Add(ctx, s.db, userID, authorID); err != nil {
		return nil, err
	}
	return s.subscriptionFor(ctx, userID, authorID, recipesLimit)
}

// Unsubscribe removes the follow edge from userID to authorID. An unknown
// author is a 404; a missing edge is a state conflict.
func (s *Service) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.GetByID(ctx, userID, authorID); err != nil {
		return err
	}
	exists, err := followEdge.Exists(ctx, s.db, userID, authorID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewStateConflictError(followEdge.MissingMsg, nil)
	}
	return followEdge.Remove(ctx, s.db, userID, authorID)
}

// Subscriptions returns one page of the authors userID follows, newest
// follow first, each with a recipe preview capped at recipesLimit
// (0 = no cap).
func (s *Service) Subscriptions(ctx context.Context, userID int64, p pagination.Params, recipesLimit int) ([]SubscriptionResponse, int, error) {
	var total int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM follows WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count subscriptions", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT f.author_id FROM follows f
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC, f.id DESC
		 LIMIT $2 OFFSET $3`,
		userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list subscriptions", err)
	}
	defer rows.Close()

	var authorIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, 0, apperror.NewDatabaseError("failed to scan subscription row", err)
		}
		authorIDs = append(authorIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to read subscription rows", err)
	}

	results := make([]SubscriptionResponse, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		sub, err := s.subscriptionFor(ctx, userID, authorID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *sub)
	}
	return results, total, nil
}

// subscriptionFor assembles the subscription entry for one author.
func (s *Service) subscriptionFor(ctx context.Context, viewerID, authorID int64, recipesLimit int) (*SubscriptionResponse, error) {
	user, err := s.GetByID(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}

	var count int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM recipes WHERE author_id = $1`, authorID).Scan(&count); err != nil {
		return nil, apperror.NewDatabaseError("failed to count author recipes", err)
	}

	query := `SELECT id, name, image, cooking_time FROM recipes
	          WHERE author_id = $1 ORDER BY pub_date DESC`
	args := []any{authorID}
	if recipesLimit > 0 {
		query += ` LIMIT $2`
		args = append(args, recipesLimit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load author recipes", err)
	}
	defer rows.Close()

	recipes := make([]RecipeShort, 0, recipesLimit)
	for rows.Next() {
		var r RecipeShort
		var image string
		if err := rows.Scan(&r.ID, &r.Name, &image, &r.CookingTime); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan recipe row", err)
		}
		r.Image = s.media.URL(image)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read recipe rows", err)
	}

	return &SubscriptionResponse{
		UserResponse: *user,
		Recipes:      recipes,
		RecipesCount: count,
	}, nil
}

// GetAccount loads the full account row, including the password hash and
// admin flag. Internal use only (authorization checks); never serialized.
func (s *Service) GetAccount(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User
	var avatar sql.NullString
	query := `SELECT id, email, username, first_name, last_name, avatar, password, is_admin, created_at
	          FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&avatar, &user.HashedPassword, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load user", err)
	}
	if avatar.Valid {
		user.Avatar = avatar.String
	}
	return &user, nil
}
