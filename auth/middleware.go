package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/config"
)

// ContextKey is a dedicated type for context keys so values set here cannot
// collide with other packages.
type ContextKey string

// UserIDKey is the context key the middleware stores the authenticated
// user's ID under.
const UserIDKey ContextKey = "userID"

// RequireUser returns middleware that rejects requests without a valid
// access token (401) and otherwise stores the user ID in the context.
func RequireUser(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := userIDFromRequest(r, cfg)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MaybeUser returns middleware for public endpoints whose output is
// personalized when a requester is known (is_favorited, is_subscribed,
// is_in_shopping_cart flags). A valid token annotates the context; a missing
// or invalid one leaves the request anonymous instead of rejecting it.
func MaybeUser(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := userIDFromRequest(r, cfg); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// userIDFromRequest extracts and validates the bearer token, returning the
// user ID carried in its claims.
func userIDFromRequest(r *http.Request, cfg *config.AuthConfig) (int64, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, apperror.NewAuthError("authorization header is missing", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return 0, apperror.NewAuthError("authorization header format must be Bearer {token}", nil)
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, apperror.NewAuthError("invalid token", err)
	}
	if !token.Valid {
		return 0, apperror.NewAuthError("invalid token", nil)
	}
	// Refresh tokens are not credentials for API calls.
	if claims.TokenType != tokenTypeAccess {
		return 0, apperror.NewAuthError("invalid token type", nil)
	}
	if claims.UserID == 0 {
		return 0, apperror.NewAuthError("invalid token: user_id claim is missing", nil)
	}
	return claims.UserID, nil
}

// UserIDFromContext retrieves the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
