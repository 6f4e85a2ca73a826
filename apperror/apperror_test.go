package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		want int
	}{
		{"auth", NewAuthError("no token", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not the author", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("recipe not found", nil), http.StatusNotFound},
		{"validation", NewValidationError("tags: this list may not be empty", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("invalid request body", nil), http.StatusBadRequest},
		{"state conflict maps to 400", NewStateConflictError("recipe is already in favorites", nil), http.StatusBadRequest},
		{"conflict", NewConflictError("email already exists", nil), http.StatusConflict},
		{"database", NewDatabaseError("query failed", errors.New("boom")), http.StatusInternalServerError},
		{"internal", NewInternalError("unexpected", nil), http.StatusInternalServerError},
		{"unknown", New(UnknownError, "what", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.StatusCode())
		})
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to load recipe", cause)
	assert.Equal(t, "failed to load recipe: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := NewNotFoundError("tag not found", nil)
	assert.Equal(t, "tag not found", bare.Error())
}

func TestToResponseHidesCause(t *testing.T) {
	err := NewInternalError("something went wrong", errors.New("secret detail"))
	resp := err.ToResponse()
	assert.Equal(t, "something went wrong", resp.Detail)
	assert.NotContains(t, resp.Detail, "secret")
}

func TestFromErrorUnwrapsChain(t *testing.T) {
	inner := NewStateConflictError("already subscribed", nil)
	wrapped := fmt.Errorf("subscribe: %w", inner)

	appErr, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, StateConflictError, appErr.Type)

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("", nil)))
	assert.True(t, IsAuthError(NewAuthError("", nil)))
	assert.True(t, IsForbidden(NewForbiddenError("", nil)))
	assert.True(t, IsValidationError(NewValidationError("", nil)))
	assert.True(t, IsStateConflict(NewStateConflictError("", nil)))

	assert.False(t, IsNotFound(NewAuthError("", nil)))
	assert.False(t, IsStateConflict(fmt.Errorf("wrapped: %w", NewNotFoundError("", nil))))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", NewNotFoundError("", nil))))
}
