// Package apperror defines the application's error taxonomy and its mapping
// onto HTTP status codes. Services return *AppError values; handlers pass
// them to a shared writer so every failure reaches the client as the same
// JSON shape: {"detail": "..."}.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database.
	DatabaseError
	// ConfigError represents an error related to application configuration.
	ConfigError
	// AuthError represents an authentication failure (missing or invalid token).
	AuthError
	// ForbiddenError represents an authorization failure (valid user, no permission).
	ForbiddenError
	// NotFoundError represents a missing resource.
	NotFoundError
	// ValidationError represents an invalid request payload (field-scoped).
	ValidationError
	// BadRequestError represents a generic malformed request.
	BadRequestError
	// StateConflictError represents a toggle applied against existing state:
	// favoriting an already-favorited recipe, unsubscribing from an author
	// the user does not follow, and so on. Reported as 400, not 409 — the
	// request is well-formed, the current state rejects it.
	StateConflictError
	// ConflictError represents a uniqueness conflict on a stored resource.
	ConflictError
	// InternalError represents an unexpected server-side failure.
	InternalError
	// MigrationError represents a failure while running schema migrations.
	MigrationError
)

// AppError carries a classified, user-facing message plus an optional
// underlying cause for logs.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError, StateConflictError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case DatabaseError, ConfigError, InternalError, MigrationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError of an arbitrary type.
func New(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

// NewDatabaseError creates a DatabaseError.
func NewDatabaseError(message string, underlying error) *AppError {
	return New(DatabaseError, message, underlying)
}

// NewConfigError creates a ConfigError.
func NewConfigError(message string, underlying error) *AppError {
	return New(ConfigError, message, underlying)
}

// NewAuthError creates an AuthError (401).
func NewAuthError(message string, underlying error) *AppError {
	return New(AuthError, message, underlying)
}

// NewForbiddenError creates a ForbiddenError (403).
func NewForbiddenError(message string, underlying error) *AppError {
	return New(ForbiddenError, message, underlying)
}

// NewNotFoundError creates a NotFoundError (404).
func NewNotFoundError(message string, underlying error) *AppError {
	return New(NotFoundError, message, underlying)
}

// NewValidationError creates a ValidationError (400).
func NewValidationError(message string, underlying error) *AppError {
	return New(ValidationError, message, underlying)
}

// NewBadRequestError creates a BadRequestError (400).
func NewBadRequestError(message string, underlying error) *AppError {
	return New(BadRequestError, message, underlying)
}

// NewStateConflictError creates a StateConflictError (400).
func NewStateConflictError(message string, underlying error) *AppError {
	return New(StateConflictError, message, underlying)
}

// NewConflictError creates a ConflictError (409).
func NewConflictError(message string, underlying error) *AppError {
	return New(ConflictError, message, underlying)
}

// NewInternalError creates an InternalError (500).
func NewInternalError(message string, underlying error) *AppError {
	return New(InternalError, message, underlying)
}

// NewMigrationError creates a MigrationError.
func NewMigrationError(message string, underlying error) *AppError {
	return New(MigrationError, message, underlying)
}

// ErrorResponse is the JSON body sent for every failed request. The field
// name matches the original API's "detail" key.
type ErrorResponse struct {
	Detail string `json:"detail" example:"a description of the error"`
}

// ToResponse converts the error to its wire representation. Only the
// user-facing message is exposed; the underlying cause stays in logs.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Detail: e.Message}
}

// FromError attempts to interpret err as an *AppError.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsForbidden reports whether err is a ForbiddenError.
func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ForbiddenError
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsStateConflict reports whether err is a StateConflictError.
func IsStateConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == StateConflictError
}
