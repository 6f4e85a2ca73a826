package users

import (
	"regexp"
	"strings"

	"github.com/user/foodgram-go/apperror"
)

const maxFieldLength = 150

// usernamePattern is the accepted username alphabet: word characters plus
// @ . + -.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// NormalizeEmail lowercases and trims an email for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveUsername returns the stored username for an account. Usernames are
// derived from the email on save; the client-supplied username is validated
// but not persisted verbatim.
func DeriveUsername(email string) string {
	return NormalizeEmail(email)
}

// ValidateRegistration checks a registration payload field by field. The
// first violated rule is reported; uniqueness is left to the database.
func ValidateRegistration(req RegisterRequest) error {
	email := NormalizeEmail(req.Email)
	switch {
	case email == "":
		return apperror.NewValidationError("email: this field is required", nil)
	case len(email) > 256:
		return apperror.NewValidationError("email: ensure this field has no more than 256 characters", nil)
	case !strings.Contains(email, "@"):
		return apperror.NewValidationError("email: enter a valid email address", nil)
	}

	switch {
	case req.Username == "":
		return apperror.NewValidationError("username: this field is required", nil)
	case len(req.Username) > maxFieldLength:
		return apperror.NewValidationError("username: ensure this field has no more than 150 characters", nil)
	case !usernamePattern.MatchString(req.Username):
		return apperror.NewValidationError("username: only letters, digits and @/./+/-/_ are allowed", nil)
	}

	if req.FirstName == "" {
		return apperror.NewValidationError("first_name: this field is required", nil)
	}
	if len(req.FirstName) > maxFieldLength {
		return apperror.NewValidationError("first_name: ensure this field has no more than 150 characters", nil)
	}
	if req.LastName == "" {
		return apperror.NewValidationError("last_name: this field is required", nil)
	}
	if len(req.LastName) > maxFieldLength {
		return apperror.NewValidationError("last_name: ensure this field has no more than 150 characters", nil)
	}

	if req.Password == "" {
		return apperror.NewValidationError("password: this field is required", nil)
	}
	if len(req.Password) < 8 {
		return apperror.NewValidationError("password: ensure this field has at least 8 characters", nil)
	}
	return nil
}
