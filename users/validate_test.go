package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Email:     "chef@example.com",
		Username:  "chef",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "s3cret-pass",
	}
}

func TestValidateRegistration(t *testing.T) {
	t.Run("accepts a well-formed request", func(t *testing.T) {
		require.NoError(t, ValidateRegistration(validRegistration()))
	})

	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		message string
	}{
		{
			name:    "missing email",
			mutate:  func(r *RegisterRequest) { r.Email = "" },
			message: "email: this field is required",
		},
		{
			name:    "email without at sign",
			mutate:  func(r *RegisterRequest) { r.Email = "not-an-email" },
			message: "email: enter a valid email address",
		},
		{
			name:    "email too long",
			mutate:  func(r *RegisterRequest) { r.Email = strings.Repeat("a", 255) + "@x.io" },
			message: "email: ensure this field has no more than 256 characters",
		},
		{
			name:    "missing username",
			mutate:  func(r *RegisterRequest) { r.Username = "" },
			message: "username: this field is required",
		},
		{
			name:    "username with forbidden characters",
			mutate:  func(r *RegisterRequest) { r.Username = "chef maestro!" },
			message: "username: only letters, digits and @/./+/-/_ are allowed",
		},
		{
			name:    "missing first name",
			mutate:  func(r *RegisterRequest) { r.FirstName = "" },
			message: "first_name: this field is required",
		},
		{
			name:    "missing last name",
			mutate:  func(r *RegisterRequest) { r.LastName = "" },
			message: "last_name: this field is required",
		},
		{
			name:    "first name too long",
			mutate:  func(r *RegisterRequest) { r.FirstName = strings.Repeat("a", 151) },
			message: "first_name: ensure this field has no more than 150 characters",
		},
		{
			name:    "missing password",
			mutate:  func(r *RegisterRequest) { r.Password = "" },
			message: "password: this field is required",
		},
		{
			name:    "short password",
			mutate:  func(r *RegisterRequest) { r.Password = "short" },
			message: "password: ensure this field has at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			err := ValidateRegistration(req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "chef@example.com", NormalizeEmail("  Chef@Example.COM "))
}

func TestDeriveUsername(t *testing.T) {
	t.Run("username is the normalized email", func(t *testing.T) {
		assert.Equal(t, "chef@example.com", DeriveUsername("Chef@Example.com"))
	})

	t.Run("derived usernames satisfy the username pattern", func(t *testing.T) {
		for _, email := range []string{"a.b@x.io", "a+tag@x.io", "a_b-c@x.io"} {
			assert.True(t, usernamePattern.MatchString(DeriveUsername(email)), email)
		}
	})
}
