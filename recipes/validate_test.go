package recipes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWrite() WriteRequest {
	return WriteRequest{
		Ingredients: []LineItemRequest{{ID: 1, Amount: 200}, {ID: 2, Amount: 3}},
		Tags:        []int64{1, 2},
		Image:       "data:image/png;base64,aWkK",
		Name:        "Borscht",
		Text:        "Chop, simmer, serve.",
		CookingTime: 90,
	}
}

func TestValidateWrite(t *testing.T) {
	t.Run("accepts a well-formed payload", func(t *testing.T) {
		require.NoError(t, ValidateWrite(validWrite(), true))
	})

	t.Run("image is optional on update", func(t *testing.T) {
		req := validWrite()
		req.Image = ""
		require.NoError(t, ValidateWrite(req, false))
		require.Error(t, ValidateWrite(req, true))
	})

	tests := []struct {
		name    string
		mutate  func(*WriteRequest)
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(r *WriteRequest) { r.Name = "   " },
			message: "name: this field is required",
		},
		{
			name:    "name too long",
			mutate:  func(r *WriteRequest) { r.Name = strings.Repeat("x", 257) },
			message: "name: ensure this field has no more than 256 characters",
		},
		{
			name:    "missing text",
			mutate:  func(r *WriteRequest) { r.Text = "" },
			message: "text: this field is required",
		},
		{
			name:    "zero cooking time",
			mutate:  func(r *WriteRequest) { r.CookingTime = 0 },
			message: "cooking_time: ensure this value is greater than or equal to 1",
		},
		{
			name:    "no tags",
			mutate:  func(r *WriteRequest) { r.Tags = nil },
			message: "tags: this list may not be empty",
		},
		{
			name:    "duplicate tags",
			mutate:  func(r *WriteRequest) { r.Tags = []int64{1, 1} },
			message: "tags: tags must be unique",
		},
		{
			name:    "no ingredients",
			mutate:  func(r *WriteRequest) { r.Ingredients = []LineItemRequest{} },
			message: "ingredients: this list may not be empty",
		},
		{
			name: "duplicate ingredients",
			mutate: func(r *WriteRequest) {
				r.Ingredients = []LineItemRequest{{ID: 1, Amount: 2}, {ID: 1, Amount: 5}}
			},
			message: "ingredients: ingredients must be unique",
		},
		{
			name: "zero amount",
			mutate: func(r *WriteRequest) {
				r.Ingredients = []LineItemRequest{{ID: 1, Amount: 0}}
			},
			message: "ingredients: amount must be greater than or equal to 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validWrite()
			tt.mutate(&req)
			err := ValidateWrite(req, true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
