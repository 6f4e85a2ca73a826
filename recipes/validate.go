package recipes

import (
	"strings"

	"github.com/user/foodgram-go/apperror"
)

const maxNameLength = 256

// ValidateWrite checks a recipe write payload field by field. Ingredient
// and tag existence is verified later against the database; requireImage
// distinguishes create (image mandatory) from update.
func ValidateWrite(req WriteRequest, requireImage bool) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.NewValidationError("name: this field is required", nil)
	}
	if len(req.Name) > maxNameLength {
		return apperror.NewValidationError("name: ensure this field has no more than 256 characters", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperror.NewValidationError("text: this field is required", nil)
	}
	if req.CookingTime < 1 {
		return apperror.NewValidationError("cooking_time: ensure this value is greater than or equal to 1", nil)
	}
	if requireImage && req.Image == "" {
		return apperror.NewValidationError("image: this field is required", nil)
	}

	if len(req.Tags) == 0 {
		return apperror.NewValidationError("tags: this list may not be empty", nil)
	}
	seenTags := make(map[int64]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return apperror.NewValidationError("tags: tags must be unique", nil)
		}
		seenTags[id] = struct{}{}
	}

	if len(req.Ingredients) == 0 {
		return apperror.NewValidationError("ingredients: this list may not be empty", nil)
	}
	seenIngredients := make(map[int64]struct{}, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return apperror.NewValidationError("ingredients: ingredients must be unique", nil)
		}
		seenIngredients[item.ID] = struct{}{}
		if item.Amount < 1 {
			return apperror.NewValidationError("ingredients: amount must be greater than or equal to 1", nil)
		}
	}
	return nil
}
