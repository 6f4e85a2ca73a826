// Package recipes implements the recipe lifecycle: authoring, browsing
// with filters, favorites, the shopping basket with its aggregated
// download, and short links.
package recipes

import (
	"github.com/user/foodgram-go/catalog"
	"github.com/user/foodgram-go/users"
)

// LineItemRequest is one ingredient row in a recipe write payload.
type LineItemRequest struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// WriteRequest is the create/update payload. The image is a base64
// data-URI; on update an empty image keeps the stored one.
type WriteRequest struct {
	Ingredients []LineItemRequest `json:"ingredients"`
	Tags        []int64           `json:"tags"`
	Image       string            `json:"image"`
	Name        string            `json:"name"`
	Text        string            `json:"text"`
	CookingTime int               `json:"cooking_time"`
}

// LineItemResponse is an ingredient row in a recipe read model.
type LineItemResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Response is the full recipe read model.
type Response struct {
	ID               int64              `json:"id"`
	Tags             []catalog.Tag      `json:"tags"`
	Author           users.UserResponse `json:"author"`
	Ingredients      []LineItemResponse `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// ShortLinkResponse carries a recipe's short link.
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ListFilters narrows the recipe list. Zero values mean "no filter".
type ListFilters struct {
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}
