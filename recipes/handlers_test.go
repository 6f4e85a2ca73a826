package recipes

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilters(t *testing.T) {
	t.Run("defaults to no filters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/recipes/", nil)
		f := parseFilters(r)
		assert.Zero(t, f.AuthorID)
		assert.Empty(t, f.TagSlugs)
		assert.False(t, f.IsFavorited)
		assert.False(t, f.IsInShoppingCart)
	})

	t.Run("reads author and repeated tags", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/recipes/?author=7&tags=breakfast&tags=dinner", nil)
		f := parseFilters(r)
		assert.Equal(t, int64(7), f.AuthorID)
		assert.Equal(t, []string{"breakfast", "dinner"}, f.TagSlugs)
	})

	t.Run("boolean flags accept 1 and true", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/recipes/?is_favorited=1&is_in_shopping_cart=true", nil)
		f := parseFilters(r)
		assert.True(t, f.IsFavorited)
		assert.True(t, f.IsInShoppingCart)
	})

	t.Run("garbage values are ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/recipes/?author=abc&is_favorited=maybe", nil)
		f := parseFilters(r)
		assert.Zero(t, f.AuthorID)
		assert.False(t, f.IsFavorited)
	})
}
