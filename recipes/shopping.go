package recipes

import (
	"fmt"
	"strings"
)

// ShoppingItem is one aggregated row of the shopping list: the same
// ingredient across every basket recipe, amounts summed per (name, unit).
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// RenderShoppingList renders the plain-text download. Items arrive already
// sorted by name.
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Shopping list\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s - %d %s\n", item.Name, item.Total, item.MeasurementUnit)
	}
	fmt.Fprintf(&b, "\nTotal items: %d\n", len(items))
	return b.String()
}
