// Package catalog serves the reference data recipes are built from: the
// curated tag set and the ingredient dictionary. Both are read-only over
// the API; ingredients are seeded from a file by the load-ingredients
// command.
package catalog

// Tag labels recipes for filtering. The slug is what filter query
// parameters carry.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ingredient is a dictionary entry. Name and unit together are unique.
type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}
