package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredientsCSV(t *testing.T) {
	t.Run("parses name and unit per row", func(t *testing.T) {
		in := "flour,g\nmilk, ml\negg,pc\n"
		entries, err := ParseIngredientsCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, Ingredient{Name: "flour", MeasurementUnit: "g"}, entries[0])
		assert.Equal(t, "ml", entries[1].MeasurementUnit, "fields are trimmed")
	})

	t.Run("rejects rows with the wrong field count", func(t *testing.T) {
		_, err := ParseIngredientsCSV(strings.NewReader("flour,g\nonly-one-field\n"))
		require.Error(t, err)
	})

	t.Run("empty input yields no entries", func(t *testing.T) {
		entries, err := ParseIngredientsCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("quoted names may contain commas", func(t *testing.T) {
		entries, err := ParseIngredientsCSV(strings.NewReader("\"salt, coarse\",g\n"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "salt, coarse", entries[0].Name)
	})
}

func TestParseIngredientsJSON(t *testing.T) {
	t.Run("parses an object array", func(t *testing.T) {
		in := `[{"name": "flour", "measurement_unit": "g"}, {"name": "milk", "measurement_unit": "ml"}]`
		entries, err := ParseIngredientsJSON(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, Ingredient{Name: "milk", MeasurementUnit: "ml"}, entries[1])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := ParseIngredientsJSON(strings.NewReader(`{"name": "flour"}`))
		require.Error(t, err)
	})
}

func TestLoadIngredientsFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("dispatches on extension", func(t *testing.T) {
		csvPath := filepath.Join(dir, "ingredients.csv")
		require.NoError(t, os.WriteFile(csvPath, []byte("flour,g\n"), 0o644))
		entries, err := LoadIngredientsFile(csvPath)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		jsonPath := filepath.Join(dir, "ingredients.json")
		require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"name":"milk","measurement_unit":"ml"}]`), 0o644))
		entries, err = LoadIngredientsFile(jsonPath)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		path := filepath.Join(dir, "ingredients.yaml")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		_, err := LoadIngredientsFile(path)
		require.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadIngredientsFile(filepath.Join(dir, "absent.csv"))
		require.Error(t, err)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% cocoa\_mix\\x`, escapeLike(`100% cocoa_mix\x`))
}
