package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/foodgram-go/apperror"
)

// ingredientFile mirrors the JSON seed format.
type ingredientFile struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ParseIngredientsCSV reads `name,measurement_unit` rows. No header line is
// expected; blank lines are skipped.
func ParseIngredientsCSV(r io.Reader) ([]Ingredient, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	entries := []Ingredient{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.NewValidationError("malformed CSV row", err)
		}
		entries = append(entries, Ingredient{
			Name:            strings.TrimSpace(record[0]),
			MeasurementUnit: strings.TrimSpace(record[1]),
		})
	}
	return entries, nil
}

// ParseIngredientsJSON reads a JSON array of {name, measurement_unit}
// objects.
func ParseIngredientsJSON(r io.Reader) ([]Ingredient, error) {
	var raw []ingredientFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, apperror.NewValidationError("malformed JSON ingredients file", err)
	}
	entries := make([]Ingredient, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, Ingredient{
			Name:            strings.TrimSpace(e.Name),
			MeasurementUnit: strings.TrimSpace(e.MeasurementUnit),
		})
	}
	return entries, nil
}

// LoadIngredientsFile parses a seed file by extension (.csv or .json).
func LoadIngredientsFile(path string) ([]Ingredient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.NewValidationError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseIngredientsCSV(f)
	case ".json":
		return ParseIngredientsJSON(f)
	default:
		return nil, apperror.NewValidationError("unsupported ingredients file format, use .csv or .json", nil)
	}
}
