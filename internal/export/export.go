// Package export writes the crawl result as the CSV and JSON datasets served
// from public/data.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mspro-labs/menu-buddy/internal/models"
)

const (
	CSVFile  = "all_locations_menus.csv"
	JSONFile = "all_locations_menus.json"
)

// Header is the fixed column order of the tabular dataset.
var Header = []string{"location", "section", "name", "serving_size", "calories", "total_fat", "protein", "carbs", "sugars", "ingredients", "raw_nutrition_text"}

// Paths are the files written by Write.
type Paths struct {
	CSV  string
	JSON string
}

// Write creates dir if needed and writes both datasets into it.
func Write(dir string, items []models.MenuItem) (Paths, error) {
	p := Paths{CSV: filepath.Join(dir, CSVFile), JSON: filepath.Join(dir, JSONFile)}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return p, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := writeFile(p.CSV, func(w io.Writer) error { return WriteCSV(w, items) }); err != nil {
		return p, fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := writeFile(p.JSON, func(w io.Writer) error { return WriteJSON(w, items) }); err != nil {
		return p, fmt.Errorf("failed to write JSON: %w", err)
	}
	return p, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes the header and one row per item; absent fields are empty.
func WriteCSV(w io.Writer, items []models.MenuItem) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, it := range items {
		row := []string{
			it.Location,
			it.Section,
			it.Name,
			models.Value(it.ServingSize),
			models.Value(it.Calories),
			models.Value(it.TotalFat),
			models.Value(it.Protein),
			models.Value(it.Carbs),
			models.Value(it.Sugars),
			models.Value(it.Ingredients),
			models.Value(it.RawNutritionText),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes an indented array; absent fields are null and non-ASCII
// text is written as-is.
func WriteJSON(w io.Writer, items []models.MenuItem) error {
	if items == nil {
		items = []models.MenuItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// ReadCSV loads a dataset written by WriteCSV. Empty cells come back absent.
func ReadCSV(path string) ([]models.MenuItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}

	items := make([]models.MenuItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		items = append(items, models.MenuItem{
			Location:         row[0],
			Section:          row[1],
			Name:             row[2],
			ServingSize:      models.Optional(row[3]),
			Calories:         models.Optional(row[4]),
			TotalFat:         models.Optional(row[5]),
			Protein:          models.Optional(row[6]),
			Carbs:            models.Optional(row[7]),
			Sugars:           models.Optional(row[8]),
			Ingredients:      models.Optional(row[9]),
			RawNutritionText: models.Optional(row[10]),
		})
	}
	return items, nil
}
