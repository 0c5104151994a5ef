package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mspro-labs/menu-buddy/internal/models"
)

func ptr(s string) *string { return &s }

func sampleItems() []models.MenuItem {
	return []models.MenuItem{
		{
			Location: "Scott Traditions", Section: "Breakfast", Name: "Pancakes",
			ServingSize: ptr("1 each"), Calories: ptr("250"), TotalFat: ptr("12.5g"),
			Protein: ptr("9g"), Carbs: ptr("30g"), Sugars: ptr("4.5g"),
			Ingredients:      ptr("flour, milk,\n\"farm\" eggs"),
			RawNutritionText: ptr("Calories 250\nIngredients: flour, milk,\n\"farm\" eggs"),
		},
		{
			Location: "Scott Traditions", Section: "Breakfast", Name: "Black Coffee",
			Calories: ptr("5"), RawNutritionText: ptr("Calories 5"),
		},
		{
			Location: "Curl Market", Section: "Unknown Section", Name: "Jalapeño Crème Bagel",
			Calories: ptr("310"), Ingredients: ptr("jalapeño, crème <fraîche> & salt"),
			Allergens: ptr("Milk"),
		},
	}
}

func TestWriteDatasets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "data")
	items := sampleItems()

	paths, err := Write(dir, items)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, CSVFile), paths.CSV)

	// CSV: header + 3 rows, missing ingredients empty
	f, err := os.Open(paths.CSV)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, Header, rows[0])
	require.Equal(t, "", rows[2][9])
	require.Equal(t, "Black Coffee", rows[2][2])
	require.Equal(t, "flour, milk,\n\"farm\" eggs", rows[1][9])

	// JSON: 3 objects, null for the missing field, text unescaped
	data, err := os.ReadFile(paths.JSON)
	require.NoError(t, err)
	var objs []map[string]any
	require.NoError(t, json.Unmarshal(data, &objs))
	require.Len(t, objs, 3)
	v, ok := objs[1]["ingredients"]
	require.True(t, ok)
	require.Nil(t, v)
	require.Len(t, objs[0], len(Header))
	_, hasAllergens := objs[2]["allergens"]
	require.False(t, hasAllergens)
	require.True(t, strings.Contains(string(data), "jalapeño, crème <fraîche> & salt"))
}

func TestWriteJSONEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteJSON(&sb, nil))
	require.Equal(t, "[]\n", sb.String())
}

func TestReadCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	items := sampleItems()
	paths, err := Write(dir, items)
	require.NoError(t, err)

	got, err := ReadCSV(paths.CSV)
	require.NoError(t, err)

	// allergens are not part of the tabular dataset
	items[2].Allergens = nil
	if diff := cmp.Diff(items, got); diff != "" {
		t.Errorf("ReadCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), CSVFile))
	require.ErrorIs(t, err, os.ErrNotExist)
}
