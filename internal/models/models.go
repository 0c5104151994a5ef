package models

// UnknownName is recorded when an item's name cannot be read.
const UnknownName = "Unknown"

// MenuItem holds the scraped data for a single menu offering.
// Absent values are nil; numeric fields keep the label's own formatting ("12.5g").
type MenuItem struct {
	Location         string  `json:"location"`
	Section          string  `json:"section"`
	Name             string  `json:"name"`
	ServingSize      *string `json:"serving_size"`
	Calories         *string `json:"calories"`
	TotalFat         *string `json:"total_fat"`
	Protein          *string `json:"protein"`
	Carbs            *string `json:"carbs"`
	Sugars           *string `json:"sugars"`
	Ingredients      *string `json:"ingredients"`
	RawNutritionText *string `json:"raw_nutrition_text"`

	// Allergens is the raw allergen line from the item summary. Only the
	// sqlite snapshot keeps it.
	Allergens *string `json:"-"`
}

// Value dereferences an optional field, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Optional returns nil for the empty string.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
