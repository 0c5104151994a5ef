package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/models"
)

// itemSummary is what the collapsed menu-item row shows before its dialog opens.
type itemSummary struct {
	Name      string
	Allergens *string
}

// parseItemSummary reads the name and allergen line out of a menu item's
// outer HTML. The name is a fallback; the crawler prefers the rendered text.
func parseItemSummary(html string, sel config.Selectors) (itemSummary, error) {
	s := itemSummary{Name: models.UnknownName}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return s, err
	}

	if name := strings.TrimSpace(doc.Find(sel.FoodName).First().Text()); name != "" {
		s.Name = name
	}
	if a := doc.Find(sel.Allergens).First(); a.Length() > 0 {
		s.Allergens = models.Optional(strings.TrimSpace(a.Text()))
	}
	return s, nil
}
