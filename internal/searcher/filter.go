package searcher

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mspro-labs/menu-buddy/internal/models"
)

// keyword narrows or reorders items when its phrase appears in a query.
type keyword struct {
	phrase string
	apply  func([]models.MenuItem) []models.MenuItem
}

// keywords run in order; every phrase present in the query applies to the
// result of the ones before it.
var keywords = []keyword{
	{"high protein", func(items []models.MenuItem) []models.MenuItem {
		return keep(items, func(it models.MenuItem) bool { return atLeast(it.Protein, 20) })
	}},
	{"low calorie", func(items []models.MenuItem) []models.MenuItem {
		return keep(items, func(it models.MenuItem) bool { return below(it.Calories, 300) })
	}},
	{"low sugar", func(items []models.MenuItem) []models.MenuItem {
		return keep(items, func(it models.MenuItem) bool { return below(it.Sugars, 10) })
	}},
	{"protein sort", func(items []models.MenuItem) []models.MenuItem {
		return sortBy(items, func(it models.MenuItem) *string { return it.Protein }, true)
	}},
	{"calories sort", func(items []models.MenuItem) []models.MenuItem {
		return sortBy(items, func(it models.MenuItem) *string { return it.Calories }, true)
	}},
}

// Filter applies the menu page's quick queries to items. A query with none of
// the keywords falls back to a case-insensitive name match; an empty query
// returns items as-is.
func Filter(items []models.MenuItem, query string) []models.MenuItem {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return items
	}

	out := items
	matched := false
	for _, k := range keywords {
		if strings.Contains(q, k.phrase) {
			out = k.apply(out)
			matched = true
		}
	}
	if matched {
		return out
	}
	return keep(items, func(it models.MenuItem) bool {
		return strings.Contains(strings.ToLower(it.Name), q)
	})
}

var reLeadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// leadingNumber reads the number a label value starts with ("12.5g" -> 12.5).
func leadingNumber(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	m := reLeadingNumber.FindStringSubmatch(*s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	return v, err == nil
}

func atLeast(s *string, limit float64) bool {
	v, ok := leadingNumber(s)
	return ok && v >= limit
}

func below(s *string, limit float64) bool {
	v, ok := leadingNumber(s)
	return ok && v < limit
}

func keep(items []models.MenuItem, pred func(models.MenuItem) bool) []models.MenuItem {
	out := []models.MenuItem{}
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// sortBy returns a sorted copy; items without a readable value go last.
func sortBy(items []models.MenuItem, field func(models.MenuItem) *string, desc bool) []models.MenuItem {
	out := append([]models.MenuItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := leadingNumber(field(out[i]))
		b, bok := leadingNumber(field(out[j]))
		if aok != bok {
			return aok
		}
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}
