// Package nutrition turns the free text of a nutrition panel into typed fields.
package nutrition

import (
	"regexp"
	"strings"
)

// Fields are the values pulled out of a nutrition panel. Each is nil when
// the panel does not contain it.
type Fields struct {
	ServingSize *string
	Calories    *string
	TotalFat    *string
	Protein     *string
	Carbs       *string
	Sugars      *string
	Ingredients *string
}

// Parser extracts Fields from raw panel text.
type Parser interface {
	Parse(raw string) Fields
}

// Rule binds one field to the pattern that finds it. The first capture
// group is the value.
type Rule struct {
	Pattern *regexp.Regexp
	Set     func(f *Fields, v string)
	Trim    bool
}

// RegexParser applies every rule independently; a rule that does not match
// leaves its field nil and never blocks the others.
type RegexParser struct {
	Rules []Rule
}

// ws is whitespace including the non-breaking spaces rendered text carries
// between a label and its value.
const ws = `[\s\p{Zs}]`

// DefaultRules match the US nutrition-facts label as rendered by Nutrislice.
var DefaultRules = []Rule{
	{Pattern: regexp.MustCompile(`Serving Size` + ws + `*([\p{L}\p{N}_. ]+)`), Set: func(f *Fields, v string) { f.ServingSize = &v }},
	{Pattern: regexp.MustCompile(`Calories` + ws + `+(\d+)`), Set: func(f *Fields, v string) { f.Calories = &v }},
	{Pattern: regexp.MustCompile(`Total Fat` + ws + `*([\d.]+g)`), Set: func(f *Fields, v string) { f.TotalFat = &v }},
	{Pattern: regexp.MustCompile(`Protein` + ws + `*([\d.]+g)`), Set: func(f *Fields, v string) { f.Protein = &v }},
	{Pattern: regexp.MustCompile(`Total Carbohydrate` + ws + `*([\d.]+g)`), Set: func(f *Fields, v string) { f.Carbs = &v }},
	{Pattern: regexp.MustCompile(`Total Sugars` + ws + `*([\d.]+g)`), Set: func(f *Fields, v string) { f.Sugars = &v }},
	// ingredients run to the end of the panel, across lines
	{Pattern: regexp.MustCompile(`(?s)Ingredients:` + ws + `*(.+)`), Set: func(f *Fields, v string) { f.Ingredients = &v }, Trim: true},
}

// NewParser returns a RegexParser using DefaultRules.
func NewParser() *RegexParser {
	return &RegexParser{Rules: DefaultRules}
}

func (p *RegexParser) Parse(raw string) Fields {
	var f Fields
	if strings.TrimSpace(raw) == "" {
		return f
	}
	for _, r := range p.Rules {
		m := r.Pattern.FindStringSubmatch(raw)
		if len(m) < 2 {
			continue
		}
		v := m[1]
		if r.Trim {
			v = strings.TrimSpace(v)
		}
		if v == "" {
			continue
		}
		r.Set(&f, v)
	}
	return f
}

var defaultParser = NewParser()

// Parse runs the default rules over raw.
func Parse(raw string) Fields {
	return defaultParser.Parse(raw)
}
