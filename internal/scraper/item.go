package scraper

import (
	"errors"
	"fmt"
	"strings"

	"mspro-labs/menu-buddy/internal/browser"
	"mspro-labs/menu-buddy/internal/models"
)

// errNoNutrition marks an item whose dialog never showed a nutrition panel.
var errNoNutrition = errors.New("no nutrition facts")

// processItem extracts one item and appends its record. Failures stay with
// the item; the section carries on with the next one.
func (c *Crawler) processItem(el browser.Element, location, section string) {
	var rec *models.MenuItem
	err := isolate(func() error {
		var err error
		rec, err = c.extractItem(el, location, section)
		return err
	})

	if rec != nil {
		c.items = append(c.items, *rec)
		c.stats.ItemsRecorded++
		logger.Printf("Item %s added to location %s in section %s", rec.Name, location, section)
	}
	switch {
	case err == nil:
	case errors.Is(err, errNoNutrition):
		logger.Printf("No nutrition facts found in %s / %s; continuing...", location, section)
		c.stats.ItemsSkipped++
	case rec != nil:
		logger.Printf("Item %s recorded but dialog did not close cleanly: %v", rec.Name, err)
	default:
		logger.Printf("Failed to scrape item in %s / %s: %v", location, section, err)
		c.stats.ItemsFailed++
	}
}

// extractItem opens the item's dialog, reads and parses its nutrition panel
// and closes the dialog again on every path. The record is returned even if
// only the final close fails.
func (c *Crawler) extractItem(el browser.Element, location, section string) (rec *models.MenuItem, err error) {
	sel := c.cfg.Selectors

	defer func() {
		if cerr := c.closeDialog(); cerr != nil && err == nil {
			err = fmt.Errorf("close dialog: %w", cerr)
		}
	}()

	if err := el.ScrollIntoView(); err != nil {
		return nil, fmt.Errorf("scroll into view: %w", err)
	}
	if err := el.Click(); err != nil {
		return nil, fmt.Errorf("open dialog: %w", err)
	}

	found, err := waitFor(c.page, sel.NutritionPanel, c.cfg.Timeouts.Nutrition)
	if err != nil {
		return nil, fmt.Errorf("waiting for nutrition panel: %w", err)
	}
	if !found {
		return nil, errNoNutrition
	}

	html, err := el.HTML()
	if err != nil {
		return nil, fmt.Errorf("read item summary: %w", err)
	}
	summary, err := parseItemSummary(html, sel)
	if err != nil {
		return nil, fmt.Errorf("parse item summary: %w", err)
	}
	if name := renderedName(el, sel.FoodName); name != "" {
		summary.Name = name
	}

	raw, err := c.nutritionText()
	if err != nil {
		return nil, err
	}
	fields := c.parser.Parse(models.Value(raw))

	return &models.MenuItem{
		Location:         location,
		Section:          section,
		Name:             summary.Name,
		ServingSize:      fields.ServingSize,
		Calories:         fields.Calories,
		TotalFat:         fields.TotalFat,
		Protein:          fields.Protein,
		Carbs:            fields.Carbs,
		Sugars:           fields.Sugars,
		Ingredients:      fields.Ingredients,
		RawNutritionText: raw,
		Allergens:        summary.Allergens,
	}, nil
}

// renderedName is the item name as displayed, which leaves out hidden
// children the markup still carries. It is "" when the renderer cannot say.
func renderedName(el browser.Element, sel string) string {
	nameEl, ok, err := el.Has(sel)
	if err != nil || !ok {
		return ""
	}
	text, err := nameEl.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (c *Crawler) nutritionText() (*string, error) {
	panel, ok, err := c.page.Has(c.cfg.Selectors.NutritionPanel)
	if err != nil {
		return nil, fmt.Errorf("find nutrition panel: %w", err)
	}
	if !ok {
		return nil, nil
	}
	text, err := panel.Text()
	if err != nil {
		return nil, fmt.Errorf("read nutrition panel: %w", err)
	}
	return models.Optional(strings.TrimSpace(text)), nil
}

// closeDialog clicks the dialog's close control, if there is one, and waits
// for the nutrition panel to detach.
func (c *Crawler) closeDialog() error {
	sel := c.cfg.Selectors
	btn, ok, err := c.page.Has(sel.CloseButton)
	if err != nil || !ok {
		return err
	}
	if err := btn.Click(); err != nil {
		return err
	}
	return c.page.WaitGone(sel.NutritionPanel, c.cfg.Timeouts.DialogClose)
}
