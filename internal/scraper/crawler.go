package scraper

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"

	"mspro-labs/menu-buddy/internal/browser"
	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/models"
	"mspro-labs/menu-buddy/internal/nutrition"
)

// Crawler walks locations -> sections -> items on a single page, strictly
// in the order the UI lists them. It is not safe for concurrent use.
type Crawler struct {
	page   browser.Page
	cfg    *config.SiteConfig
	parser nutrition.Parser

	items []models.MenuItem
	stats Stats
}

func NewCrawler(page browser.Page, cfg *config.SiteConfig, parser nutrition.Parser) *Crawler {
	return &Crawler{page: page, cfg: cfg, parser: parser}
}

func (c *Crawler) Stats() Stats {
	return c.stats
}

// Crawl runs the full crawl and returns every recorded item. Errors outside a
// single section or item (landing navigation, location clicks) abort the run.
func (c *Crawler) Crawl() ([]models.MenuItem, error) {
	logger.Printf("Navigating to: %s", c.cfg.MenuURL)
	if err := c.page.Navigate(c.cfg.MenuURL); err != nil {
		return nil, fmt.Errorf("failed to open landing page: %w", err)
	}
	c.dismissConsent()

	buttons, err := c.locationButtons()
	if err != nil {
		return nil, err
	}
	c.stats.LocationsFound = len(buttons)
	logger.Printf("%d locations found, beginning scraping", len(buttons))

	for i := 0; i < c.locationLimit(len(buttons)); i++ {
		if err := c.crawlLocation(i); err != nil {
			return nil, err
		}
	}

	return c.items, nil
}

// locationLimit is the exclusive upper bound of the location loop. Unless
// IncludeLastLocation is set, the final entry is never visited.
func (c *Crawler) locationLimit(n int) int {
	if c.cfg.IncludeLastLocation || n == 0 {
		return n
	}
	return n - 1
}

// dismissConsent clicks through the one-time EULA dialog if it shows up. No
// outcome of this step stops the crawl.
func (c *Crawler) dismissConsent() {
	sel := c.cfg.Selectors.ConsentButton
	found, err := waitFor(c.page, sel, c.cfg.Timeouts.Consent)
	if err != nil {
		logger.Printf("Could not check for EULA modal (ignoring): %v", err)
		return
	}
	if !found {
		logger.Println("No EULA modal found; continuing...")
		return
	}
	btn, ok, err := c.page.Has(sel)
	if err != nil || !ok {
		logger.Printf("EULA modal went away before it could be dismissed (ignoring): %v", err)
		return
	}
	if err := btn.Click(); err != nil {
		logger.Printf("Could not dismiss EULA modal (ignoring): %v", err)
	}
}

// locationButtons re-reads the location list from the current page. Handles
// from earlier reads are stale after any navigation.
func (c *Crawler) locationButtons() ([]browser.Element, error) {
	sel := c.cfg.Selectors
	found, err := waitFor(c.page, sel.LocationGrid, c.cfg.Timeouts.LocationGrid)
	if err != nil {
		return nil, fmt.Errorf("waiting for location list: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("location list %q did not appear", sel.LocationGrid)
	}
	grid, ok, err := c.page.Has(sel.LocationGrid)
	if err != nil {
		return nil, fmt.Errorf("reading location list: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("location list %q disappeared", sel.LocationGrid)
	}
	return grid.Elements(sel.LocationButton)
}

// crawlLocation returns to the landing page, re-acquires location i by
// position and scrapes every section of its menu.
func (c *Crawler) crawlLocation(i int) error {
	if err := c.page.Navigate(c.cfg.MenuURL); err != nil {
		return fmt.Errorf("failed to return to landing page: %w", err)
	}
	buttons, err := c.locationButtons()
	if err != nil {
		return err
	}
	if i >= len(buttons) {
		logger.Printf("Location %d no longer listed (%d entries now); continuing...", i, len(buttons))
		c.stats.LocationsSkipped++
		return nil
	}

	btn := buttons[i]
	name := c.locationName(btn, i)
	if err := btn.Click(); err != nil {
		return fmt.Errorf("failed to open location %s: %w", name, err)
	}
	c.stats.LocationsVisited++

	sel := c.cfg.Selectors.Section
	found, err := waitFor(c.page, sel, c.cfg.Timeouts.Menu)
	if err != nil {
		return fmt.Errorf("waiting for menu of %s: %w", name, err)
	}
	if !found {
		logger.Printf("No menu found for %s; continuing...", name)
		c.stats.LocationsSkipped++
		return nil
	}

	sections, err := c.page.Elements(sel)
	if err != nil {
		return fmt.Errorf("listing sections of %s: %w", name, err)
	}
	for _, section := range sections {
		if err := isolate(func() error { return c.extractSection(section, name) }); err != nil {
			logger.Printf("Failed to process section in %s: %v", name, err)
			c.stats.SectionsFailed++
		}
	}
	return nil
}

func (c *Crawler) locationName(btn browser.Element, i int) string {
	fallback := fmt.Sprintf("Location %d", i+1)
	el, ok, err := btn.Has(c.cfg.Selectors.LocationName)
	if err != nil || !ok {
		return fallback
	}
	text, err := el.Text()
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}

// isolate runs fn, turning both returned errors and renderer panics into an
// error for the caller to log.
func isolate(fn func() error) error {
	var err error
	if perr := rod.Try(func() { err = fn() }); perr != nil {
		return perr
	}
	return err
}
