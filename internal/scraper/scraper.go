package scraper

import (
	"fmt"
	"log"
	"os"

	"mspro-labs/menu-buddy/internal/browser"
	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/models"
	"mspro-labs/menu-buddy/internal/nutrition"
)

var logger = log.New(os.Stdout, "SCRAPER: ", log.LstdFlags|log.Lshortfile)

// Stats counts what a crawl visited, skipped and lost.
type Stats struct {
	LocationsFound   int
	LocationsVisited int
	LocationsSkipped int
	SectionsSkipped  int
	SectionsFailed   int
	ItemsRecorded    int
	ItemsSkipped     int
	ItemsFailed      int
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"locations %d/%d visited (%d without menu), sections %d skipped/%d failed, items %d recorded/%d skipped/%d failed",
		s.LocationsVisited, s.LocationsFound, s.LocationsSkipped,
		s.SectionsSkipped, s.SectionsFailed,
		s.ItemsRecorded, s.ItemsSkipped, s.ItemsFailed,
	)
}

// Run orchestrates the entire scraping process: launch, crawl every location, close.
func Run(cfg *config.SiteConfig) ([]models.MenuItem, Stats, error) {
	logger.Println("Launching headless browser...")
	b, err := browser.Launch(cfg.Headless)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer b.Close()

	page, err := browser.NewPage(b, cfg.Timeouts.Navigation, cfg.Timeouts.Action)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	c := NewCrawler(page, cfg, nutrition.NewParser())
	items, err := c.Crawl()
	if err != nil {
		return nil, c.Stats(), err
	}
	return items, c.Stats(), nil
}
