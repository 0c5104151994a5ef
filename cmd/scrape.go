package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/menu-buddy/internal/ai"
	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/db"
	"mspro-labs/menu-buddy/internal/embedder"
	"mspro-labs/menu-buddy/internal/export"
	"mspro-labs/menu-buddy/internal/models"
	"mspro-labs/menu-buddy/internal/scraper"
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Crawl every dining location once and export the menus",
	Long: `Opens the menu site, walks every location, station and item, and writes
all_locations_menus.csv and all_locations_menus.json. The local database snapshot is
replaced and, when GEMINI_API_KEY is set, new items are embedded for search.`,
	Run: func(cmd *cobra.Command, args []string) {
		runScrape()
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape() {
	start := time.Now()

	// 1. Load Config
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	siteCfg, err := config.LoadSiteConfig(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load site config: %v", err)
	}
	if !siteCfg.IncludeLastLocation {
		log.Println("Note: the final listed location is not visited (include_last_location: false).")
	}

	// 2. Run Scraper
	items, stats, err := scraper.Run(siteCfg)
	if err != nil {
		log.Fatalf("Scraping failed: %v", err)
	}
	log.Printf("Crawl stats: %s", stats)

	// 3. Export datasets
	paths, err := export.Write(appCfg.OutputDir, items)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	// 4. Snapshot + embeddings are extras; the export above is the product
	saveSnapshot(appCfg, items)

	fmt.Printf("Scraping complete! %d items saved to %s. Duration: %.2f seconds\n",
		len(items), paths.CSV, time.Since(start).Seconds())
}

func saveSnapshot(appCfg config.AppConfig, items []models.MenuItem) {
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Printf("⚠️ Warning: database unavailable, snapshot not saved: %v", err)
		return
	}
	defer database.Close()

	count, err := db.ReplaceMenu(database, items)
	if err != nil {
		log.Printf("⚠️ Warning: failed to save snapshot: %v", err)
		return
	}
	log.Printf("SUCCESS: Stored %d menu items in %s.", count, appCfg.DBPath)

	// Auto-run Embedder
	ctx := context.Background()
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Printf("Skipping automatic embedding: %v", err)
		return
	}
	defer aiClient.Close()

	log.Println("🤖 Starting automatic embedding...")
	if _, err := embedder.Run(ctx, database, aiClient); err != nil {
		log.Printf("⚠️ Warning: Auto-embedding failed: %v", err)
	}
}
