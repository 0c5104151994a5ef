package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"mspro-labs/menu-buddy/internal/ai"
	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/db"
	"mspro-labs/menu-buddy/internal/searcher"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search for menu items by description",
	Long: `Uses AI to find menu items that match the meaning of your query.
Examples:
  menu-buddy search "something warm and spicy"
  menu-buddy search "light vegetarian lunch"

History commands:
  menu-buddy search history
  menu-buddy search clear "query string"
  menu-buddy search clear all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleSearch(args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func handleSearch(args []string) {
	// 1. Setup
	appCfg, _ := config.GetAppConfig()
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	command := strings.ToLower(args[0])

	// 2. Commands
	if command == "history" {
		entries, err := db.ListSearchHistory(database)
		if err != nil {
			log.Fatalf("Failed to list history: %v", err)
		}
		fmt.Println("📜 Search History (Cached Queries)")
		fmt.Println("------------------------------------")
		if len(entries) == 0 {
			fmt.Println("No history found.")
			return
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.QueryText)
		}
		return
	}

	if command == "clear" {
		if len(args) < 2 {
			log.Fatal("Usage: menu-buddy search clear \"query text\" (or 'all')")
		}
		target := strings.ToLower(strings.TrimSpace(strings.Join(args[1:], " ")))
		var affected int64
		var err error

		if target == "all" {
			affected, err = db.ClearAllSearchHistory(database)
		} else {
			affected, err = db.ClearSearchHistory(database, target)
		}

		if err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Printf("🗑️ Done. Removed %d entry(s) from cache.\n", affected)
		return
	}

	// 3. Perform regular search
	query := strings.ToLower(strings.TrimSpace(strings.Join(args, " ")))
	ctx := context.Background()

	// A missing key is only fatal on a cache miss
	var embedder ai.Embedder
	if aiClient, err := ai.NewClient(ctx); err == nil {
		defer aiClient.Close()
		embedder = aiClient
	}

	results, err := searcher.Perform(ctx, database, embedder, query)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	fmt.Printf("\n🔍 Top matches for: \"%s\"\n\n", query)
	if len(results) == 0 {
		fmt.Println("No embedded menu items yet. Run `menu-buddy embed` first.")
		return
	}
	for i, r := range results {
		fmt.Printf("#%d [%.1f%% match] %s (%s, %s)\n", i+1, r.Score*100, r.Item.Name, r.Item.Location, r.Item.Section)
		fmt.Printf("   %s cal, %s protein\n\n", orUnknown(r.Item.Calories), orUnknown(r.Item.Protein))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
