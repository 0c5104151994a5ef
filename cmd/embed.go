package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"mspro-labs/menu-buddy/internal/ai"
	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/db"
	"mspro-labs/menu-buddy/internal/embedder"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed menu items from the last crawl for semantic search",
	Long: `Sends every item of the stored snapshot that has no vector yet to the Gemini
embedding API, in batches. Vectors are keyed by item text, so dishes that
reappear in later crawls are not embedded again. Interrupting the command
keeps the batches already saved.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEmbed()
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}
	defer aiClient.Close()

	n, err := embedder.Run(ctx, database, aiClient)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Embedding process failed: %v", err)
	}
	fmt.Println(embedSummary(database, n))
}

// embedSummary reports the run and what is still waiting for a vector.
func embedSummary(database *sql.DB, embedded int) string {
	left, err := db.GetUnembeddedTexts(database)
	if err != nil {
		return fmt.Sprintf("Embedded %d items.", embedded)
	}
	if len(left) == 0 {
		return fmt.Sprintf("Embedded %d items. Every stored item is searchable.", embedded)
	}
	return fmt.Sprintf("Embedded %d items. %d still need a vector; run `menu-buddy embed` again.", embedded, len(left))
}
