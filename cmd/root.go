package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "menu-buddy",
	Short: "Scrape dining-hall nutrition menus and search them",
	Long: `menu-buddy crawls the Nutrislice dining menu (locations, stations, items),
parses each item's nutrition panel and writes the result to public/data as CSV and JSON.`,
}

// Execute runs the root command; it is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
