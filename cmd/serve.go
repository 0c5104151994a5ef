package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/menu-buddy/internal/config"
	"mspro-labs/menu-buddy/internal/db"
	"mspro-labs/menu-buddy/internal/export"
	"mspro-labs/menu-buddy/internal/models"
	"mspro-labs/menu-buddy/internal/searcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exported menu as JSON",
	Long: `Serves GET /api/menu (optionally filtered with ?q=, e.g. "high protein",
"low calorie", "protein sort") from the last exported CSV, plus the static files
in the public directory. When no CSV has been exported the stored snapshot is
served instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer() {
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// The snapshot is only a fallback; serve without it if it cannot be opened
	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Printf("Snapshot unavailable (%v); serving CSV only", err)
	} else {
		defer database.Close()
	}

	mux := newMux(appCfg.OutputDir, database)

	addr := ":" + appCfg.Port
	log.Printf("🌐 Server running at http://localhost%s", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func newMux(outputDir string, database *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/menu", menuHandler(filepath.Join(outputDir, export.CSVFile), database))
	// outputDir is public/data by default; serve public/
	mux.Handle("/", http.FileServer(http.Dir(filepath.Dir(outputDir))))
	return mux
}

func menuHandler(csvPath string, database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}

		items, err := loadMenu(csvPath, database)
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Menu data not found"})
			return
		}
		if err != nil {
			log.Printf("Menu read error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, searcher.Filter(items, r.URL.Query().Get("q")))
	}
}

// loadMenu reads the exported CSV, falling back to the stored snapshot when
// the file is missing. An empty or absent snapshot reports os.ErrNotExist.
func loadMenu(csvPath string, database *sql.DB) ([]models.MenuItem, error) {
	items, err := export.ReadCSV(csvPath)
	if !errors.Is(err, os.ErrNotExist) || database == nil {
		return items, err
	}
	items, dbErr := db.GetMenu(database)
	if dbErr != nil {
		return nil, dbErr
	}
	if len(items) == 0 {
		return nil, err
	}
	return items, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("Response encode error: %v", err)
	}
}
