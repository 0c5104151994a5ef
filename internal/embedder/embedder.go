package embedder

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"mspro-labs/menu-buddy/internal/ai"
	"mspro-labs/menu-buddy/internal/db"
)

// Pause between API calls; roughly the free tier's 60 RPM.
var Pause = 1 * time.Second

// BatchSize caps how many texts go into one batch request.
var BatchSize = ai.MaxBatch

// Run embeds every snapshot item whose text has no stored vector yet and
// returns how many vectors were saved. Embedders that can batch are sent
// BatchSize texts per request; a failed request is logged and its texts are
// left for the next run.
func Run(ctx context.Context, database *sql.DB, embedder ai.Embedder) (int, error) {
	// 1. Find work to do
	targets, err := db.GetUnembeddedTexts(database)
	if err != nil {
		return 0, err
	}

	if len(targets) == 0 {
		log.Println("✨ All menu items are already embedded.")
		return 0, nil
	}
	log.Printf("Found %d new menu items to embed...", len(targets))

	// 2. Process loop
	var count int
	if b, ok := embedder.(ai.BatchEmbedder); ok {
		count, err = runBatches(ctx, database, b, targets)
	} else {
		count, err = runSingle(ctx, database, embedder, targets)
	}
	if err != nil {
		return count, err
	}

	log.Printf("🎉 Successfully embedded %d items.", count)
	return count, nil
}

func runBatches(ctx context.Context, database *sql.DB, b ai.BatchEmbedder, targets []string) (int, error) {
	size := BatchSize
	if size <= 0 || size > ai.MaxBatch {
		size = ai.MaxBatch
	}

	count := 0
	for start := 0; start < len(targets); start += size {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		chunk := targets[start:min(start+size, len(targets))]
		log.Printf("Embedding batch of %d, starting with: %s", len(chunk), firstLine(chunk[0]))

		vecs, err := b.EmbedBatch(ctx, chunk)
		if err != nil {
			log.Printf("⚠️ Error embedding batch: %v", err)
			time.Sleep(Pause)
			continue
		}
		for i, text := range chunk {
			if save(database, text, vecs[i]) {
				count++
			}
		}
		time.Sleep(Pause)
	}
	return count, nil
}

func runSingle(ctx context.Context, database *sql.DB, embedder ai.Embedder, targets []string) (int, error) {
	count := 0
	for _, text := range targets {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		log.Printf("Embedding: %s", firstLine(text))

		_, vec, err := embedder.EmbedString(ctx, text)
		if err != nil {
			log.Printf("⚠️ Error embedding item: %v", err)
			time.Sleep(Pause) // Backoff on error
			continue
		}
		if save(database, text, vec) {
			count++
		}
		time.Sleep(Pause)
	}
	return count, nil
}

func save(database *sql.DB, text string, vec []float32) bool {
	blob, err := ai.FloatsToBytes(vec)
	if err == nil {
		err = db.SaveEmbedding(database, text, blob)
	}
	if err != nil {
		log.Printf("⚠️ Error saving to DB: %v", err)
		return false
	}
	return true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
