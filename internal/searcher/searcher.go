package searcher

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"mspro-labs/menu-buddy/internal/ai"
	"mspro-labs/menu-buddy/internal/db"
)

// TopN is how many matches Perform returns.
const TopN = 5

// Result holds a single search match.
type Result struct {
	Item  db.ItemVector
	Score float32
}

// Perform executes a semantic search over the stored menu snapshot.
func Perform(ctx context.Context, database *sql.DB, embedder ai.Embedder, queryText string) ([]Result, error) {
	// 1. Get Query Vector (Try cache first, then AI)
	queryVector, err := getQueryVector(ctx, database, embedder, queryText)
	if err != nil {
		return nil, err
	}

	// 2. Load all item vectors
	items, err := db.GetItemVectors(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	// 3. Compare and score
	var results []Result
	for _, item := range items {
		floats, err := ai.BytesToFloats(item.Vector)
		if err != nil {
			continue
		}
		results = append(results, Result{Item: item, Score: ai.CosineSimilarity(queryVector, floats)})
	}

	// 4. Sort by descending score, keeping crawl order on ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > TopN {
		results = results[:TopN]
	}

	return results, nil
}

// getQueryVector handles the "cache-aside" logic for query embeddings.
func getQueryVector(ctx context.Context, database *sql.DB, embedder ai.Embedder, text string) ([]float32, error) {
	// A. Try Cache
	blob, err := db.GetCachedQuery(database, text)
	if err == nil {
		return ai.BytesToFloats(blob)
	}

	// B. Cache Miss - Use AI
	if embedder == nil {
		return nil, fmt.Errorf("query %q is not cached and no embedder is configured", text)
	}
	log.Printf("🤖 Cache miss for '%s'. Calling Gemini...", text)
	blob, floats, err := embedder.EmbedString(ctx, text)
	if err != nil {
		return nil, err
	}

	// C. Save to Cache (don't fail the request if cache save fails)
	if err := db.SaveCachedQuery(database, text, blob); err != nil {
		log.Printf("Warning: failed to save query to cache: %v", err)
	}

	return floats, nil
}
