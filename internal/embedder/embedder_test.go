package embedder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mspro-labs/menu-buddy/internal/ai"
	"mspro-labs/menu-buddy/internal/db"
	"mspro-labs/menu-buddy/internal/models"
)

type fakeEmbedder struct {
	calls []string
	fail  string
}

func (f *fakeEmbedder) EmbedString(_ context.Context, text string) ([]byte, []float32, error) {
	f.calls = append(f.calls, text)
	if f.fail != "" && strings.Contains(text, f.fail) {
		return nil, nil, errors.New("quota exceeded")
	}
	v := []float32{float32(len(text)), 1}
	blob, err := ai.FloatsToBytes(v)
	return blob, v, err
}

func TestRunEmbedsOnlyMissingTexts(t *testing.T) {
	Pause = 0
	database, err := db.Connect(filepath.Join(t.TempDir(), "menu.db"))
	require.NoError(t, err)
	defer database.Close()

	_, err = db.ReplaceMenu(database, []models.MenuItem{
		{Location: "Scott", Section: "Grill", Name: "Burger"},
		{Location: "Scott", Section: "Grill", Name: "Fries"},
		{Location: "Scott", Section: "Grill", Name: "Burger"},
	})
	require.NoError(t, err)

	fake := &fakeEmbedder{fail: "Fries"}
	n, err := Run(context.Background(), database, fake)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, fake.calls, 2)

	// second pass retries only the failed item
	fake.fail = ""
	n, err = Run(context.Background(), database, fake)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, fake.calls, 3)
	require.Contains(t, fake.calls[2], "Fries")

	n, err = Run(context.Background(), database, fake)
	require.NoError(t, err)
	require.Zero(t, n)
}

type fakeBatchEmbedder struct {
	fakeEmbedder
	batches [][]string
	failAt  int // 1-based batch number that errors; 0 never
}

func (f *fakeBatchEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if len(f.batches) == f.failAt {
		return nil, errors.New("503 unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 2}
	}
	return out, nil
}

func TestRunBatches(t *testing.T) {
	Pause = 0
	BatchSize = 2
	defer func() { BatchSize = ai.MaxBatch }()

	database, err := db.Connect(filepath.Join(t.TempDir(), "menu.db"))
	require.NoError(t, err)
	defer database.Close()

	_, err = db.ReplaceMenu(database, []models.MenuItem{
		{Location: "Scott", Section: "Grill", Name: "Burger"},
		{Location: "Scott", Section: "Grill", Name: "Fries"},
		{Location: "Scott", Section: "Grill", Name: "Shake"},
		{Location: "Scott", Section: "Grill", Name: "Salad"},
		{Location: "Scott", Section: "Grill", Name: "Soup"},
	})
	require.NoError(t, err)

	fake := &fakeBatchEmbedder{failAt: 2}
	n, err := Run(context.Background(), database, fake)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Len(t, fake.batches, 3)
	require.Empty(t, fake.calls, "batching embedders are never called one text at a time")

	// the failed batch is retried on the next run
	fake.failAt = 0
	n, err = Run(context.Background(), database, fake)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.ElementsMatch(t, fake.batches[1], fake.batches[3])

	vecs, err := db.GetItemVectors(database)
	require.NoError(t, err)
	require.Len(t, vecs, 5)
}
