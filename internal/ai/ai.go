package ai

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used unless GEMINI_EMBED_MODEL names another one.
const DefaultModel = "text-embedding-004"

// MaxBatch is the most texts one batch request may carry.
const MaxBatch = 100

// Embedder turns a search query into a vector. Client is the production
// implementation.
type Embedder interface {
	EmbedString(ctx context.Context, text string) ([]byte, []float32, error)
}

// BatchEmbedder embeds menu item texts, returning one vector per text in
// input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Client embeds queries and menu items with separate retrieval task types so
// the two sides of a search land in the same space.
type Client struct {
	genaiClient *genai.Client
	queries     *genai.EmbeddingModel
	documents   *genai.EmbeddingModel
}

// NewClient creates a connected AI client from GEMINI_API_KEY.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	model := os.Getenv("GEMINI_EMBED_MODEL")
	if model == "" {
		model = DefaultModel
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	queries := c.EmbeddingModel(model)
	queries.TaskType = genai.TaskTypeRetrievalQuery
	documents := c.EmbeddingModel(model)
	documents.TaskType = genai.TaskTypeRetrievalDocument

	return &Client{genaiClient: c, queries: queries, documents: documents}, nil
}

func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

// EmbedString embeds a search query and returns the vector both as a BLOB
// for sqlite and as []float32.
func (c *Client) EmbedString(ctx context.Context, text string) ([]byte, []float32, error) {
	res, err := c.queries.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, nil, err
	}
	if res.Embedding == nil {
		return nil, nil, fmt.Errorf("AI returned empty embedding")
	}

	blob, err := FloatsToBytes(res.Embedding.Values)
	if err != nil {
		return nil, nil, err
	}
	return blob, res.Embedding.Values, nil
}

// EmbedBatch embeds up to MaxBatch item texts in one request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) > MaxBatch {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(texts), MaxBatch)
	}
	b := c.documents.NewBatch()
	for _, t := range texts {
		b.AddContent(genai.Text(t))
	}
	res, err := c.documents.BatchEmbedContents(ctx, b)
	if err != nil {
		return nil, err
	}
	return vectors(res.Embeddings, len(texts))
}

// vectors unwraps a batch response, insisting on one embedding per request.
func vectors(embeddings []*genai.ContentEmbedding, want int) ([][]float32, error) {
	if len(embeddings) != want {
		return nil, fmt.Errorf("AI returned %d embeddings for %d texts", len(embeddings), want)
	}
	out := make([][]float32, want)
	for i, e := range embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("AI returned empty embedding at %d", i)
		}
		out[i] = e.Values
	}
	return out, nil
}

// CosineSimilarity scores two vectors; mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// FloatsToBytes encodes a vector as little-endian float32s.
func FloatsToBytes(floats []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, floats); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToFloats decodes a blob written by FloatsToBytes.
func BytesToFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid byte length %d for float32 slice", len(b))
	}
	floats := make([]float32, len(b)/4)
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &floats)
	return floats, err
}
