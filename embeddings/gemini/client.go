// Package gemini embeds documents with the Google Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-embedding-001"

// ErrMissingAPIKey is returned when the client is created without a key.
var ErrMissingAPIKey = errors.New("gemini: api key is required")

// Client embeds texts with a single BatchEmbedContents call per Embed.
type Client struct {
	Model string

	client *genai.Client
	model  *genai.EmbeddingModel
}

// New creates a client for model; opts are appended after the API key option.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	em := client.EmbeddingModel(model)
	em.TaskType = genai.TaskTypeRetrievalDocument
	return &Client{Model: model, client: client, model: em}, nil
}

// Embed returns one vector per text in the order of texts.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	b := c.model.NewBatch()
	for _, text := range texts {
		b.AddContent(genai.Text(text))
	}
	resp, err := c.model.BatchEmbedContents(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	return vectors(resp, len(texts))
}

// EmbedDocuments implements embeddings.Embedder.
func (c *Client) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return c.Embed(ctx, docs)
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func vectors(resp *genai.BatchEmbedContentsResponse, expected int) ([][]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("gemini embed: empty response")
	}
	if len(resp.Embeddings) != expected {
		return nil, fmt.Errorf("gemini embed: got %d embeddings for %d texts", len(resp.Embeddings), expected)
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("gemini embed: missing embedding at %d", i)
		}
		out[i] = e.Values
	}
	return out, nil
}
