package knowledge

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"
)

// EmbeddingDimensions is the vector size stored with every knowledge chunk.
const EmbeddingDimensions = 1536

const DefaultEmbeddingModel = "gemini-embedding-001"

var ErrEmbedderNotConfigured = errors.New("embedder not configured")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NoEmbedder stands in when no embedding API key is configured. Every retrieval then
// degrades to an empty result.
type NoEmbedder struct{}

func (NoEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrEmbedderNotConfigured
}

// GenAIEmbedder embeds queries with the Gemini embedding API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenAIEmbedder(ctx context.Context, apiKey, model string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("genai api key is required")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIEmbedder{
		client: client,
		model:  model,
	}, nil
}

func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := int32(EmbeddingDimensions)
	result, err := e.client.Models.EmbedContent(
		ctx,
		e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{
			TaskType:             "RETRIEVAL_QUERY",
			OutputDimensionality: &dims,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("no embeddings returned")
	}

	values := result.Embeddings[0].Values
	if len(values) != EmbeddingDimensions {
		return nil, fmt.Errorf("unexpected embedding size %d, want %d", len(values), EmbeddingDimensions)
	}
	return values, nil
}
