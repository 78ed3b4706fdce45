package careers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openAIBatchSize = 256

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder builds a client from the provider configuration.
func NewOpenAIEmbedder(cfg EmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.ModelName == "" {
		return nil, errors.New("embedding model name is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(config),
		model:  cfg.ModelName,
	}, nil
}

// ModelID returns the identifier used for cache keys.
func (o *OpenAIEmbedder) ModelID() string {
	return "openai:" + o.model
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (o *OpenAIEmbedder) Close() error {
	return nil
}

// EmbedText embeds a single string.
func (o *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts embeds texts in batches, preserving input order.
func (o *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += openAIBatchSize {
		end := start + openAIBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(o.model),
		})
		if err != nil {
			return nil, fmt.Errorf("create embeddings: %w", err)
		}
		for _, d := range resp.Data {
			idx := start + d.Index
			if d.Index < 0 || idx >= end {
				return nil, fmt.Errorf("embedding index %d out of range", d.Index)
			}
			out[idx] = d.Embedding
		}
		for i := start; i < end; i++ {
			if out[i] == nil {
				return nil, fmt.Errorf("no embedding returned for input %d", i)
			}
		}
	}
	return out, nil
}
