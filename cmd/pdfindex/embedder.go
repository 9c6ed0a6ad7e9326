package main

import (
	"context"
	"fmt"

	"github.com/viant/pdfindex/config"
	"github.com/viant/pdfindex/embeddings"
	"github.com/viant/pdfindex/embeddings/gemini"
	"github.com/viant/pdfindex/embeddings/ollama"
	"github.com/viant/pdfindex/embeddings/openai"
	"github.com/viant/pdfindex/embeddings/simple"
	"google.golang.org/api/option"
)

func noClose() error { return nil }

// selectEmbedder builds the provider named by cfg. The returned function
// releases provider resources.
func selectEmbedder(ctx context.Context, cfg *config.Config) (embeddings.Embedder, func() error, error) {
	switch cfg.ProviderName() {
	case config.ProviderGemini:
		var opts []option.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithEndpoint(cfg.BaseURL))
		}
		client, err := gemini.New(ctx, cfg.APIKey, modelName(cfg), opts...)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case config.ProviderOpenAI:
		var opts []openai.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		client, err := openai.New(cfg.APIKey, modelName(cfg), opts...)
		if err != nil {
			return nil, nil, err
		}
		return client, noClose, nil
	case config.ProviderOllama:
		var opts []ollama.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithBaseURL(cfg.BaseURL))
		}
		return ollama.New(modelName(cfg), opts...), noClose, nil
	case config.ProviderSimple:
		return simple.New(simple.DefaultDim), noClose, nil
	}
	return nil, nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
}

// modelName returns the configured model or the provider default.
func modelName(cfg *config.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	switch cfg.ProviderName() {
	case config.ProviderGemini:
		return gemini.DefaultModel
	case config.ProviderOpenAI:
		return openai.DefaultModel
	case config.ProviderOllama:
		return ollama.DefaultModel
	}
	return "simple"
}
