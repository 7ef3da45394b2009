package inference

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

func NewInferencer(ctx context.Context, opts Options) (Inferencer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "none"
	}

	switch provider {
	case "gemini":
		return NewGeminiInferencer(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAIInferencer(opts.APIKey, opts.Model, opts.BaseURL)
	case "none":
		return NopInferencer{}, nil
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", opts.Provider)
	}
}
