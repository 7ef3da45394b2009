package inference

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codeport/internal/extractor"
	"codeport/internal/model"
)

// GeminiInferencer runs analysis through Gemini text generation.
type GeminiInferencer struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewGeminiInferencer(ctx context.Context, apiKey, modelName string) (*GeminiInferencer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiInferencer{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

func (g *GeminiInferencer) Name() string { return "gemini" }

func (g *GeminiInferencer) AnalyzeFile(ctx context.Context, filePath, language string, source []byte) (*extractor.FileSkeleton, error) {
	prompt := g.promptBuilder.BuildFileAnalysisPrompt(filePath, language, source)
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	sk, err := decodeFileAnalysis(raw)
	if err != nil {
		return nil, &InferenceError{Provider: g.Name(), Err: err}
	}
	sk.Path = filePath
	sk.Language = language
	return sk, nil
}

func (g *GeminiInferencer) ClassifyComponent(ctx context.Context, filePath, language string, source []byte) (model.ComponentType, error) {
	prompt := g.promptBuilder.BuildClassificationPrompt(filePath, language, source)
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return model.ComponentUnknown, err
	}
	ct, err := decodeClassification(raw)
	if err != nil {
		return model.ComponentUnknown, &InferenceError{Provider: g.Name(), Err: err}
	}
	return ct, nil
}

func (g *GeminiInferencer) generate(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(prompt)
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", &InferenceError{Provider: g.Name(), Retryable: true, Err: err}
	}
	text := resp.Text()
	if text == "" {
		return "", &InferenceError{Provider: g.Name(), Err: fmt.Errorf("empty generation")}
	}
	return text, nil
}
