package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"codeport/internal/extractor"
	"codeport/internal/model"
)

// OpenAIInferencer runs analysis through the OpenAI chat completions API.
type OpenAIInferencer struct {
	client        *openai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewOpenAIInferencer(apiKey, modelName, baseURL string) (*OpenAIInferencer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIInferencer{
		client:        openai.NewClientWithConfig(cfg),
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

func (o *OpenAIInferencer) Name() string { return "openai" }

func (o *OpenAIInferencer) AnalyzeFile(ctx context.Context, filePath, language string, source []byte) (*extractor.FileSkeleton, error) {
	prompt := o.promptBuilder.BuildFileAnalysisPrompt(filePath, language, source)
	raw, err := o.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	sk, err := decodeFileAnalysis(raw)
	if err != nil {
		return nil, &InferenceError{Provider: o.Name(), Err: err}
	}
	sk.Path = filePath
	sk.Language = language
	return sk, nil
}

func (o *OpenAIInferencer) ClassifyComponent(ctx context.Context, filePath, language string, source []byte) (model.ComponentType, error) {
	prompt := o.promptBuilder.BuildClassificationPrompt(filePath, language, source)
	raw, err := o.complete(ctx, prompt)
	if err != nil {
		return model.ComponentUnknown, err
	}
	ct, err := decodeClassification(raw)
	if err != nil {
		return model.ComponentUnknown, &InferenceError{Provider: o.Name(), Err: err}
	}
	return ct, nil
}

func (o *OpenAIInferencer) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   4000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// Models without JSON mode reject the response_format field; retry
		// plain and rely on extractJSON to fish the object out.
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 400 {
			req.ResponseFormat = nil
			resp, err = o.client.CreateChatCompletion(ctx, req)
		}
		if err != nil {
			return "", o.wrapError(err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", &InferenceError{Provider: o.Name(), Err: fmt.Errorf("empty completion")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIInferencer) wrapError(err error) error {
	retryable := true
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		// Client-side errors other than rate limiting will not succeed on
		// retry.
		if apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != 429 {
			retryable = false
		}
	}
	return &InferenceError{Provider: o.Name(), Retryable: retryable, Err: err}
}
