package inference

import (
	"context"

	"codeport/internal/extractor"
	"codeport/internal/model"
)

// NopInferencer is used when no AI provider is configured. Extraction then
// carries only what the parser proved, and classification falls back to the
// rule-based heuristics alone.
type NopInferencer struct{}

func (NopInferencer) Name() string { return "none" }

func (NopInferencer) AnalyzeFile(_ context.Context, filePath, language string, _ []byte) (*extractor.FileSkeleton, error) {
	return &extractor.FileSkeleton{Path: filePath, Language: language}, nil
}

func (NopInferencer) ClassifyComponent(context.Context, string, string, []byte) (model.ComponentType, error) {
	return model.ComponentUnknown, nil
}
