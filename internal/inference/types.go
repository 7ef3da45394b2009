package inference

import (
	"context"
	"fmt"

	"codeport/internal/extractor"
	"codeport/internal/model"
)

// Inferencer fills the gaps static parsing leaves open: semantic class
// kinds, untyped arguments, extension-style constructs, and component
// classification. Results never override parser facts; the merge in the
// extraction engine keeps syntactic values authoritative.
type Inferencer interface {
	// AnalyzeFile returns inferred declarations for one source file. The
	// returned skeleton uses the same shape as the parser output so the
	// two can be merged field by field.
	AnalyzeFile(ctx context.Context, filePath, language string, source []byte) (*extractor.FileSkeleton, error)

	// ClassifyComponent assigns an architectural component type to a file
	// the rule-based classifier could not decide.
	ClassifyComponent(ctx context.Context, filePath, language string, source []byte) (model.ComponentType, error)

	// Name identifies the provider for logs and reports.
	Name() string
}

// InferenceError wraps a provider failure. Transport-level failures are
// retryable; malformed model output is not.
type InferenceError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference (%s): %v", e.Provider, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) IsRetryable() bool { return e.Retryable }
