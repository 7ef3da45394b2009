package resolver

import (
	"context"
	"path"
	"strings"
	"time"

	"codeport/internal/inference"
	"codeport/internal/model"
	"codeport/internal/retry"
)

// Classifier assigns an architectural component type to one file. The
// boolean reports whether the classifier could decide at all; undecided
// files fall through to the next classifier in the chain.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, file *model.File, source []byte) (model.ComponentType, bool)
}

// ClassifierChain runs classifiers in order and takes the first decision.
type ClassifierChain struct {
	classifiers []Classifier
}

func NewClassifierChain(classifiers ...Classifier) *ClassifierChain {
	return &ClassifierChain{classifiers: classifiers}
}

// NewDefaultChain classifies by file-type and path heuristics first and
// only consults the AI provider for files the rules cannot place. timeout
// bounds each provider call.
func NewDefaultChain(inf inference.Inferencer, timeout time.Duration) *ClassifierChain {
	return NewClassifierChain(NewHeuristicClassifier(), NewInferenceClassifier(inf, timeout))
}

func (c *ClassifierChain) Classify(ctx context.Context, file *model.File, source []byte) (model.ComponentType, string) {
	for _, cl := range c.classifiers {
		if ct, ok := cl.Classify(ctx, file, source); ok {
			return ct, cl.Name()
		}
	}
	return model.ComponentUnknown, ""
}

// HeuristicClassifier decides from the file type and path segments alone.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

func (h *HeuristicClassifier) Name() string { return "heuristic" }

var languageComponents = map[string]model.ComponentType{
	"html":  model.ComponentUI,
	"css":   model.ComponentUI,
	"scss":  model.ComponentUI,
	"sass":  model.ComponentUI,
	"react": model.ComponentUI,
	"vue":   model.ComponentUI,

	"json": model.ComponentConfig,
	"yaml": model.ComponentConfig,
	"toml": model.ComponentConfig,
	"ini":  model.ComponentConfig,
	"xml":  model.ComponentConfig,

	"sql": model.ComponentData,
	"csv": model.ComponentData,
}

var pathComponents = []struct {
	segment string
	ct      model.ComponentType
}{
	{"ui", model.ComponentUI},
	{"views", model.ComponentUI},
	{"view", model.ComponentUI},
	{"templates", model.ComponentUI},
	{"components", model.ComponentUI},
	{"data", model.ComponentData},
	{"models", model.ComponentData},
	{"model", model.ComponentData},
	{"entities", model.ComponentData},
	{"repositories", model.ComponentData},
	{"migrations", model.ComponentData},
	{"config", model.ComponentConfig},
	{"settings", model.ComponentConfig},
	{"conf", model.ComponentConfig},
}

func (h *HeuristicClassifier) Classify(_ context.Context, file *model.File, _ []byte) (model.ComponentType, bool) {
	if ct, ok := languageComponents[file.Language]; ok {
		return ct, true
	}

	segments := strings.Split(strings.ToLower(path.Dir(file.Path)), "/")
	for _, seg := range segments {
		for _, rule := range pathComponents {
			if seg == rule.segment {
				return rule.ct, true
			}
		}
	}

	// Source files with no stronger signal default to business logic;
	// non-code files stay undecided for the next classifier.
	switch file.Language {
	case "unknown", "":
		return model.ComponentUnknown, false
	default:
		return model.ComponentLogic, true
	}
}

// InferenceClassifier delegates to the AI provider, bounding every call by
// its timeout. It never blocks a decision on provider failure; undecided
// files simply stay unknown.
type InferenceClassifier struct {
	inferencer inference.Inferencer
	timeout    time.Duration
}

func NewInferenceClassifier(inf inference.Inferencer, timeout time.Duration) *InferenceClassifier {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InferenceClassifier{inferencer: inf, timeout: timeout}
}

func (i *InferenceClassifier) Name() string { return "inference" }

func (i *InferenceClassifier) Classify(ctx context.Context, file *model.File, source []byte) (model.ComponentType, bool) {
	if i.inferencer == nil || len(source) == 0 {
		return model.ComponentUnknown, false
	}
	var ct model.ComponentType
	err := retry.Do(ctx, nil, func() error {
		ictx, cancel := context.WithTimeout(ctx, i.timeout)
		defer cancel()
		var cerr error
		ct, cerr = i.inferencer.ClassifyComponent(ictx, file.Path, file.Language, source)
		return cerr
	})
	if err != nil || ct == model.ComponentUnknown {
		return model.ComponentUnknown, false
	}
	return ct, true
}
