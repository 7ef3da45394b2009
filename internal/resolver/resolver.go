// Package resolver derives second-order facts from the extracted graph:
// per-file component classification, dependency closures, and cycle
// detection. Everything it writes is recomputable from the extraction
// output, so every operation is safe to re-run.
package resolver

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/retry"
)

type Options struct {
	ClosureDepth int
	Retry        *retry.Config
}

type Resolver struct {
	store        *graphstore.Store
	chain        *ClassifierChain
	closureDepth int
	retryCfg     *retry.Config
	logger       *zap.Logger
}

func New(store *graphstore.Store, chain *ClassifierChain, opts Options, logger *zap.Logger) *Resolver {
	if opts.ClosureDepth <= 0 {
		opts.ClosureDepth = 3
	}
	if opts.Retry == nil {
		opts.Retry = retry.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:        store,
		chain:        chain,
		closureDepth: opts.ClosureDepth,
		retryCfg:     opts.Retry,
		logger:       logger,
	}
}

// ClassifyProject assigns a Component to every file. Re-classification
// replaces the previous CLASSIFIES_AS edge, so a file always has exactly
// one component.
func (r *Resolver) ClassifyProject(ctx context.Context, projectID, sourceDir string) error {
	files, err := r.store.NodesByLabel(ctx, projectID, model.LabelFile)
	if err != nil {
		return err
	}

	counts := map[model.ComponentType]int{}
	for _, node := range files {
		file := model.FileFromProps(node.Props)
		source := readForClassification(sourceDir, file.Path)

		ct, decidedBy := r.chain.Classify(ctx, file, source)
		comp := model.Component{
			ID:       file.Path,
			FilePath: file.Path,
			Type:     ct,
			Extra:    model.Props{"decided_by": decidedBy},
		}

		fileRef := graphstore.Ref{Label: model.LabelFile, Key: file.Path}
		compRef := graphstore.Ref{Label: model.LabelComponent, Key: comp.ID}
		err := retry.DoIf(ctx, r.retryCfg, func() error {
			if err := r.store.UpsertNode(ctx, projectID, model.LabelComponent, comp.ID, comp.ToProps()); err != nil {
				return err
			}
			return r.store.ReplaceEdge(ctx, projectID, model.RelClassifiesAs, fileRef, compRef, nil)
		}, graphstore.IsRetryable)
		if err != nil {
			return err
		}
		counts[ct]++
	}

	r.logger.Info("project classified",
		zap.String("project_id", projectID),
		zap.Int("ui", counts[model.ComponentUI]),
		zap.Int("logic", counts[model.ComponentLogic]),
		zap.Int("data", counts[model.ComponentData]),
		zap.Int("config", counts[model.ComponentConfig]),
		zap.Int("unknown", counts[model.ComponentUnknown]))
	return nil
}

// readForClassification is best-effort: a file that cannot be read is
// classified from its path alone.
func readForClassification(sourceDir, relPath string) []byte {
	if sourceDir == "" {
		return nil
	}
	source, err := os.ReadFile(filepath.Join(sourceDir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil
	}
	return source
}
