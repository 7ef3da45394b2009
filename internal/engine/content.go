package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeport/internal/extractor"
	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/retry"
)

// AnalyzeContent analyzes every file registered by the structure stage and
// writes the extracted declarations. Each file commits as its own atomic
// batch, so one bad file never poisons the rest. Malformed files get a
// report and a parse_status marker instead of failing the stage. When all
// files have landed, tentative imports are resolved into cross-file edges.
func (e *Engine) AnalyzeContent(ctx context.Context, projectID, sourceDir string) error {
	files, err := e.store.NodesByLabel(ctx, projectID, model.LabelFile)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	var mu sync.Mutex
	var reports []*model.Report

	for _, node := range files {
		file := model.FileFromProps(node.Props)
		g.Go(func() error {
			report, err := e.analyzeFile(gctx, projectID, sourceDir, file)
			if err != nil {
				return err
			}
			if report != nil {
				mu.Lock()
				reports = append(reports, report)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range reports {
		if err := e.store.WriteReport(ctx, projectID, r); err != nil {
			return err
		}
	}

	return e.ResolveReferences(ctx, projectID)
}

// analyzeFile extracts one file and writes its batch. A parse failure is
// reported, not returned: the returned report is non-nil in that case and
// the error is reserved for store failures that should abort the stage.
// Files without a structural parser go straight to inference; the provider
// is then the only source of their declarations.
func (e *Engine) analyzeFile(ctx context.Context, projectID, sourceDir string, file *model.File) (*model.Report, error) {
	abs := filepath.Join(sourceDir, filepath.FromSlash(file.Path))
	source, err := os.ReadFile(abs)
	if err != nil {
		return e.markUnparsed(ctx, projectID, file, fmt.Sprintf("read failed: %v", err))
	}

	var merged *mergedSkeleton
	if ext, ok := extractor.ForLanguage(file.Language); ok {
		parsed, err := ext.Extract(ctx, file.Path, source)
		if err != nil {
			var perr *extractor.ParseError
			if errors.As(err, &perr) {
				return e.markUnparsed(ctx, projectID, file, perr.Error())
			}
			return nil, err
		}
		merged = mergeSkeletons(parsed, e.infer(ctx, file, source))
	} else {
		merged = inferenceOnly(file, e.infer(ctx, file, source))
	}

	batch := e.buildFileBatch(projectID, file, merged)
	if err := retry.DoIf(ctx, e.retryCfg, func() error {
		return e.store.ApplyBatch(ctx, projectID, batch)
	}, graphstore.IsRetryable); err != nil {
		return nil, err
	}

	e.logger.Debug("file analyzed",
		zap.String("project_id", projectID),
		zap.String("path", file.Path),
		zap.Int("functions", len(merged.Functions)),
		zap.Int("classes", len(merged.Classes)))
	return nil, nil
}

// infer asks the AI provider for the declarations the parser could not
// prove. Every attempt is bounded by the configured timeout so a stalled
// provider cannot hang the stage. Failures degrade to parser-only
// extraction; the provider being down must not sink the stage.
func (e *Engine) infer(ctx context.Context, file *model.File, source []byte) *extractor.FileSkeleton {
	if e.inferencer == nil {
		return nil
	}
	if int64(len(source)) > e.maxBytes {
		source = source[:e.maxBytes]
	}
	sk, err := retry.DoWithResult(ctx, e.retryCfg, func() (*extractor.FileSkeleton, error) {
		ictx, cancel := context.WithTimeout(ctx, e.inferTimeout)
		defer cancel()
		return e.inferencer.AnalyzeFile(ictx, file.Path, file.Language, source)
	})
	if err != nil {
		e.logger.Warn("inference unavailable, keeping parser output",
			zap.String("path", file.Path),
			zap.Error(err))
		return nil
	}
	return sk
}

func (e *Engine) markUnparsed(ctx context.Context, projectID string, file *model.File, reason string) (*model.Report, error) {
	props := model.Props{"parse_status": "error", "parse_error": reason}
	err := retry.DoIf(ctx, e.retryCfg, func() error {
		return e.store.UpsertNode(ctx, projectID, model.LabelFile, file.Path, props)
	}, graphstore.IsRetryable)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		Type:    "MalformedInputError",
		Message: fmt.Sprintf("could not parse %s", file.Path),
		Details: model.Props{"path": file.Path, "reason": reason},
	}, nil
}

// buildFileBatch turns a merged skeleton into the graph writes for one
// file. Declaration keys are path-scoped so identical names in different
// files never collide.
func (e *Engine) buildFileBatch(projectID string, file *model.File, sk *mergedSkeleton) *graphstore.Batch {
	batch := &graphstore.Batch{}

	fileProps := model.Props{"parse_status": "ok"}
	if len(sk.Imports) > 0 {
		fileProps["pending_imports"] = sk.Imports
	}
	if len(sk.References) > 0 {
		fileProps["pending_references"] = sk.References
	}
	fileRef := batch.AddNode(model.LabelFile, file.Path, fileProps)

	for _, fn := range sk.Functions {
		entity := functionEntity(file.Path, fn, sk.funcProv[fn.Name])
		ref := batch.AddNode(model.LabelFunction, entity.ID, entity.ToProps())
		batch.AddEdge(model.RelHasFunction, fileRef, ref, nil)
	}
	for _, cls := range sk.Classes {
		entity := classEntity(file.Path, cls, sk.classProv[cls.Name])
		ref := batch.AddNode(model.LabelClass, entity.ID, entity.ToProps())
		batch.AddEdge(model.RelHasClass, fileRef, ref, nil)
	}
	for _, en := range sk.Enums {
		entity := model.Enum{ID: declKey(file.Path, en.Name), Name: en.Name, Values: en.Values, Doc: en.Doc}
		ref := batch.AddNode(model.LabelEnum, entity.ID, entity.ToProps())
		batch.AddEdge(model.RelHasEnum, fileRef, ref, nil)
	}
	for _, ex := range sk.Extensions {
		entity := model.Extension{ID: declKey(file.Path, ex.Name), Name: ex.Name, BaseType: ex.BaseType, Methods: ex.Methods}
		ref := batch.AddNode(model.LabelExtension, entity.ID, entity.ToProps())
		batch.AddEdge(model.RelHasExtension, fileRef, ref, nil)
	}
	return batch
}

func declKey(path, name string) string {
	return path + "#" + name
}
