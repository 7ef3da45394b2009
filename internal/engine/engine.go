// Package engine runs the two analysis stages of the extraction pipeline:
// the structure scan that registers every project file in the graph, and
// the content pass that parses supported sources, reconciles parser output
// with AI inference, and materializes cross-file references.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codeport/internal/crawler"
	"codeport/internal/graphstore"
	"codeport/internal/inference"
	"codeport/internal/model"
	"codeport/internal/retry"
)

type Options struct {
	Workers      int
	MaxFileBytes int64
	InferTimeout time.Duration // upper bound on one AI provider call
	Retry        *retry.Config
}

type Engine struct {
	store        *graphstore.Store
	inferencer   inference.Inferencer
	crawler      *crawler.Crawler
	workers      int
	maxBytes     int64
	inferTimeout time.Duration
	retryCfg     *retry.Config
	logger       *zap.Logger
}

func New(store *graphstore.Store, inf inference.Inferencer, opts Options, logger *zap.Logger) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = 100 * 1024
	}
	if opts.InferTimeout <= 0 {
		opts.InferTimeout = 60 * time.Second
	}
	if opts.Retry == nil {
		opts.Retry = retry.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:        store,
		inferencer:   inf,
		crawler:      crawler.NewCrawler(),
		workers:      opts.Workers,
		maxBytes:     opts.MaxFileBytes,
		inferTimeout: opts.InferTimeout,
		retryCfg:     opts.Retry,
		logger:       logger,
	}
}

// AnalyzeStructure walks the project tree and registers a File node per
// file, linked to the Project by CONTAINS. Content is not read here. The
// write is one atomic batch; re-running it upserts the same nodes.
func (e *Engine) AnalyzeStructure(ctx context.Context, projectID, sourceDir string) (int, error) {
	projectRef := graphstore.Ref{Label: model.LabelProject, Key: projectID}
	batch := &graphstore.Batch{}
	count := 0

	err := e.crawler.ScanProject(sourceDir, func(fi crawler.FileInfo) {
		f := model.File{Path: fi.Path, Language: fi.Language, Size: fi.Size}
		fileRef := batch.AddNode(model.LabelFile, fi.Path, f.ToProps())
		batch.AddEdge(model.RelContains, projectRef, fileRef, nil)
		count++
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", sourceDir, err)
	}

	if err := e.store.ApplyBatch(ctx, projectID, batch); err != nil {
		return 0, err
	}
	e.logger.Info("structure analyzed",
		zap.String("project_id", projectID),
		zap.Int("files", count))
	return count, nil
}
