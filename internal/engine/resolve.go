package engine

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"codeport/internal/extractor"
	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/retry"
)

// ResolveReferences materializes the imports and references recorded during
// content analysis into cross-file edges. It runs after every File node
// exists, so an import of a file analyzed later in the same pass still
// resolves. Imports that match no project file become Dependency nodes.
func (e *Engine) ResolveReferences(ctx context.Context, projectID string) error {
	nodes, err := e.store.NodesByLabel(ctx, projectID, model.LabelFile)
	if err != nil {
		return err
	}

	paths := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		paths[n.Key] = true
	}

	resolved, deps := 0, 0
	for _, n := range nodes {
		imports := decodeImports(n.Props["pending_imports"])
		refs := decodeReferences(n.Props["pending_references"])
		if len(imports) == 0 && len(refs) == 0 {
			continue
		}

		batch := &graphstore.Batch{}
		fileRef := graphstore.Ref{Label: model.LabelFile, Key: n.Key}

		for _, imp := range imports {
			if target, ok := resolveCandidate(imp.CandidatePath, paths); ok {
				batch.AddEdge(model.RelImports, fileRef, graphstore.Ref{Label: model.LabelFile, Key: target},
					model.Props{"module": imp.Module})
				resolved++
				continue
			}
			dep := model.Dependency{ID: imp.Module, Name: imp.Module, Type: "external"}
			depRef := batch.AddNode(model.LabelDependency, imp.Module, dep.ToProps())
			batch.AddEdge(model.RelDependsOn, fileRef, depRef, nil)
			deps++
		}
		for _, ref := range refs {
			if target, ok := resolveCandidate(ref.CandidatePath, paths); ok {
				batch.AddEdge(model.RelReferences, fileRef, graphstore.Ref{Label: model.LabelFile, Key: target},
					model.Props{"name": ref.Name, "line": ref.Line})
			}
		}

		if err := retry.DoIf(ctx, e.retryCfg, func() error {
			return e.store.ApplyBatch(ctx, projectID, batch)
		}, graphstore.IsRetryable); err != nil {
			return err
		}
	}

	e.logger.Info("references resolved",
		zap.String("project_id", projectID),
		zap.Int("imports", resolved),
		zap.Int("dependencies", deps))
	return nil
}

// resolveCandidate maps a tentative import path onto a registered file.
// Exact match wins; otherwise a unique suffix match is accepted, which
// covers projects rooted one directory below the import base.
func resolveCandidate(candidate string, paths map[string]bool) (string, bool) {
	if candidate == "" {
		return "", false
	}
	if paths[candidate] {
		return candidate, true
	}

	match := ""
	for p := range paths {
		if strings.HasSuffix(p, "/"+candidate) {
			if match != "" {
				return "", false
			}
			match = p
		}
	}
	return match, match != ""
}

// The pending lists round-trip through the store's JSON property bag, so
// they come back as loosely typed values and need re-decoding.

func decodeImports(v any) []extractor.ImportDecl {
	var out []extractor.ImportDecl
	reencode(v, &out)
	return out
}

func decodeReferences(v any) []extractor.ReferenceDecl {
	var out []extractor.ReferenceDecl
	reencode(v, &out)
	return out
}

func reencode(v, target any) {
	if v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, target)
}
