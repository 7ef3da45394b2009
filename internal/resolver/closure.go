package resolver

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/retry"
)

// DepGraph is the file-level dependency graph: one vertex per file,
// directed edges along IMPORTS and REFERENCES. Vertex and adjacency order
// are sorted so every computation over it is deterministic.
type DepGraph struct {
	Order []string
	Adj   map[string][]string
}

// BuildGraph loads the file dependency graph from the store.
func (r *Resolver) BuildGraph(ctx context.Context, projectID string) (*DepGraph, error) {
	files, err := r.store.NodesByLabel(ctx, projectID, model.LabelFile)
	if err != nil {
		return nil, err
	}
	edges, err := r.store.EdgesByType(ctx, projectID, model.RelImports, model.RelReferences)
	if err != nil {
		return nil, err
	}

	g := &DepGraph{Adj: make(map[string][]string, len(files))}
	for _, f := range files {
		g.Order = append(g.Order, f.Key)
	}
	sort.Strings(g.Order)

	seen := make(map[[2]string]bool)
	for _, e := range edges {
		if e.FromLabel != model.LabelFile || e.ToLabel != model.LabelFile {
			continue
		}
		pair := [2]string{e.FromKey, e.ToKey}
		if e.FromKey == e.ToKey || seen[pair] {
			continue
		}
		seen[pair] = true
		g.Adj[e.FromKey] = append(g.Adj[e.FromKey], e.ToKey)
	}
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	return g, nil
}

// ComputeClosures writes each file's transitive dependency footprint onto
// its node: the full closure size and the set reachable within the
// configured hop bound. The bounded set keeps reports readable on deep
// graphs; the full size still shows the true blast radius.
func (r *Resolver) ComputeClosures(ctx context.Context, projectID string) error {
	g, err := r.BuildGraph(ctx, projectID)
	if err != nil {
		return err
	}

	for _, file := range g.Order {
		start := graphstore.Ref{Label: model.LabelFile, Key: file}
		bounded, err := r.store.Traverse(ctx, projectID, start, []model.RelType{model.RelImports, model.RelReferences}, r.closureDepth)
		if err != nil {
			return err
		}
		full := reachable(g, file)

		nearby := make([]string, 0, len(bounded))
		for k := range bounded {
			nearby = append(nearby, k)
		}
		sort.Strings(nearby)

		props := model.Props{
			"closure_size":   len(full),
			"closure_nearby": nearby,
		}
		if err := retry.DoIf(ctx, r.retryCfg, func() error {
			return r.store.UpsertNode(ctx, projectID, model.LabelFile, file, props)
		}, graphstore.IsRetryable); err != nil {
			return err
		}
	}

	r.logger.Info("closures computed",
		zap.String("project_id", projectID),
		zap.Int("files", len(g.Order)),
		zap.Int("depth", r.closureDepth))
	return nil
}

// reachable is an unbounded, cycle-safe BFS over the in-memory graph.
func reachable(g *DepGraph, start string) map[string]bool {
	out := make(map[string]bool)
	frontier := []string{start}
	for len(frontier) > 0 {
		var next []string
		for _, v := range frontier {
			for _, to := range g.Adj[v] {
				if to == start || out[to] {
					continue
				}
				out[to] = true
				next = append(next, to)
			}
		}
		frontier = next
	}
	return out
}
