package planner

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/resolver"
	"codeport/internal/retry"
)

// BuildStrategies orders the migration: every file gets a Strategy whose
// priority respects the dependency graph, so a file's imports migrate
// before the file itself. Cycles found along the way have already been
// reported and broken by the resolver, and the remaining acyclic graph
// admits a total order. Ties break by path so repeated runs produce the
// same plan.
func (p *Planner) BuildStrategies(ctx context.Context, projectID string) (int, error) {
	g, _, err := p.resolver.DetectCycles(ctx, projectID)
	if err != nil {
		return 0, err
	}
	order := migrationOrder(g)

	components, err := p.store.NodesByLabel(ctx, projectID, model.LabelComponent)
	if err != nil {
		return 0, err
	}
	compTypes := make(map[string]model.ComponentType, len(components))
	for _, c := range components {
		compTypes[c.Props.String("file_path")] = model.ComponentType(c.Props.String("type"))
	}

	written := 0
	for priority, filePath := range order {
		ct := compTypes[filePath]
		target, ok := targetStack[ct]
		if !ok {
			// Unmappable files were routed to feedback during mapping and
			// get no scheduled step.
			continue
		}

		strategy := model.Strategy{
			ID:           filePath,
			ComponentRef: filePath,
			Priority:     priority,
			Actions:      actionsFor(ct, target),
		}

		batch := &graphstore.Batch{}
		stratRef := batch.AddNode(model.LabelStrategy, strategy.ID, strategy.ToProps())
		compRef := graphstore.Ref{Label: model.LabelComponent, Key: filePath}
		batch.AddEdge(model.RelPlannedIn, compRef, stratRef, nil)

		if err := retry.DoIf(ctx, p.retryCfg, func() error {
			return p.store.ApplyBatch(ctx, projectID, batch)
		}, graphstore.IsRetryable); err != nil {
			return written, err
		}
		written++
	}

	p.logger.Info("strategies built",
		zap.String("project_id", projectID),
		zap.Int("strategies", written))
	return written, nil
}

// migrationOrder runs Kahn's algorithm so that dependencies come before
// dependents. An IMPORTS edge A -> B means A needs B, so B must be
// migrated first: files with no outgoing dependencies drain first. The
// ready set is kept sorted for determinism.
func migrationOrder(g *resolver.DepGraph) []string {
	outDegree := make(map[string]int, len(g.Order))
	dependents := make(map[string][]string)
	for _, v := range g.Order {
		outDegree[v] = len(g.Adj[v])
		for _, to := range g.Adj[v] {
			dependents[to] = append(dependents[to], v)
		}
	}

	var ready []string
	for _, v := range g.Order {
		if outDegree[v] == 0 {
			ready = append(ready, v)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		v := ready[0]
		ready = ready[1:]
		order = append(order, v)

		var freed []string
		for _, dep := range dependents[v] {
			outDegree[dep]--
			if outDegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		sort.Strings(freed)
		ready = mergeSorted(ready, freed)
	}
	return order
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
