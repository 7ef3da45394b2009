package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codeport/internal/model"
)

// Cycle is one detected dependency loop. Path lists the files in cycle
// order starting from the lexicographically smallest member; Broken is the
// edge removed to make the graph orderable.
type Cycle struct {
	Path   []string
	Broken [2]string
}

// DetectCycles finds dependency loops in the graph and returns an acyclic
// copy with one edge per cycle removed. A cycle is an anomaly of the legacy
// code, not a pipeline failure: each one is written to the project as a
// report and planning continues on the broken graph.
//
// Breaking is deterministic: the removed edge is the one entering the
// smallest path in the cycle, so repeated runs produce identical plans.
func (r *Resolver) DetectCycles(ctx context.Context, projectID string) (*DepGraph, []Cycle, error) {
	g, err := r.BuildGraph(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	cycles := findCycles(g)
	for _, c := range cycles {
		report := &model.Report{
			Type:    "CircularDependency",
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(c.Path, " -> ")),
			Details: model.Props{
				"cycle":       c.Path,
				"broken_from": c.Broken[0],
				"broken_to":   c.Broken[1],
			},
		}
		if err := r.store.WriteReport(ctx, projectID, report); err != nil {
			return nil, nil, err
		}
	}

	if len(cycles) > 0 {
		r.logger.Warn("dependency cycles detected",
			zap.String("project_id", projectID),
			zap.Int("cycles", len(cycles)))
	}
	return g, cycles, nil
}

// findCycles runs DFS in sorted vertex order and breaks each back edge as
// it is found, so later searches see the already-broken graph and each
// loop is reported once.
func findCycles(g *DepGraph) []Cycle {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Order))
	var stack []string
	var cycles []Cycle

	var visit func(v string)
	visit = func(v string) {
		color[v] = gray
		stack = append(stack, v)

		adj := append([]string(nil), g.Adj[v]...)
		for _, to := range adj {
			switch color[to] {
			case white:
				visit(to)
			case gray:
				c := extractCycle(stack, to)
				cycles = append(cycles, c)
				removeEdge(g, c.Broken[0], c.Broken[1])
			}
		}

		stack = stack[:len(stack)-1]
		color[v] = black
	}

	for _, v := range g.Order {
		if color[v] == white {
			visit(v)
		}
	}
	return cycles
}

// extractCycle slices the loop out of the DFS stack and rotates it to start
// at its smallest member. The broken edge is the one entering that member.
func extractCycle(stack []string, reentry string) Cycle {
	start := 0
	for i, v := range stack {
		if v == reentry {
			start = i
			break
		}
	}
	loop := append([]string(nil), stack[start:]...)

	low := 0
	for i, v := range loop {
		if v < loop[low] {
			low = i
		}
	}
	rotated := append(append([]string(nil), loop[low:]...), loop[:low]...)

	prev := rotated[len(rotated)-1]
	return Cycle{Path: rotated, Broken: [2]string{prev, rotated[0]}}
}

func removeEdge(g *DepGraph, from, to string) {
	adj := g.Adj[from]
	for i, v := range adj {
		if v == to {
			g.Adj[from] = append(adj[:i:i], adj[i+1:]...)
			return
		}
	}
}
