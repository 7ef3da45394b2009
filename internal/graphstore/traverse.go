package graphstore

import (
	"context"

	"codeport/internal/model"
)

// Traverse computes the set of node keys reachable from start by following
// edges of the given types, up to maxHops. maxHops <= 0 means unbounded.
// Cycle-safe: each node is visited once, so traversal terminates even when
// the edges form cycles. The start key itself is not included.
func (s *Store) Traverse(ctx context.Context, projectID string, start Ref, relTypes []model.RelType, maxHops int) (map[string]bool, error) {
	edges, err := s.EdgesByType(ctx, projectID, relTypes...)
	if err != nil {
		return nil, err
	}

	adj := make(map[string][]string)
	for _, e := range edges {
		if e.FromLabel != start.Label || e.ToLabel != start.Label {
			continue
		}
		adj[e.FromKey] = append(adj[e.FromKey], e.ToKey)
	}

	reached := make(map[string]bool)
	frontier := []string{start.Key}
	for hop := 0; len(frontier) > 0; hop++ {
		if maxHops > 0 && hop >= maxHops {
			break
		}
		var next []string
		for _, key := range frontier {
			for _, to := range adj[key] {
				if to == start.Key || reached[to] {
					continue
				}
				reached[to] = true
				next = append(next, to)
			}
		}
		frontier = next
	}
	return reached, nil
}
