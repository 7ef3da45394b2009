package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/resolver"
)

func newTestPlanner(t *testing.T) (*Planner, *graphstore.Store) {
	t.Helper()
	store, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	res := resolver.New(store, resolver.NewDefaultChain(nil, 0), resolver.Options{ClosureDepth: 3}, zap.NewNop())
	return New(store, res, nil, zap.NewNop()), store
}

func seedClassified(t *testing.T, store *graphstore.Store, projectID string, files map[string]model.ComponentType) {
	t.Helper()
	ctx := context.Background()
	p := model.Project{ID: projectID, Name: "t", Status: model.StatusClassified}
	require.NoError(t, store.UpsertNode(ctx, projectID, model.LabelProject, projectID, p.ToProps()))
	for path, ct := range files {
		f := model.File{Path: path, Language: "python"}
		require.NoError(t, store.UpsertNode(ctx, projectID, model.LabelFile, path, f.ToProps()))
		c := model.Component{ID: path, FilePath: path, Type: ct}
		require.NoError(t, store.UpsertNode(ctx, projectID, model.LabelComponent, path, c.ToProps()))
		require.NoError(t, store.UpsertEdge(ctx, projectID, model.RelClassifiesAs,
			graphstore.Ref{Label: model.LabelFile, Key: path},
			graphstore.Ref{Label: model.LabelComponent, Key: path}, nil))
	}
}

func linkImports(t *testing.T, store *graphstore.Store, projectID string, pairs [][2]string) {
	t.Helper()
	for _, p := range pairs {
		require.NoError(t, store.UpsertEdge(context.Background(), projectID, model.RelImports,
			graphstore.Ref{Label: model.LabelFile, Key: p[0]},
			graphstore.Ref{Label: model.LabelFile, Key: p[1]}, nil))
	}
}

func TestGenerateMappings(t *testing.T) {
	p, store := newTestPlanner(t)
	ctx := context.Background()
	seedClassified(t, store, "p1", map[string]model.ComponentType{
		"view.py":    model.ComponentUI,
		"service.py": model.ComponentLogic,
		"weird.bin":  model.ComponentUnknown,
	})

	mapped, unmappable, err := p.GenerateMappings(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, mapped)
	assert.Equal(t, 1, unmappable)

	props, err := store.FindNode(ctx, "p1", model.LabelMapping, "service.py")
	require.NoError(t, err)
	assert.Equal(t, "go-service", props.String("target_ref"))

	targets, err := store.NodesByLabel(ctx, "p1", model.LabelTargetComponent)
	require.NoError(t, err)
	assert.Len(t, targets, 2)

	// The unmappable component produced a feedback item, not a mapping.
	fbs, err := store.NodesByLabel(ctx, "p1", model.LabelFeedback)
	require.NoError(t, err)
	require.Len(t, fbs, 1)
	assert.Equal(t, "UnmappableConstructError", fbs[0].Props.String("issue"))
	assert.Equal(t, "weird.bin", fbs[0].Props.String("component"))

	maps, err := store.EdgesByType(ctx, "p1", model.RelMapsTo)
	require.NoError(t, err)
	assert.Len(t, maps, 2)
}

func TestBuildStrategies_DependenciesFirst(t *testing.T) {
	p, store := newTestPlanner(t)
	ctx := context.Background()
	seedClassified(t, store, "p1", map[string]model.ComponentType{
		"app.py":  model.ComponentLogic,
		"db.py":   model.ComponentData,
		"util.py": model.ComponentLogic,
	})
	// app depends on db and util; db depends on util.
	linkImports(t, store, "p1", [][2]string{
		{"app.py", "db.py"}, {"app.py", "util.py"}, {"db.py", "util.py"},
	})

	n, err := p.BuildStrategies(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	priority := func(key string) int64 {
		props, err := store.FindNode(ctx, "p1", model.LabelStrategy, key)
		require.NoError(t, err)
		return props.Int64("priority")
	}
	assert.Less(t, priority("util.py"), priority("db.py"))
	assert.Less(t, priority("db.py"), priority("app.py"))

	planned, err := store.EdgesByType(ctx, "p1", model.RelPlannedIn)
	require.NoError(t, err)
	assert.Len(t, planned, 3)
}

func TestBuildStrategies_CycleStillOrders(t *testing.T) {
	p, store := newTestPlanner(t)
	ctx := context.Background()
	seedClassified(t, store, "p1", map[string]model.ComponentType{
		"a.py": model.ComponentLogic,
		"b.py": model.ComponentLogic,
	})
	linkImports(t, store, "p1", [][2]string{
		{"a.py", "b.py"}, {"b.py", "a.py"},
	})

	n, err := p.BuildStrategies(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a cycle must not block planning")

	reports, err := store.NodesByLabel(ctx, "p1", model.LabelReport)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "CircularDependency", reports[0].Props.String("type"))
}

func TestMigrationOrder_StableTies(t *testing.T) {
	g := &resolver.DepGraph{
		Order: []string{"a.py", "b.py", "c.py"},
		Adj:   map[string][]string{},
	}
	order := migrationOrder(g)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, order, "independent files order by path")
}
