package graphstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"codeport/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "graph.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *Store, projectID string) {
	t.Helper()
	err := s.UpsertNode(context.Background(), projectID, model.LabelProject, projectID,
		model.Props{"name": "test", "status": "uploaded"})
	require.NoError(t, err)
}

func TestUpsertNode_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.UpsertNode(ctx, "p1", model.LabelFile, "main.py",
			model.Props{"language": "python", "size": 42})
		require.NoError(t, err)
	}

	n, err := s.CountNodes(ctx, "p1", model.LabelFile)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertNode_MergesProps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelFile, "main.py",
		model.Props{"language": "python", "size": 42}))
	require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelFile, "main.py",
		model.Props{"size": 99, "parse_status": "ok"}))

	props, err := s.FindNode(ctx, "p1", model.LabelFile, "main.py")
	require.NoError(t, err)
	assert.Equal(t, "python", props.String("language"))
	assert.Equal(t, int64(99), props.Int64("size"))
	assert.Equal(t, "ok", props.String("parse_status"))
}

func TestFindNode_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindNode(context.Background(), "p1", model.LabelFile, "nope.py")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertEdge_MissingEndpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProject(t, s, "p1")

	err := s.UpsertEdge(ctx, "p1", model.RelContains,
		Ref{Label: model.LabelProject, Key: "p1"},
		Ref{Label: model.LabelFile, Key: "ghost.py"}, nil)
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestApplyBatch_Atomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProject(t, s, "p1")

	batch := &Batch{}
	fileRef := batch.AddNode(model.LabelFile, "a.py", model.Props{"language": "python"})
	batch.AddEdge(model.RelContains, Ref{Label: model.LabelProject, Key: "p1"}, fileRef, nil)
	// Edge to a node that exists nowhere fails the whole batch.
	batch.AddEdge(model.RelImports, fileRef, Ref{Label: model.LabelFile, Key: "ghost.py"}, nil)

	err := s.ApplyBatch(ctx, "p1", batch)
	require.ErrorIs(t, err, ErrConstraint)

	n, err := s.CountNodes(ctx, "p1", model.LabelFile)
	require.NoError(t, err)
	assert.Zero(t, n, "failed batch must leave no nodes behind")
}

func TestApplyBatch_EdgesWithinBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProject(t, s, "p1")

	batch := &Batch{}
	a := batch.AddNode(model.LabelFile, "a.py", model.Props{"language": "python"})
	b := batch.AddNode(model.LabelFile, "b.py", model.Props{"language": "python"})
	batch.AddEdge(model.RelImports, a, b, model.Props{"module": "b"})
	require.NoError(t, s.ApplyBatch(ctx, "p1", batch))

	edges, err := s.EdgesByType(ctx, "p1", model.RelImports)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "a.py", edges[0].FromKey)
	assert.Equal(t, "b.py", edges[0].ToKey)
	assert.Equal(t, "b", edges[0].Props.String("module"))
}

func TestProjectIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelFile, "a.py", nil))
	require.NoError(t, s.UpsertNode(ctx, "p2", model.LabelFile, "a.py", model.Props{"language": "python"}))

	n1, err := s.CountNodes(ctx, "p1", model.LabelFile)
	require.NoError(t, err)
	n2, err := s.CountNodes(ctx, "p2", model.LabelFile)
	require.NoError(t, err)
	assert.Equal(t, 1, n1)
	assert.Equal(t, 1, n2)

	props, err := s.FindNode(ctx, "p1", model.LabelFile, "a.py")
	require.NoError(t, err)
	assert.Empty(t, props.String("language"))
}

func TestReplaceEdge_Functional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelFile, "a.py", nil))
	require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelComponent, "c-ui", nil))
	require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelComponent, "c-logic", nil))

	from := Ref{Label: model.LabelFile, Key: "a.py"}
	require.NoError(t, s.ReplaceEdge(ctx, "p1", model.RelClassifiesAs, from,
		Ref{Label: model.LabelComponent, Key: "c-ui"}, nil))
	require.NoError(t, s.ReplaceEdge(ctx, "p1", model.RelClassifiesAs, from,
		Ref{Label: model.LabelComponent, Key: "c-logic"}, nil))

	edges, err := s.OutEdges(ctx, "p1", model.RelClassifiesAs, from)
	require.NoError(t, err)
	require.Len(t, edges, 1, "re-classification must replace, not accumulate")
	assert.Equal(t, "c-logic", edges[0].ToKey)
}

func TestTraverse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// a -> b -> c -> a (cycle), c -> d
	for _, key := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.UpsertNode(ctx, "p1", model.LabelFile, key, nil))
	}
	link := func(from, to string) {
		require.NoError(t, s.UpsertEdge(ctx, "p1", model.RelImports,
			Ref{Label: model.LabelFile, Key: from},
			Ref{Label: model.LabelFile, Key: to}, nil))
	}
	link("a", "b")
	link("b", "c")
	link("c", "a")
	link("c", "d")

	start := Ref{Label: model.LabelFile, Key: "a"}
	rels := []model.RelType{model.RelImports}

	full, err := s.Traverse(ctx, "p1", start, rels, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true, "c": true, "d": true}, full)

	bounded, err := s.Traverse(ctx, "p1", start, rels, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true, "c": true}, bounded)
}

func TestWriteReport_LinksToProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProject(t, s, "p1")

	err := s.WriteReport(ctx, "p1", &model.Report{
		Type:    "MalformedInputError",
		Message: "could not parse broken.py",
	})
	require.NoError(t, err)

	n, err := s.CountNodes(ctx, "p1", model.LabelReport)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	edges, err := s.EdgesByType(ctx, "p1", model.RelReportedIn)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, model.LabelProject, edges[0].FromLabel)
}

func TestPurgeProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProject(t, s, "p1")
	seedProject(t, s, "p2")

	require.NoError(t, s.PurgeProject(ctx, "p1"))

	n1, err := s.CountNodes(ctx, "p1", model.LabelProject)
	require.NoError(t, err)
	n2, err := s.CountNodes(ctx, "p2", model.LabelProject)
	require.NoError(t, err)
	assert.Zero(t, n1)
	assert.Equal(t, 1, n2)
}
