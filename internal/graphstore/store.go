package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"codeport/internal/model"
)

// Store is a project-scoped property graph over SQLite. Nodes and edges
// carry a label/type plus an open JSON property bag; upserts are idempotent
// per natural key with last-write-wins property merge.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Node is one stored node.
type Node struct {
	Label model.Label
	Key   string
	Props model.Props
}

// Edge is one stored directed edge.
type Edge struct {
	Type      model.RelType
	FromLabel model.Label
	FromKey   string
	ToLabel   model.Label
	ToKey     string
	Props     model.Props
}

// Ref addresses a node by label and natural key.
type Ref struct {
	Label model.Label
	Key   string
}

// Open creates or opens the graph database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, classify("open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, classify("ping", err)
	}

	s := &Store{db: db, logger: logger.Named("graphstore")}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			project_id TEXT NOT NULL,
			label      TEXT NOT NULL,
			key        TEXT NOT NULL,
			props      JSON NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
			PRIMARY KEY (project_id, label, key)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			project_id TEXT NOT NULL,
			rel_type   TEXT NOT NULL,
			from_label TEXT NOT NULL,
			from_key   TEXT NOT NULL,
			to_label   TEXT NOT NULL,
			to_key     TEXT NOT NULL,
			props      JSON NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
			PRIMARY KEY (project_id, rel_type, from_label, from_key, to_label, to_key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_project_label ON nodes(project_id, label);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_project_type ON edges(project_id, rel_type);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(project_id, from_label, from_key);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return classify("init schema", err)
		}
	}
	return nil
}

const upsertNodeSQL = `
	INSERT INTO nodes (project_id, label, key, props)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(project_id, label, key) DO UPDATE SET
		props = json_patch(nodes.props, excluded.props),
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')
`

const upsertEdgeSQL = `
	INSERT INTO edges (project_id, rel_type, from_label, from_key, to_label, to_key, props)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(project_id, rel_type, from_label, from_key, to_label, to_key) DO UPDATE SET
		props = json_patch(edges.props, excluded.props)
`

// UpsertNode merges props into the node identified by (label, key),
// creating it when absent.
func (s *Store) UpsertNode(ctx context.Context, projectID string, label model.Label, key string, props model.Props) error {
	raw, err := marshalProps(props)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertNodeSQL, projectID, string(label), key, raw)
	return classify("upsert node", err)
}

// UpsertEdge merges props into the edge from→to, creating it when absent.
// Both endpoints must already exist in the same project.
func (s *Store) UpsertEdge(ctx context.Context, projectID string, relType model.RelType, from, to Ref, props model.Props) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("upsert edge", err)
	}
	defer tx.Rollback()

	if err := upsertEdgeTx(ctx, tx, projectID, relType, from, to, props); err != nil {
		return err
	}
	return classify("upsert edge", tx.Commit())
}

func upsertEdgeTx(ctx context.Context, tx *sql.Tx, projectID string, relType model.RelType, from, to Ref, props model.Props) error {
	for _, ref := range []Ref{from, to} {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM nodes WHERE project_id = ? AND label = ? AND key = ?`,
			projectID, string(ref.Label), ref.Key).Scan(&one)
		if err == sql.ErrNoRows {
			return fmt.Errorf("edge %s: endpoint %s %q missing: %w", relType, ref.Label, ref.Key, ErrConstraint)
		}
		if err != nil {
			return classify("upsert edge", err)
		}
	}
	raw, err := marshalProps(props)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, upsertEdgeSQL,
		projectID, string(relType), string(from.Label), from.Key, string(to.Label), to.Key, raw)
	return classify("upsert edge", err)
}

// FindNode returns the property bag of one node, or ErrNotFound.
func (s *Store) FindNode(ctx context.Context, projectID string, label model.Label, key string) (model.Props, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT props FROM nodes WHERE project_id = ? AND label = ? AND key = ?`,
		projectID, string(label), key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %q: %w", label, key, ErrNotFound)
	}
	if err != nil {
		return nil, classify("find node", err)
	}
	return unmarshalProps(raw)
}

// NodesByLabel returns every node of a label within the project, ordered by
// natural key for deterministic iteration.
func (s *Store) NodesByLabel(ctx context.Context, projectID string, label model.Label) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, props FROM nodes WHERE project_id = ? AND label = ? ORDER BY key`,
		projectID, string(label))
	if err != nil {
		return nil, classify("nodes by label", err)
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, classify("nodes by label", err)
		}
		props, err := unmarshalProps(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Node{Label: label, Key: key, Props: props})
	}
	return out, classify("nodes by label", rows.Err())
}

// EdgesByType returns every edge of the given types within the project,
// ordered deterministically. The resolver and planner fetch once and run
// their graph algorithms in memory.
func (s *Store) EdgesByType(ctx context.Context, projectID string, relTypes ...model.RelType) ([]Edge, error) {
	if len(relTypes) == 0 {
		return nil, nil
	}
	query := `SELECT rel_type, from_label, from_key, to_label, to_key, props
		FROM edges WHERE project_id = ? AND rel_type IN (?` + repeat(",?", len(relTypes)-1) + `)
		ORDER BY rel_type, from_key, to_key`
	args := []any{projectID}
	for _, t := range relTypes {
		args = append(args, string(t))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("edges by type", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		var relType, fromLabel, toLabel string
		var raw []byte
		if err := rows.Scan(&relType, &fromLabel, &e.FromKey, &toLabel, &e.ToKey, &raw); err != nil {
			return nil, classify("edges by type", err)
		}
		e.Type = model.RelType(relType)
		e.FromLabel = model.Label(fromLabel)
		e.ToLabel = model.Label(toLabel)
		if e.Props, err = unmarshalProps(raw); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, classify("edges by type", rows.Err())
}

// OutEdges returns the edges of one relationship type leaving a node.
func (s *Store) OutEdges(ctx context.Context, projectID string, relType model.RelType, from Ref) ([]Edge, error) {
	edges, err := s.EdgesByType(ctx, projectID, relType)
	if err != nil {
		return nil, err
	}
	var out []Edge
	for _, e := range edges {
		if e.FromLabel == from.Label && e.FromKey == from.Key {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReplaceEdge deletes every relType edge leaving from and inserts a single
// new one. Used for functional relationships such as CLASSIFIES_AS, where
// re-classification replaces rather than accumulates.
func (s *Store) ReplaceEdge(ctx context.Context, projectID string, relType model.RelType, from, to Ref, props model.Props) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("replace edge", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM edges WHERE project_id = ? AND rel_type = ? AND from_label = ? AND from_key = ?`,
		projectID, string(relType), string(from.Label), from.Key)
	if err != nil {
		return classify("replace edge", err)
	}
	if err := upsertEdgeTx(ctx, tx, projectID, relType, from, to, props); err != nil {
		return err
	}
	return classify("replace edge", tx.Commit())
}

// CountNodes returns the number of nodes with the given label.
func (s *Store) CountNodes(ctx context.Context, projectID string, label model.Label) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes WHERE project_id = ? AND label = ?`,
		projectID, string(label)).Scan(&n)
	return n, classify("count nodes", err)
}

// CountEdges returns the number of edges with the given type.
func (s *Store) CountEdges(ctx context.Context, projectID string, relType model.RelType) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM edges WHERE project_id = ? AND rel_type = ?`,
		projectID, string(relType)).Scan(&n)
	return n, classify("count edges", err)
}

// PurgeProject removes a project's entire subgraph. Only explicit cleanup
// calls this; pipeline stages never hard-delete.
func (s *Store) PurgeProject(ctx context.Context, projectID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("purge project", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE project_id = ?`, projectID); err != nil {
		return classify("purge project", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE project_id = ?`, projectID); err != nil {
		return classify("purge project", err)
	}
	return classify("purge project", tx.Commit())
}

func marshalProps(props model.Props) ([]byte, error) {
	if props == nil {
		props = model.Props{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshal props: %w: %v", ErrConstraint, err)
	}
	return raw, nil
}

func unmarshalProps(raw []byte) (model.Props, error) {
	props := model.Props{}
	if len(raw) == 0 {
		return props, nil
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("unmarshal props: %w: %v", ErrConstraint, err)
	}
	return props, nil
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
