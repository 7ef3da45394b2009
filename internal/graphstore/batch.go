package graphstore

import (
	"context"

	"github.com/google/uuid"

	"codeport/internal/model"
)

// NodeSpec is one node inside a batch.
type NodeSpec struct {
	Label model.Label
	Key   string
	Props model.Props
}

// EdgeSpec is one edge inside a batch. Endpoints may be created earlier in
// the same batch.
type EdgeSpec struct {
	Type  model.RelType
	From  Ref
	To    Ref
	Props model.Props
}

// Batch groups all writes derived from one extracted file. Applied
// atomically: either every node and edge lands, or none do.
type Batch struct {
	Nodes []NodeSpec
	Edges []EdgeSpec
}

// AddNode appends a node to the batch and returns its Ref.
func (b *Batch) AddNode(label model.Label, key string, props model.Props) Ref {
	b.Nodes = append(b.Nodes, NodeSpec{Label: label, Key: key, Props: props})
	return Ref{Label: label, Key: key}
}

// AddEdge appends an edge to the batch.
func (b *Batch) AddEdge(relType model.RelType, from, to Ref, props model.Props) {
	b.Edges = append(b.Edges, EdgeSpec{Type: relType, From: from, To: to, Props: props})
}

// ApplyBatch writes the batch in a single transaction. Nodes first, then
// edges; an endpoint missing from both the batch and the store fails the
// whole batch with ErrConstraint.
func (s *Store) ApplyBatch(ctx context.Context, projectID string, batch *Batch) error {
	if batch == nil || (len(batch.Nodes) == 0 && len(batch.Edges) == 0) {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("apply batch", err)
	}
	defer tx.Rollback()

	for _, n := range batch.Nodes {
		raw, err := marshalProps(n.Props)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertNodeSQL, projectID, string(n.Label), n.Key, raw); err != nil {
			return classify("apply batch", err)
		}
	}
	for _, e := range batch.Edges {
		if err := upsertEdgeTx(ctx, tx, projectID, e.Type, e.From, e.To, e.Props); err != nil {
			return err
		}
	}
	return classify("apply batch", tx.Commit())
}

// WriteReport appends a Report node linked to the project. Reports are an
// append-only audit trail; every call creates a fresh node.
func (s *Store) WriteReport(ctx context.Context, projectID string, report *model.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	props := report.ToProps()
	props["project_id"] = projectID

	batch := &Batch{}
	ref := batch.AddNode(model.LabelReport, report.ID, props)
	batch.AddEdge(model.RelReportedIn, Ref{Label: model.LabelProject, Key: projectID}, ref, nil)
	return s.ApplyBatch(ctx, projectID, batch)
}

// WriteFeedback appends a Feedback node linked to the project.
func (s *Store) WriteFeedback(ctx context.Context, projectID string, fb *model.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	props := fb.ToProps()
	props["project_id"] = projectID

	batch := &Batch{}
	ref := batch.AddNode(model.LabelFeedback, fb.ID, props)
	batch.AddEdge(model.RelFeedbackFor, Ref{Label: model.LabelProject, Key: projectID}, ref, nil)
	return s.ApplyBatch(ctx, projectID, batch)
}
