// Package export serializes a project's subgraph into a portable JSON
// document for downstream migration tooling.
package export

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"time"

	"codeport/internal/graphstore"
	"codeport/internal/model"
)

// Document is the export envelope. Node and edge properties are carried as
// open bags, so properties written by any stage, named or not, survive the
// round trip.
type Document struct {
	Project    *model.Project `json:"project"`
	ExportedAt string         `json:"exported_at"`
	Nodes      []Node         `json:"nodes"`
	Edges      []Edge         `json:"edges"`
	Summary    Summary        `json:"summary"`
}

type Node struct {
	Label model.Label `json:"label"`
	Key   string      `json:"key"`
	Props model.Props `json:"props,omitempty"`
}

type Edge struct {
	Type      model.RelType `json:"type"`
	FromLabel model.Label   `json:"from_label"`
	FromKey   string        `json:"from_key"`
	ToLabel   model.Label   `json:"to_label"`
	ToKey     string        `json:"to_key"`
	Props     model.Props   `json:"props,omitempty"`
}

// Summary counts the exported graph by entity and relationship type.
type Summary struct {
	Nodes map[model.Label]int   `json:"nodes"`
	Edges map[model.RelType]int `json:"edges"`
}

var exportLabels = []model.Label{
	model.LabelProject,
	model.LabelFile,
	model.LabelFunction,
	model.LabelClass,
	model.LabelEnum,
	model.LabelExtension,
	model.LabelComponent,
	model.LabelDependency,
	model.LabelMapping,
	model.LabelTargetComponent,
	model.LabelStrategy,
	model.LabelReport,
	model.LabelFeedback,
}

var exportRelTypes = []model.RelType{
	model.RelContains,
	model.RelHasFunction,
	model.RelHasClass,
	model.RelHasEnum,
	model.RelHasExtension,
	model.RelImports,
	model.RelReferences,
	model.RelDependsOn,
	model.RelClassifiesAs,
	model.RelMapsTo,
	model.RelTargets,
	model.RelPlannedIn,
	model.RelReportedIn,
	model.RelFeedbackFor,
}

// ExportGraph assembles the full subgraph of one project. Output order is
// fixed (labels and rel types in schema order, keys sorted within) so two
// exports of the same graph are byte-identical.
func ExportGraph(ctx context.Context, store *graphstore.Store, projectID string) (*Document, error) {
	props, err := store.FindNode(ctx, projectID, model.LabelProject, projectID)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Project:    model.ProjectFromProps(props),
		ExportedAt: time.Now().UTC().Format(model.Timestamp),
		Summary: Summary{
			Nodes: make(map[model.Label]int),
			Edges: make(map[model.RelType]int),
		},
	}

	for _, label := range exportLabels {
		nodes, err := store.NodesByLabel(ctx, projectID, label)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			doc.Nodes = append(doc.Nodes, Node{Label: n.Label, Key: n.Key, Props: n.Props})
		}
		if len(nodes) > 0 {
			doc.Summary.Nodes[label] = len(nodes)
		}
	}

	edges, err := store.EdgesByType(ctx, projectID, exportRelTypes...)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Type != edges[j].Type {
			return relRank(edges[i].Type) < relRank(edges[j].Type)
		}
		if edges[i].FromKey != edges[j].FromKey {
			return edges[i].FromKey < edges[j].FromKey
		}
		return edges[i].ToKey < edges[j].ToKey
	})
	for _, e := range edges {
		doc.Edges = append(doc.Edges, Edge{
			Type:      e.Type,
			FromLabel: e.FromLabel,
			FromKey:   e.FromKey,
			ToLabel:   e.ToLabel,
			ToKey:     e.ToKey,
			Props:     e.Props,
		})
		doc.Summary.Edges[e.Type]++
	}
	return doc, nil
}

// WriteJSON streams the document as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func relRank(rt model.RelType) int {
	for i, r := range exportRelTypes {
		if r == rt {
			return i
		}
	}
	return len(exportRelTypes)
}
