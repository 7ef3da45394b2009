package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeport/internal/graphstore"
	"codeport/internal/model"
	"codeport/internal/retry"
)

// targetStack is the rule table from legacy component types onto the
// migration target. Unrecognized component types deliberately have no row:
// those become feedback items instead of silent guesses.
var targetStack = map[model.ComponentType]model.TargetComponent{
	model.ComponentUI: {
		ID:      "react-frontend",
		Name:    "React Frontend",
		Version: "18",
		Type:    "ui",
	},
	model.ComponentLogic: {
		ID:      "go-service",
		Name:    "Go Service",
		Version: "1.24",
		Type:    "service",
	},
	model.ComponentData: {
		ID:      "postgres-repository",
		Name:    "PostgreSQL Repository",
		Version: "16",
		Type:    "data",
	},
	model.ComponentConfig: {
		ID:      "env-config",
		Name:    "Environment Configuration",
		Version: "",
		Type:    "config",
	},
}

// typeMappings translates legacy value types per source language.
var typeMappings = map[string][]model.TypeMapping{
	"python": {
		{SourceType: "str", TargetType: "string"},
		{SourceType: "int", TargetType: "int64"},
		{SourceType: "float", TargetType: "float64"},
		{SourceType: "bool", TargetType: "bool"},
		{SourceType: "bytes", TargetType: "[]byte"},
		{SourceType: "list", TargetType: "[]any"},
		{SourceType: "dict", TargetType: "map[string]any"},
		{SourceType: "None", TargetType: "nil"},
	},
	"javascript": {
		{SourceType: "string", TargetType: "string"},
		{SourceType: "number", TargetType: "float64"},
		{SourceType: "boolean", TargetType: "bool"},
		{SourceType: "object", TargetType: "map[string]any"},
		{SourceType: "Array", TargetType: "[]any"},
	},
}

// GenerateMappings maps every classified component onto the target stack.
// Components the rule table cannot place produce a Feedback item for a
// human decision; the stage itself still succeeds, since one exotic
// construct must not stall the rest of the migration.
func (p *Planner) GenerateMappings(ctx context.Context, projectID string) (int, int, error) {
	components, err := p.store.NodesByLabel(ctx, projectID, model.LabelComponent)
	if err != nil {
		return 0, 0, err
	}
	files, err := p.store.NodesByLabel(ctx, projectID, model.LabelFile)
	if err != nil {
		return 0, 0, err
	}
	languages := make(map[string]string, len(files))
	for _, f := range files {
		languages[f.Key] = f.Props.String("language")
	}

	mapped, unmappable := 0, 0
	for _, node := range components {
		ct := model.ComponentType(node.Props.String("type"))
		filePath := node.Props.String("file_path")

		target, ok := targetStack[ct]
		if !ok {
			fb := &model.Feedback{
				Issue:      "UnmappableConstructError",
				Component:  filePath,
				Suggestion: "assign a target component manually",
				Details:    model.Props{"component_type": string(ct)},
			}
			if err := p.store.WriteFeedback(ctx, projectID, fb); err != nil {
				return mapped, unmappable, err
			}
			unmappable++
			continue
		}

		mapping := model.Mapping{
			ID:           filePath,
			SourceRef:    filePath,
			TargetRef:    target.ID,
			TypeMappings: typeMappings[languages[filePath]],
		}

		batch := &graphstore.Batch{}
		compRef := graphstore.Ref{Label: model.LabelComponent, Key: node.Key}
		targetRef := batch.AddNode(model.LabelTargetComponent, target.ID, target.ToProps())
		mappingRef := batch.AddNode(model.LabelMapping, mapping.ID, mapping.ToProps())
		batch.AddEdge(model.RelMapsTo, compRef, mappingRef, nil)
		batch.AddEdge(model.RelTargets, mappingRef, targetRef, nil)

		if err := retry.DoIf(ctx, p.retryCfg, func() error {
			return p.store.ApplyBatch(ctx, projectID, batch)
		}, graphstore.IsRetryable); err != nil {
			return mapped, unmappable, err
		}
		mapped++
	}

	p.logger.Info("mappings generated",
		zap.String("project_id", projectID),
		zap.Int("mapped", mapped),
		zap.Int("unmappable", unmappable))
	return mapped, unmappable, nil
}

func actionsFor(ct model.ComponentType, target model.TargetComponent) []string {
	switch ct {
	case model.ComponentUI:
		return []string{
			fmt.Sprintf("rebuild view as %s component", target.Name),
			"port template bindings to props/state",
		}
	case model.ComponentData:
		return []string{
			fmt.Sprintf("translate schema and queries to %s", target.Name),
			"write data migration script",
		}
	case model.ComponentConfig:
		return []string{
			fmt.Sprintf("move settings into %s", target.Name),
			"document required environment variables",
		}
	default:
		return []string{
			fmt.Sprintf("port business logic to %s", target.Name),
			"cover ported behavior with tests",
		}
	}
}
