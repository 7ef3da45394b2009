package model

// Label identifies a node type in the metadata graph.
type Label string

const (
	LabelProject         Label = "Project"
	LabelFile            Label = "File"
	LabelFunction        Label = "Function"
	LabelClass           Label = "Class"
	LabelEnum            Label = "Enum"
	LabelExtension       Label = "Extension"
	LabelComponent       Label = "Component"
	LabelDependency      Label = "Dependency"
	LabelMapping         Label = "Mapping"
	LabelTargetComponent Label = "TargetComponent"
	LabelStrategy        Label = "Strategy"
	LabelReport          Label = "Report"
	LabelFeedback        Label = "Feedback"
)

// RelType identifies a directed relationship type between two nodes.
type RelType string

const (
	RelContains     RelType = "CONTAINS"
	RelHasFunction  RelType = "HAS_FUNCTION"
	RelHasClass     RelType = "HAS_CLASS"
	RelHasEnum      RelType = "HAS_ENUM"
	RelHasExtension RelType = "HAS_EXTENSION"
	RelImports      RelType = "IMPORTS"
	RelReferences   RelType = "REFERENCES"
	RelDependsOn    RelType = "DEPENDS_ON"
	RelClassifiesAs RelType = "CLASSIFIES_AS"
	RelMapsTo       RelType = "MAPS_TO"
	RelTargets      RelType = "TARGETS"
	RelPlannedIn    RelType = "PLANNED_IN"
	RelReportedIn   RelType = "REPORTED_IN"
	RelFeedbackFor  RelType = "FEEDBACK_FOR"
)

// Props is the open property bag attached to every node and edge. Unknown
// keys round-trip through the store untouched, so legacy-language constructs
// that have no named field still survive export.
type Props map[string]any

// Clone returns a shallow copy of the bag.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge applies src on top of p, last write wins per key.
func (p Props) Merge(src Props) {
	for k, v := range src {
		p[k] = v
	}
}

// String reads a string property, returning "" when absent or mistyped.
func (p Props) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Int64 reads an integer property, tolerating the float64 that JSON
// round-trips produce.
func (p Props) Int64(key string) int64 {
	switch v := p[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Bool reads a boolean property, returning false when absent.
func (p Props) Bool(key string) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return false
}

// Source records which producer supplied a field's value.
type Source string

const (
	SourceParser    Source = "parser"
	SourceInference Source = "inference"
)

// Provenance maps a field name to the producer that supplied its value.
// The extraction engine writes it alongside every record that mixes
// syntactic and inferred data.
type Provenance map[string]Source

// ComponentType is the coarse classification assigned to a file.
type ComponentType string

const (
	ComponentUI      ComponentType = "ui"
	ComponentLogic   ComponentType = "logic"
	ComponentData    ComponentType = "data"
	ComponentConfig  ComponentType = "config"
	ComponentUnknown ComponentType = "unknown"
)

// Argument is a named, typed function parameter.
type Argument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Attribute is a class attribute with visibility.
type Attribute struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Visibility string `json:"visibility"`
}

// Method is a function owned by a class or extension.
type Method struct {
	Name       string     `json:"name"`
	ReturnType string     `json:"return_type"`
	Arguments  []Argument `json:"arguments"`
	Decorators []string   `json:"decorators"`
	IsStatic   bool       `json:"is_static"`
	IsAsync    bool       `json:"is_async"`
	Doc        string     `json:"doc,omitempty"`
}

// TypeMapping records a single source-type to target-type translation
// inside a Mapping.
type TypeMapping struct {
	SourceType string `json:"source_type"`
	TargetType string `json:"target_type"`
}
