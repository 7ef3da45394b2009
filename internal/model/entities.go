package model

import "time"

// Timestamp is the wire format for created_at / updated_at properties.
const Timestamp = time.RFC3339

// Status is the orchestrator's per-project state machine value.
type Status string

const (
	StatusUploaded          Status = "uploaded"
	StatusStructureAnalyzed Status = "structure_analyzed"
	StatusContentAnalyzed   Status = "content_analyzed"
	StatusClassified        Status = "classified"
	StatusMapped            Status = "mapped"
	StatusStrategized       Status = "strategized"
	StatusNeedsFeedback     Status = "needs_feedback"
	StatusDone              Status = "done"
	StatusFailed            Status = "failed"
)

// Terminal reports whether no further pipeline stage may run from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Project is the root of a per-project subgraph. Its natural key is the
// project id; all other entities carry the same id and never link across
// projects.
type Project struct {
	ID        string
	Name      string
	SourceDir string
	Status    Status
	Extra     Props
}

// File is a leaf of the structural scan, keyed by its project-relative path.
type File struct {
	Path     string
	Language string
	Size     int64
	Extra    Props
}

// Function is a free function or method extracted from a file.
type Function struct {
	ID         string
	Name       string
	ReturnType string
	Arguments  []Argument
	Decorators []string
	IsStatic   bool
	IsAsync    bool
	Doc        string
	Provenance Provenance
	Extra      Props
}

// Class is an extracted class-like construct. Kind is an open tag
// (plain, singleton, abstract, interface, ...) rather than a closed enum so
// unforeseen legacy constructs need no schema change.
type Class struct {
	ID           string
	Name         string
	Kind         string
	IsStatic     bool
	IsFinal      bool
	Superclasses []string
	Interfaces   []string
	Methods      []Method
	Attributes   []Attribute
	Doc          string
	Provenance   Provenance
	Extra        Props
}

// Enum is a named, ordered value list.
type Enum struct {
	ID     string
	Name   string
	Values []string
	Doc    string
	Extra  Props
}

// Extension represents attached behavior on an existing type (open classes,
// categories, extension methods).
type Extension struct {
	ID       string
	Name     string
	BaseType string
	Methods  []Method
	Extra    Props
}

// Component is the derived coarse classification of a file.
type Component struct {
	ID       string
	FilePath string
	Type     ComponentType
	Extra    Props
}

// Dependency is an external or internal module a file depends on.
type Dependency struct {
	ID      string
	Name    string
	Version string
	Type    string // "external" | "internal"
	Extra   Props
}

// Mapping connects a source component (or entity) to its migration target.
type Mapping struct {
	ID           string
	SourceRef    string
	TargetRef    string
	TypeMappings []TypeMapping
	IsCustom     bool
	Extra        Props
}

// TargetComponent describes a component of the target stack.
type TargetComponent struct {
	ID      string
	Name    string
	Version string
	Type    string
	Extra   Props
}

// Strategy is one scheduled migration step. Priority imposes a total order,
// lower values migrate earlier; ties break by insertion order.
type Strategy struct {
	ID           string
	ComponentRef string
	Priority     int
	Actions      []string
	Extra        Props
}

// Report is an append-only audit record written by any stage on anomaly.
type Report struct {
	ID      string
	Type    string
	Message string
	Details Props
}

// Feedback records an unresolved legacy construct routed to a human.
type Feedback struct {
	ID         string
	Issue      string
	Component  string
	Suggestion string
	Details    Props
}
