package extractor

import (
	"fmt"

	"codeport/internal/model"
)

// FileSkeleton is the structural result of one incremental-parse pass. Every
// field here carries syntactic confidence; the inference layer only fills
// gaps the parser left open.
type FileSkeleton struct {
	Path       string          `json:"path"`
	Language   string          `json:"language"`
	Functions  []FunctionDecl  `json:"functions,omitempty"`
	Classes    []ClassDecl     `json:"classes,omitempty"`
	Enums      []EnumDecl      `json:"enums,omitempty"`
	Extensions []ExtensionDecl `json:"extensions,omitempty"`
	Imports    []ImportDecl    `json:"imports,omitempty"`
	References []ReferenceDecl `json:"references,omitempty"`
}

// FunctionDecl is a free function or top-level method declaration.
type FunctionDecl struct {
	Name       string           `json:"name"`
	ReturnType string           `json:"return_type"`
	Arguments  []model.Argument `json:"arguments"`
	Decorators []string         `json:"decorators"`
	IsStatic   bool             `json:"is_static"`
	IsAsync    bool             `json:"is_async"`
	Doc        string           `json:"doc,omitempty"`
	StartLine  int              `json:"start_line"`
	EndLine    int              `json:"end_line"`
}

// ClassDecl is a class-like declaration. Kind stays open: the parser fills
// what it can prove (abstract, interface, singleton via metaclass) and
// leaves "" for inference to resolve.
type ClassDecl struct {
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	IsStatic     bool              `json:"is_static"`
	IsFinal      bool              `json:"is_final"`
	Superclasses []string          `json:"superclasses"`
	Interfaces   []string          `json:"interfaces"`
	Methods      []model.Method    `json:"methods"`
	Attributes   []model.Attribute `json:"attributes"`
	Doc          string            `json:"doc,omitempty"`
	StartLine    int               `json:"start_line"`
	EndLine      int               `json:"end_line"`
}

// EnumDecl is a named ordered value list.
type EnumDecl struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Doc    string   `json:"doc,omitempty"`
}

// ExtensionDecl is attached behavior on an existing type. Static parsing
// rarely proves these; they mostly arrive from inference.
type ExtensionDecl struct {
	Name     string         `json:"name"`
	BaseType string         `json:"base_type"`
	Methods  []model.Method `json:"methods"`
}

// ImportDecl is a module import with its candidate project-relative path.
// The path is tentative: whether it names a project file or an external
// dependency is decided in the cross-file resolution pass.
type ImportDecl struct {
	Module        string `json:"module"`
	CandidatePath string `json:"candidate_path"`
}

// ReferenceDecl is a usage of an imported module outside its import
// statement.
type ReferenceDecl struct {
	Name          string `json:"name"`
	TargetModule  string `json:"target_module"`
	CandidatePath string `json:"candidate_path"`
	Line          int    `json:"line"`
}

// Empty reports whether the parse produced nothing at all.
func (s *FileSkeleton) Empty() bool {
	return len(s.Functions) == 0 && len(s.Classes) == 0 && len(s.Enums) == 0 &&
		len(s.Extensions) == 0 && len(s.Imports) == 0 && len(s.References) == 0
}

// ParseError marks a file whose contents could not be parsed. It isolates
// the failure to that file; extraction of the rest of the project continues.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
