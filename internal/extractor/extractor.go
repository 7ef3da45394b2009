package extractor

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor runs the incremental-parse pass for one language.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// ForLanguage returns an extractor for the language tag, or false when the
// language has no structural parser. Unsupported languages are not an
// error: their files go straight to the inference path.
func ForLanguage(lang string) (*Extractor, bool) {
	var langExt LanguageExtractor
	switch lang {
	case "python":
		langExt = &PythonExtractor{}
	case "javascript", "typescript":
		langExt = &JavaScriptExtractor{}
	default:
		return nil, false
	}
	return &Extractor{langExtractor: langExt, langName: lang}, true
}

// Supported reports whether a structural parser exists for the language.
func Supported(lang string) bool {
	_, ok := ForLanguage(lang)
	return ok
}

// Extract parses source and returns its structural skeleton. Deterministic
// and side-effect-free. A file whose tree is broken beyond recovery yields
// a *ParseError; a tree with localized syntax errors still produces the
// parts that did parse.
func (e *Extractor) Extract(ctx context.Context, filePath string, source []byte) (*FileSkeleton, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Path: filePath, Err: err}
	}

	root := tree.RootNode()
	sk := &FileSkeleton{Path: filePath, Language: e.langName}
	if err := e.langExtractor.ExtractSkeleton(root, source, filePath, sk); err != nil {
		return nil, &ParseError{Path: filePath, Err: err}
	}

	if root.HasError() && sk.Empty() {
		return nil, &ParseError{Path: filePath, Err: fmt.Errorf("no parsable declarations")}
	}
	return sk, nil
}
