package extractor

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"codeport/internal/model"
)

// JavaScriptExtractor implements LanguageExtractor for JavaScript and for
// the JavaScript subset of TypeScript sources. Types are mostly opaque to
// this grammar, so arguments default to "Any" and inference refines them.
type JavaScriptExtractor struct{}

func (j *JavaScriptExtractor) GetLanguage() *sitter.Language {
	return javascript.GetLanguage()
}

func (j *JavaScriptExtractor) ExtractSkeleton(root *sitter.Node, source []byte, filePath string, sk *FileSkeleton) error {
	imported := make(map[string]string)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		j.extractTopLevel(root.NamedChild(i), source, filePath, sk, imported)
	}
	j.collectReferences(root, source, sk, imported)
	return nil
}

func (j *JavaScriptExtractor) extractTopLevel(n *sitter.Node, source []byte, filePath string, sk *FileSkeleton, imported map[string]string) {
	switch n.Type() {
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			j.extractTopLevel(decl, source, filePath, sk, imported)
		}
	case "function_declaration", "generator_function_declaration":
		sk.Functions = append(sk.Functions, j.extractFunction(n, source))
	case "class_declaration":
		sk.Classes = append(sk.Classes, j.extractClass(n, source))
	case "lexical_declaration", "variable_declaration":
		// const f = (x) => ... and const f = function (x) ...
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decl := n.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			if name == nil || value == nil {
				continue
			}
			switch value.Type() {
			case "arrow_function", "function_expression", "function":
				fn := j.extractFunction(value, source)
				fn.Name = name.Content(source)
				sk.Functions = append(sk.Functions, fn)
			}
		}
	case "import_statement":
		j.extractImport(n, source, filePath, sk, imported)
	case "expression_statement":
		j.extractRequire(n, source, filePath, sk, imported)
	}
}

func (j *JavaScriptExtractor) extractFunction(n *sitter.Node, source []byte) FunctionDecl {
	fn := FunctionDecl{
		ReturnType: "Any",
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = name.Content(source)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		fn.Arguments = j.extractParameters(params, source)
	} else if param := n.ChildByFieldName("parameter"); param != nil {
		// Single-argument arrow function without parentheses.
		fn.Arguments = []model.Argument{{Name: param.Content(source), Type: "Any"}}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "async" {
			fn.IsAsync = true
			break
		}
	}
	return fn
}

func (j *JavaScriptExtractor) extractParameters(params *sitter.Node, source []byte) []model.Argument {
	var args []model.Argument
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		arg := model.Argument{Type: "Any"}
		switch param.Type() {
		case "identifier":
			arg.Name = param.Content(source)
		case "assignment_pattern":
			if left := param.ChildByFieldName("left"); left != nil {
				arg.Name = left.Content(source)
			}
		case "rest_pattern", "object_pattern", "array_pattern":
			arg.Name = param.Content(source)
		default:
			continue
		}
		if arg.Name != "" {
			args = append(args, arg)
		}
	}
	return args
}

func (j *JavaScriptExtractor) extractClass(n *sitter.Node, source []byte) ClassDecl {
	cls := ClassDecl{
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = name.Content(source)
	}
	// class X extends Y: the heritage clause is a plain child.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "class_heritage" {
			continue
		}
		for k := 0; k < int(child.NamedChildCount()); k++ {
			base := child.NamedChild(k)
			switch base.Type() {
			case "identifier", "member_expression":
				cls.Superclasses = append(cls.Superclasses, base.Content(source))
			}
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_definition":
				cls.Methods = append(cls.Methods, j.extractMethodDef(member, source))
			case "field_definition", "public_field_definition":
				if prop := member.ChildByFieldName("property"); prop != nil {
					name := prop.Content(source)
					vis := "public"
					if strings.HasPrefix(name, "#") || strings.HasPrefix(name, "_") {
						vis = "private"
					}
					cls.Attributes = append(cls.Attributes, model.Attribute{Name: name, Type: "Any", Visibility: vis})
				}
			}
		}
	}
	return cls
}

func (j *JavaScriptExtractor) extractMethodDef(n *sitter.Node, source []byte) model.Method {
	m := model.Method{ReturnType: "Any"}
	if name := n.ChildByFieldName("name"); name != nil {
		m.Name = name.Content(source)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Arguments = j.extractParameters(params, source)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "async":
			m.IsAsync = true
		case "static":
			m.IsStatic = true
		}
	}
	return m
}

func (j *JavaScriptExtractor) extractImport(n *sitter.Node, source []byte, filePath string, sk *FileSkeleton, imported map[string]string) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return
	}
	module := stripStringQuotes(src.Content(source))
	sk.Imports = append(sk.Imports, ImportDecl{
		Module:        module,
		CandidatePath: jsModuleToPath(module, filePath),
	})

	// import X from "m", import {a, b as c} from "m", import * as ns.
	var bind func(node *sitter.Node)
	bind = func(node *sitter.Node) {
		switch node.Type() {
		case "identifier":
			imported[node.Content(source)] = module
		case "import_specifier":
			name := node.ChildByFieldName("name")
			if alias := node.ChildByFieldName("alias"); alias != nil {
				name = alias
			}
			if name != nil {
				imported[name.Content(source)] = module
			}
			return
		case "namespace_import":
			for i := 0; i < int(node.NamedChildCount()); i++ {
				if id := node.NamedChild(i); id.Type() == "identifier" {
					imported[id.Content(source)] = module
				}
			}
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			bind(node.NamedChild(i))
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "import_clause" {
			bind(child)
		}
	}
}

// extractRequire recognizes const x = require("m") at top level.
func (j *JavaScriptExtractor) extractRequire(n *sitter.Node, source []byte, filePath string, sk *FileSkeleton, imported map[string]string) {
	text := n.Content(source)
	if !strings.Contains(text, "require(") {
		return
	}
	start := strings.Index(text, "require(")
	rest := text[start+len("require("):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return
	}
	module := stripStringQuotes(strings.TrimSpace(rest[:end]))
	if module == "" {
		return
	}
	sk.Imports = append(sk.Imports, ImportDecl{
		Module:        module,
		CandidatePath: jsModuleToPath(module, filePath),
	})
	if eq := strings.IndexByte(text, '='); eq > 0 {
		lhs := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(text[:eq]), "const"), "let"))
		lhs = strings.TrimSpace(strings.TrimPrefix(lhs, "var"))
		if lhs != "" && !strings.ContainsAny(lhs, "{}[]., ") {
			imported[lhs] = module
		}
	}
}

func (j *JavaScriptExtractor) collectReferences(root *sitter.Node, source []byte, sk *FileSkeleton, imported map[string]string) {
	if len(imported) == 0 {
		return
	}
	seen := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			return
		case "identifier":
			name := n.Content(source)
			module, ok := imported[name]
			if !ok || seen[name] {
				return
			}
			seen[name] = true
			sk.References = append(sk.References, ReferenceDecl{
				Name:          name,
				TargetModule:  module,
				CandidatePath: jsModuleToPath(module, sk.Path),
				Line:          int(n.StartPoint().Row) + 1,
			})
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}

// jsModuleToPath maps a module specifier to a candidate project-relative
// path. Bare specifiers (npm packages) produce no candidate.
func jsModuleToPath(module, filePath string) string {
	if !strings.HasPrefix(module, ".") && !strings.HasPrefix(module, "/") {
		return ""
	}
	resolved := module
	if strings.HasPrefix(module, ".") {
		resolved = path.Join(path.Dir(filePath), module)
	}
	resolved = strings.TrimPrefix(resolved, "/")
	if path.Ext(resolved) == "" {
		resolved += ".js"
	}
	return resolved
}

func stripStringQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
