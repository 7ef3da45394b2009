package extractor

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codeport/internal/model"
)

// PythonExtractor implements LanguageExtractor for Python sources. It
// recovers the same structural facts the legacy analyzer read off the AST:
// functions with typed argument lists, classes with methods and attributes,
// Enum subclasses as enum value lists, and import/reference targets.
type PythonExtractor struct{}

func (p *PythonExtractor) GetLanguage() *sitter.Language {
	return python.GetLanguage()
}

func (p *PythonExtractor) ExtractSkeleton(root *sitter.Node, source []byte, filePath string, sk *FileSkeleton) error {
	imported := make(map[string]string) // local alias -> full module name

	for i := 0; i < int(root.NamedChildCount()); i++ {
		p.extractTopLevel(root.NamedChild(i), source, filePath, sk, imported, nil)
	}
	p.collectReferences(root, source, sk, imported)
	return nil
}

func (p *PythonExtractor) extractTopLevel(n *sitter.Node, source []byte, filePath string, sk *FileSkeleton, imported map[string]string, decorators []string) {
	switch n.Type() {
	case "decorated_definition":
		var decs []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "decorator" {
				decs = append(decs, normalizeDecorator(child.Content(source)))
			}
		}
		if def := n.ChildByFieldName("definition"); def != nil {
			p.extractTopLevel(def, source, filePath, sk, imported, decs)
		}
	case "function_definition":
		sk.Functions = append(sk.Functions, p.extractFunction(n, source, decorators))
	case "class_definition":
		cls := p.extractClass(n, source, decorators)
		if isEnumClass(cls.Superclasses) {
			sk.Enums = append(sk.Enums, EnumDecl{
				Name:   cls.Name,
				Values: attributeNames(cls.Attributes),
				Doc:    cls.Doc,
			})
			return
		}
		sk.Classes = append(sk.Classes, cls)
	case "import_statement", "import_from_statement", "future_import_statement":
		p.extractImport(n, source, filePath, sk, imported)
	}
}

func (p *PythonExtractor) extractFunction(n *sitter.Node, source []byte, decorators []string) FunctionDecl {
	fn := FunctionDecl{
		ReturnType: "Any",
		Decorators: decorators,
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = name.Content(source)
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnType = ret.Content(source)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		fn.Arguments = p.extractParameters(params, source)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Doc = docstring(body, source)
	}
	// "async def" keeps the async keyword as a plain child of the definition.
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "async" {
			fn.IsAsync = true
			break
		}
	}
	for _, d := range decorators {
		if d == "@staticmethod" {
			fn.IsStatic = true
			break
		}
	}
	return fn
}

func (p *PythonExtractor) extractParameters(params *sitter.Node, source []byte) []model.Argument {
	var args []model.Argument
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		arg := model.Argument{Type: "Any"}
		switch param.Type() {
		case "identifier":
			arg.Name = param.Content(source)
		case "typed_parameter":
			if param.NamedChildCount() > 0 {
				arg.Name = param.NamedChild(0).Content(source)
			}
			if t := param.ChildByFieldName("type"); t != nil {
				arg.Type = t.Content(source)
			}
		case "default_parameter":
			if name := param.ChildByFieldName("name"); name != nil {
				arg.Name = name.Content(source)
			}
		case "typed_default_parameter":
			if name := param.ChildByFieldName("name"); name != nil {
				arg.Name = name.Content(source)
			}
			if t := param.ChildByFieldName("type"); t != nil {
				arg.Type = t.Content(source)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
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

func (p *PythonExtractor) extractClass(n *sitter.Node, source []byte, decorators []string) ClassDecl {
	cls := ClassDecl{
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = name.Content(source)
	}

	hasMetaclass := false
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			arg := supers.NamedChild(i)
			switch arg.Type() {
			case "identifier", "attribute":
				base := arg.Content(source)
				if base == "Protocol" {
					cls.Interfaces = append(cls.Interfaces, base)
					continue
				}
				cls.Superclasses = append(cls.Superclasses, base)
			case "keyword_argument":
				if kw := arg.ChildByFieldName("name"); kw != nil && kw.Content(source) == "metaclass" {
					hasMetaclass = true
				}
			}
		}
	}

	abstract := false
	if body := n.ChildByFieldName("body"); body != nil {
		cls.Doc = docstring(body, source)
		for i := 0; i < int(body.NamedChildCount()); i++ {
			stmt := body.NamedChild(i)
			switch stmt.Type() {
			case "function_definition":
				cls.Methods = append(cls.Methods, p.extractMethod(stmt, source, nil))
			case "decorated_definition":
				var decs []string
				for j := 0; j < int(stmt.NamedChildCount()); j++ {
					if c := stmt.NamedChild(j); c.Type() == "decorator" {
						decs = append(decs, normalizeDecorator(c.Content(source)))
					}
				}
				if def := stmt.ChildByFieldName("definition"); def != nil && def.Type() == "function_definition" {
					m := p.extractMethod(def, source, decs)
					cls.Methods = append(cls.Methods, m)
					for _, d := range decs {
						if d == "@abstractmethod" {
							abstract = true
						}
					}
				}
			case "expression_statement":
				if attr, ok := p.extractAttribute(stmt, source); ok {
					cls.Attributes = append(cls.Attributes, attr)
				}
			}
		}
	}

	for _, base := range cls.Superclasses {
		if base == "ABC" || base == "abc.ABC" {
			abstract = true
		}
	}
	for _, d := range decorators {
		if d == "@final" {
			cls.IsFinal = true
		}
	}

	// Kind stays provenance-honest: only states the parser can prove get a
	// value here; everything else is left for inference to fill.
	switch {
	case hasMetaclass:
		cls.Kind = "singleton"
	case abstract:
		cls.Kind = "abstract"
	case len(cls.Interfaces) > 0:
		cls.Kind = "interface"
	}
	return cls
}

func (p *PythonExtractor) extractMethod(n *sitter.Node, source []byte, decorators []string) model.Method {
	fn := p.extractFunction(n, source, decorators)
	return model.Method{
		Name:       fn.Name,
		ReturnType: fn.ReturnType,
		Arguments:  fn.Arguments,
		Decorators: fn.Decorators,
		IsStatic:   fn.IsStatic,
		IsAsync:    fn.IsAsync,
		Doc:        fn.Doc,
	}
}

func (p *PythonExtractor) extractAttribute(stmt *sitter.Node, source []byte) (model.Attribute, bool) {
	if stmt.NamedChildCount() == 0 {
		return model.Attribute{}, false
	}
	assign := stmt.NamedChild(0)
	if assign.Type() != "assignment" {
		return model.Attribute{}, false
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return model.Attribute{}, false
	}

	attr := model.Attribute{
		Name:       left.Content(source),
		Type:       "Any",
		Visibility: "public",
	}
	if t := assign.ChildByFieldName("type"); t != nil {
		attr.Type = t.Content(source)
	}
	if strings.HasPrefix(attr.Name, "_") {
		attr.Visibility = "private"
	}
	return attr, true
}

func (p *PythonExtractor) extractImport(n *sitter.Node, source []byte, filePath string, sk *FileSkeleton, imported map[string]string) {
	switch n.Type() {
	case "import_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				module := child.Content(source)
				imported[module] = module
				sk.Imports = append(sk.Imports, ImportDecl{Module: module, CandidatePath: moduleToPath(module)})
			case "aliased_import":
				module := ""
				if name := child.ChildByFieldName("name"); name != nil {
					module = name.Content(source)
				}
				alias := module
				if a := child.ChildByFieldName("alias"); a != nil {
					alias = a.Content(source)
				}
				if module != "" {
					imported[alias] = module
					sk.Imports = append(sk.Imports, ImportDecl{Module: module, CandidatePath: moduleToPath(module)})
				}
			}
		}
	case "import_from_statement":
		moduleName := n.ChildByFieldName("module_name")
		if moduleName == nil {
			return
		}
		module, candidate := p.resolveFromModule(moduleName, source, filePath)

		// "from . import helpers" has no module clause of its own; the
		// imported names are themselves modules under the resolved package
		// directory.
		bareRelative := module == ""
		if !bareRelative && candidate != "" {
			sk.Imports = append(sk.Imports, ImportDecl{Module: module, CandidatePath: candidate})
		}

		// Record imported names so identifier usages resolve back here.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child == moduleName {
				continue
			}
			name, alias := "", ""
			switch child.Type() {
			case "dotted_name":
				name = child.Content(source)
				alias = name
			case "aliased_import":
				if nm := child.ChildByFieldName("name"); nm != nil {
					name = nm.Content(source)
				}
				if a := child.ChildByFieldName("alias"); a != nil {
					alias = a.Content(source)
				}
			default:
				continue
			}
			if name == "" {
				continue
			}
			if bareRelative {
				imported[alias] = name
				sk.Imports = append(sk.Imports, ImportDecl{
					Module:        name,
					CandidatePath: joinCandidate(candidate, name),
				})
			} else {
				imported[alias] = module
			}
		}
	}
}

// joinCandidate replaces a package's __init__.py candidate with a sibling
// module file.
func joinCandidate(pkgCandidate, name string) string {
	dir := strings.TrimSuffix(pkgCandidate, "__init__.py")
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		return name + ".py"
	}
	return dir + "/" + name + ".py"
}

// resolveFromModule turns a "from X import ..." module clause into a module
// name and a candidate project-relative path. Relative imports resolve
// against the importing file's directory, one level up per extra leading
// dot.
func (p *PythonExtractor) resolveFromModule(moduleName *sitter.Node, source []byte, filePath string) (string, string) {
	if moduleName.Type() != "relative_import" {
		module := moduleName.Content(source)
		return module, moduleToPath(module)
	}

	text := moduleName.Content(source)
	dots := 0
	for dots < len(text) && text[dots] == '.' {
		dots++
	}
	module := text[dots:]

	dir := path.Dir(filePath)
	for i := 1; i < dots; i++ {
		dir = path.Dir(dir)
	}
	if dir == "." {
		dir = ""
	}

	rel := strings.ReplaceAll(module, ".", "/")
	switch {
	case rel == "" && dir == "":
		return module, ""
	case rel == "":
		return module, dir + "/__init__.py"
	case dir == "":
		return module, rel + ".py"
	default:
		return module, dir + "/" + rel + ".py"
	}
}

// collectReferences finds identifier usages of imported modules outside the
// import statements themselves.
func (p *PythonExtractor) collectReferences(root *sitter.Node, source []byte, sk *FileSkeleton, imported map[string]string) {
	if len(imported) == 0 {
		return
	}
	seen := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement", "import_from_statement", "future_import_statement":
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
				CandidatePath: moduleToPath(module),
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

func moduleToPath(module string) string {
	return strings.ReplaceAll(module, ".", "/") + ".py"
}

func normalizeDecorator(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "@") {
		text = "@" + text
	}
	// Drop call arguments: "@app.route('/x')" -> "@app.route".
	if idx := strings.IndexByte(text, '('); idx > 0 {
		text = text[:idx]
	}
	return text
}

func isEnumClass(superclasses []string) bool {
	for _, base := range superclasses {
		if base == "Enum" || base == "IntEnum" || base == "StrEnum" || base == "Flag" ||
			strings.HasSuffix(base, ".Enum") || strings.HasSuffix(base, ".IntEnum") {
			return true
		}
	}
	return false
}

func attributeNames(attrs []model.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}

// docstring returns the leading string literal of a block, unquoted.
func docstring(body *sitter.Node, source []byte) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return unquote(str.Content(source))
}

func unquote(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}
