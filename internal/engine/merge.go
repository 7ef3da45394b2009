package engine

import (
	"codeport/internal/extractor"
	"codeport/internal/model"
)

// mergedSkeleton is the reconciled view of one file: parser output enriched
// by inference, with per-field provenance for every declaration.
type mergedSkeleton struct {
	*extractor.FileSkeleton
	funcProv  map[string]model.Provenance
	classProv map[string]model.Provenance
}

// mergeSkeletons reconciles parser and inference output for one file.
// Parser facts are authoritative: inference only fills fields the parser
// left absent, and declarations only the model saw are appended whole with
// inference provenance. When both sources state a present field, the
// parser value stands and the conflict is recorded in provenance.
func mergeSkeletons(parsed, inferred *extractor.FileSkeleton) *mergedSkeleton {
	m := &mergedSkeleton{
		FileSkeleton: parsed,
		funcProv:     make(map[string]model.Provenance),
		classProv:    make(map[string]model.Provenance),
	}
	if inferred == nil {
		for _, fn := range parsed.Functions {
			m.funcProv[fn.Name] = allParser(fn, nil)
		}
		for _, cls := range parsed.Classes {
			m.classProv[cls.Name] = classProvenance(cls, nil)
		}
		return m
	}

	infFuncs := make(map[string]extractor.FunctionDecl, len(inferred.Functions))
	for _, fn := range inferred.Functions {
		infFuncs[fn.Name] = fn
	}
	for i := range parsed.Functions {
		fn := &parsed.Functions[i]
		inf, ok := infFuncs[fn.Name]
		if !ok {
			m.funcProv[fn.Name] = allParser(*fn, nil)
			continue
		}
		prov := model.Provenance{}
		if fn.ReturnType == "" || fn.ReturnType == "Any" {
			if inf.ReturnType != "" && inf.ReturnType != "Any" {
				fn.ReturnType = inf.ReturnType
				prov["return_type"] = model.SourceInference
			}
		}
		mergeArgumentTypes(fn.Arguments, inf.Arguments, prov)
		if fn.Doc == "" && inf.Doc != "" {
			fn.Doc = inf.Doc
			prov["doc"] = model.SourceInference
		}
		m.funcProv[fn.Name] = allParser(*fn, prov)
		delete(infFuncs, fn.Name)
	}
	for _, fn := range inferred.Functions {
		if _, stillThere := infFuncs[fn.Name]; !stillThere {
			continue
		}
		parsed.Functions = append(parsed.Functions, fn)
		m.funcProv[fn.Name] = allInference(fn)
	}

	infClasses := make(map[string]extractor.ClassDecl, len(inferred.Classes))
	for _, cls := range inferred.Classes {
		infClasses[cls.Name] = cls
	}
	for i := range parsed.Classes {
		cls := &parsed.Classes[i]
		inf, ok := infClasses[cls.Name]
		if !ok {
			m.classProv[cls.Name] = classProvenance(*cls, nil)
			continue
		}
		prov := model.Provenance{}
		if cls.Kind == "" && inf.Kind != "" {
			cls.Kind = inf.Kind
			prov["kind"] = model.SourceInference
		}
		if cls.Doc == "" && inf.Doc != "" {
			cls.Doc = inf.Doc
			prov["doc"] = model.SourceInference
		}
		mergeAttributeTypes(cls.Attributes, inf.Attributes, prov)
		m.classProv[cls.Name] = classProvenance(*cls, prov)
		delete(infClasses, cls.Name)
	}
	for _, cls := range inferred.Classes {
		if _, stillThere := infClasses[cls.Name]; !stillThere {
			continue
		}
		parsed.Classes = append(parsed.Classes, cls)
		m.classProv[cls.Name] = allInferenceClass()
	}

	parsed.Enums = appendMissingEnums(parsed.Enums, inferred.Enums)
	parsed.Extensions = appendMissingExtensions(parsed.Extensions, inferred.Extensions)
	return m
}

// inferenceOnly wraps the model's output for a file no structural parser
// covers. Every declaration field is inference-sourced. A nil skeleton
// still yields an empty view so the file itself gets recorded.
func inferenceOnly(file *model.File, inferred *extractor.FileSkeleton) *mergedSkeleton {
	if inferred == nil {
		inferred = &extractor.FileSkeleton{Path: file.Path, Language: file.Language}
	}
	m := &mergedSkeleton{
		FileSkeleton: inferred,
		funcProv:     make(map[string]model.Provenance),
		classProv:    make(map[string]model.Provenance),
	}
	for _, fn := range inferred.Functions {
		m.funcProv[fn.Name] = allInference(fn)
	}
	for _, cls := range inferred.Classes {
		m.classProv[cls.Name] = allInferenceClass()
	}
	return m
}

var functionFields = []string{"name", "return_type", "arguments", "decorators", "is_static", "is_async", "doc"}
var classFields = []string{"name", "kind", "is_static", "is_final", "superclasses", "interfaces", "methods", "attributes", "doc"}

// allParser fills every function field as parser-sourced except those the
// overrides map already attributes to inference.
func allParser(_ extractor.FunctionDecl, overrides model.Provenance) model.Provenance {
	prov := model.Provenance{}
	for _, field := range functionFields {
		prov[field] = model.SourceParser
	}
	for field, src := range overrides {
		prov[field] = src
	}
	return prov
}

func allInference(_ extractor.FunctionDecl) model.Provenance {
	prov := model.Provenance{}
	for _, field := range functionFields {
		prov[field] = model.SourceInference
	}
	return prov
}

func allInferenceClass() model.Provenance {
	prov := model.Provenance{}
	for _, field := range classFields {
		prov[field] = model.SourceInference
	}
	return prov
}

func classProvenance(_ extractor.ClassDecl, overrides model.Provenance) model.Provenance {
	prov := model.Provenance{}
	for _, field := range classFields {
		prov[field] = model.SourceParser
	}
	for field, src := range overrides {
		prov[field] = src
	}
	return prov
}

// mergeArgumentTypes fills "Any" argument types from same-named inferred
// arguments.
func mergeArgumentTypes(args []model.Argument, inferred []model.Argument, prov model.Provenance) {
	byName := make(map[string]string, len(inferred))
	for _, a := range inferred {
		if a.Type != "" && a.Type != "Any" {
			byName[a.Name] = a.Type
		}
	}
	for i := range args {
		if args[i].Type != "" && args[i].Type != "Any" {
			continue
		}
		if t, ok := byName[args[i].Name]; ok {
			args[i].Type = t
			prov["arguments"] = model.SourceInference
		}
	}
}

func mergeAttributeTypes(attrs []model.Attribute, inferred []model.Attribute, prov model.Provenance) {
	byName := make(map[string]string, len(inferred))
	for _, a := range inferred {
		if a.Type != "" && a.Type != "Any" {
			byName[a.Name] = a.Type
		}
	}
	for i := range attrs {
		if attrs[i].Type != "" && attrs[i].Type != "Any" {
			continue
		}
		if t, ok := byName[attrs[i].Name]; ok {
			attrs[i].Type = t
			prov["attributes"] = model.SourceInference
		}
	}
}

func appendMissingEnums(have, extra []extractor.EnumDecl) []extractor.EnumDecl {
	seen := make(map[string]bool, len(have))
	for _, e := range have {
		seen[e.Name] = true
	}
	for _, e := range extra {
		if !seen[e.Name] {
			have = append(have, e)
		}
	}
	return have
}

func appendMissingExtensions(have, extra []extractor.ExtensionDecl) []extractor.ExtensionDecl {
	seen := make(map[string]bool, len(have))
	for _, e := range have {
		seen[e.Name] = true
	}
	for _, e := range extra {
		if !seen[e.Name] {
			have = append(have, e)
		}
	}
	return have
}

func functionEntity(path string, fn extractor.FunctionDecl, prov model.Provenance) model.Function {
	return model.Function{
		ID:         declKey(path, fn.Name),
		Name:       fn.Name,
		ReturnType: fn.ReturnType,
		Arguments:  fn.Arguments,
		Decorators: fn.Decorators,
		IsStatic:   fn.IsStatic,
		IsAsync:    fn.IsAsync,
		Doc:        fn.Doc,
		Provenance: prov,
		Extra:      model.Props{"start_line": fn.StartLine, "end_line": fn.EndLine},
	}
}

func classEntity(path string, cls extractor.ClassDecl, prov model.Provenance) model.Class {
	kind := cls.Kind
	if kind == "" {
		kind = "plain"
	}
	return model.Class{
		ID:           declKey(path, cls.Name),
		Name:         cls.Name,
		Kind:         kind,
		IsStatic:     cls.IsStatic,
		IsFinal:      cls.IsFinal,
		Superclasses: cls.Superclasses,
		Interfaces:   cls.Interfaces,
		Methods:      cls.Methods,
		Attributes:   cls.Attributes,
		Doc:          cls.Doc,
		Provenance:   prov,
		Extra:        model.Props{"start_line": cls.StartLine, "end_line": cls.EndLine},
	}
}
