package model

// The ToProps conversions flatten an entity into the open bag persisted by
// the graph store. Named fields become well-known keys; Extra rides along
// untouched so properties this schema never anticipated still round-trip.

func (p *Project) ToProps() Props {
	out := Props{
		"project_id": p.ID,
		"name":       p.Name,
		"source_dir": p.SourceDir,
		"status":     string(p.Status),
	}
	out.Merge(p.Extra)
	return out
}

// ProjectFromProps rehydrates the named Project fields and keeps everything
// else in Extra.
func ProjectFromProps(props Props) *Project {
	p := &Project{
		ID:        props.String("project_id"),
		Name:      props.String("name"),
		SourceDir: props.String("source_dir"),
		Status:    Status(props.String("status")),
		Extra:     Props{},
	}
	for k, v := range props {
		switch k {
		case "project_id", "name", "source_dir", "status":
		default:
			p.Extra[k] = v
		}
	}
	return p
}

func (f *File) ToProps() Props {
	out := Props{
		"path":     f.Path,
		"language": f.Language,
		"size":     f.Size,
	}
	out.Merge(f.Extra)
	return out
}

func FileFromProps(props Props) *File {
	f := &File{
		Path:     props.String("path"),
		Language: props.String("language"),
		Size:     props.Int64("size"),
		Extra:    Props{},
	}
	for k, v := range props {
		switch k {
		case "path", "language", "size":
		default:
			f.Extra[k] = v
		}
	}
	return f
}

func (fn *Function) ToProps() Props {
	out := Props{
		"function_id": fn.ID,
		"name":        fn.Name,
		"return_type": fn.ReturnType,
		"arguments":   fn.Arguments,
		"decorators":  fn.Decorators,
		"is_static":   fn.IsStatic,
		"is_async":    fn.IsAsync,
		"doc":         fn.Doc,
	}
	if len(fn.Provenance) > 0 {
		out["provenance"] = fn.Provenance
	}
	out.Merge(fn.Extra)
	return out
}

func (c *Class) ToProps() Props {
	out := Props{
		"class_id":     c.ID,
		"name":         c.Name,
		"kind":         c.Kind,
		"is_static":    c.IsStatic,
		"is_final":     c.IsFinal,
		"superclasses": c.Superclasses,
		"interfaces":   c.Interfaces,
		"methods":      c.Methods,
		"attributes":   c.Attributes,
		"doc":          c.Doc,
	}
	if len(c.Provenance) > 0 {
		out["provenance"] = c.Provenance
	}
	out.Merge(c.Extra)
	return out
}

func (e *Enum) ToProps() Props {
	out := Props{
		"enum_id": e.ID,
		"name":    e.Name,
		"values":  e.Values,
		"doc":     e.Doc,
	}
	out.Merge(e.Extra)
	return out
}

func (e *Extension) ToProps() Props {
	out := Props{
		"extension_id": e.ID,
		"name":         e.Name,
		"base_type":    e.BaseType,
		"methods":      e.Methods,
	}
	out.Merge(e.Extra)
	return out
}

func (c *Component) ToProps() Props {
	out := Props{
		"component_id": c.ID,
		"file_path":    c.FilePath,
		"type":         string(c.Type),
	}
	out.Merge(c.Extra)
	return out
}

func (d *Dependency) ToProps() Props {
	out := Props{
		"dependency_id": d.ID,
		"name":          d.Name,
		"version":       d.Version,
		"type":          d.Type,
	}
	out.Merge(d.Extra)
	return out
}

func (m *Mapping) ToProps() Props {
	out := Props{
		"mapping_id":    m.ID,
		"source_ref":    m.SourceRef,
		"target_ref":    m.TargetRef,
		"type_mappings": m.TypeMappings,
		"is_custom":     m.IsCustom,
	}
	out.Merge(m.Extra)
	return out
}

func (t *TargetComponent) ToProps() Props {
	out := Props{
		"target_component_id": t.ID,
		"name":                t.Name,
		"version":             t.Version,
		"type":                t.Type,
	}
	out.Merge(t.Extra)
	return out
}

func (s *Strategy) ToProps() Props {
	out := Props{
		"strategy_id":   s.ID,
		"component_ref": s.ComponentRef,
		"priority":      s.Priority,
		"actions":       s.Actions,
	}
	out.Merge(s.Extra)
	return out
}

func (r *Report) ToProps() Props {
	out := Props{
		"report_id": r.ID,
		"type":      r.Type,
		"message":   r.Message,
	}
	if len(r.Details) > 0 {
		out["details"] = r.Details
	}
	return out
}

func (f *Feedback) ToProps() Props {
	out := Props{
		"feedback_id": f.ID,
		"issue":       f.Issue,
		"component":   f.Component,
		"suggestion":  f.Suggestion,
	}
	if len(f.Details) > 0 {
		out["details"] = f.Details
	}
	return out
}
