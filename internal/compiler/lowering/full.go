// Package lowering implements the two JSON lowerings described in spec
// section 4.6: a tagged, round-trippable "full" form and a flattened
// "simple" form for prompt consumption. Both are pure functions over an
// already-parsed ast.System.
package lowering

import "github.com/simal-lang/simal/internal/compiler/ast"

// entry is one element of an ordered-container array: {key, value,
// annotations?}. Rendering ordered containers as arrays (rather than
// JSON objects) is what lets the full lowering preserve both source
// order and per-key annotations through a JSON round trip.
type entry map[string]interface{}

// Full lowers a System into the tagged, round-trippable JSON form.
func Full(sys *ast.System) map[string]interface{} {
	out := map[string]interface{}{
		"__type__":   "System",
		"attributes": fullEntries(sys.Attributes),
		"services":   fullServices(sys.Services),
	}
	return out
}

func fullServices(services []*ast.Service) []map[string]interface{} {
	out := make([]map[string]interface{}, len(services))
	for i, s := range services {
		m := map[string]interface{}{
			"__type__":   "Service",
			"name":       s.Name,
			"attributes": fullEntries(s.Attributes),
		}
		if len(s.Annotations) > 0 {
			m["annotations"] = fullAnnotations(s.Annotations)
		}
		out[i] = m
	}
	return out
}

func fullEntries(attrs []*ast.Attribute) []entry {
	out := make([]entry, len(attrs))
	for i, a := range attrs {
		e := entry{"key": a.Key, "value": fullValue(a.Value)}
		if len(a.Annotations) > 0 {
			e["annotations"] = fullAnnotations(a.Annotations)
		}
		out[i] = e
	}
	return out
}

func fullAnnotations(anns []*ast.Annotation) []map[string]interface{} {
	out := make([]map[string]interface{}, len(anns))
	for i, a := range anns {
		args := a.Args
		if args == nil {
			args = []string{}
		}
		out[i] = map[string]interface{}{"__type__": "Annotation", "name": a.Name, "args": args}
	}
	return out
}

// fullValue lowers a single AST value into its JSON representation.
// StringValue lowers to a bare JSON string; MapValue/ListValue lower to
// the ordered-array forms above; the specialized node kinds each get a
// __type__-tagged object.
func fullValue(v ast.Value) interface{} {
	switch val := v.(type) {
	case ast.StringValue:
		return val.Value
	case *ast.MapValue:
		return fullEntries(val.Entries)
	case *ast.ListValue:
		out := make([]interface{}, len(val.Items))
		for i, item := range val.Items {
			out[i] = fullValue(item)
		}
		return out
	case *ast.Block:
		m := map[string]interface{}{
			"__type__":   "Block",
			"kind":       val.Kind,
			"name":       val.Name,
			"attributes": fullEntries(val.Attributes),
		}
		if len(val.Annotations) > 0 {
			m["annotations"] = fullAnnotations(val.Annotations)
		}
		return m
	case *ast.Field:
		m := map[string]interface{}{
			"__type__":   "Field",
			"visibility": val.Visibility,
			"name":       val.Name,
			"type":       val.Type,
		}
		if len(val.Annotations) > 0 {
			m["annotations"] = fullAnnotations(val.Annotations)
		}
		return m
	case *ast.Method:
		m := map[string]interface{}{
			"__type__":   "Method",
			"visibility": val.Visibility,
			"name":       val.Name,
			"params":     val.Params,
			"returns":    val.Returns,
			"attributes": fullEntries(val.Attributes),
		}
		if len(val.Annotations) > 0 {
			m["annotations"] = fullAnnotations(val.Annotations)
		}
		return m
	case *ast.Endpoint:
		return fullEndpoint(val)
	case *ast.Attribute:
		// An annotated, non-keyed list item (spec section 9: Annotated(Map, Annotations)).
		m := map[string]interface{}{"__type__": "Attribute", "value": fullValue(val.Value)}
		if len(val.Annotations) > 0 {
			m["annotations"] = fullAnnotations(val.Annotations)
		}
		return m
	}
	return nil
}

func fullEndpoint(e *ast.Endpoint) map[string]interface{} {
	m := map[string]interface{}{
		"__type__": "Endpoint",
		"style":    e.Style,
		"method":   e.Method,
		"request":  e.RequestRaw,
		"response": e.ResponseRaw,
	}
	if e.Style == ast.EndpointHTTP {
		m["path"] = e.Path
	}
	if e.RequestType != nil {
		m["requestType"] = fullShape(e.RequestType)
	}
	if e.ResponseType != nil {
		m["responseType"] = fullShape(e.ResponseType)
	}
	if e.Inputs != nil {
		m["inputs"] = fullParams(e.Inputs, false)
	}
	if e.Outputs != nil {
		m["outputs"] = fullParams(e.Outputs, true)
	}
	if len(e.Attributes) > 0 {
		m["attributes"] = fullEntries(e.Attributes)
	}
	if len(e.Annotations) > 0 {
		m["annotations"] = fullAnnotations(e.Annotations)
	}
	return m
}

func fullParams(params []ast.Param, withOptional bool) []map[string]interface{} {
	out := make([]map[string]interface{}, len(params))
	for i, p := range params {
		e := map[string]interface{}{"name": p.Name, "type": p.Type}
		if withOptional {
			e["optional"] = p.Optional
		}
		out[i] = e
	}
	return out
}

func fullShape(s *ast.Shape) map[string]interface{} {
	if s == nil {
		return nil
	}
	m := map[string]interface{}{"kind": s.Kind}
	if s.Name != "" {
		m["name"] = s.Name
	}
	if s.Kind == "primitive" {
		m["type"] = s.Type
	}
	if len(s.Fields) > 0 {
		fields := make([]map[string]interface{}, len(s.Fields))
		for i, f := range s.Fields {
			fe := map[string]interface{}{"name": f.Name, "type": fullShape(f.Type)}
			if f.Optional {
				fe["optional"] = true
			}
			fields[i] = fe
		}
		m["fields"] = fields
	}
	if s.Optional {
		m["optional"] = true
	}
	return m
}
