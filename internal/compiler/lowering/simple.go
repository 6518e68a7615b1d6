package lowering

import (
	"fmt"
	"strings"

	"github.com/simal-lang/simal/internal/compiler/ast"
)

// Options controls the simple JSON lowering.
type Options struct {
	// MaxSimple compresses methods and endpoints with no attributes into
	// a single `def` signature string (spec section 4.6).
	MaxSimple bool
}

// Simple lowers a System into the flattened, prompt-oriented JSON form.
func Simple(sys *ast.System, opts Options) *OrderedMap {
	out := simpleAttrMap(sys.Attributes, opts)
	services := make([]interface{}, len(sys.Services))
	for i, s := range sys.Services {
		svc := simpleAttrMap(s.Attributes, opts)
		svc.Set("name", s.Name)
		services[i] = svc
	}
	out.Set("services", services)
	return out
}

// simpleAttrMap flattens an ordered attribute list into a JSON object
// that keeps the attributes' source order: `key: value` when
// unannotated, `key: {value, annotations}` when the attribute carries
// annotations.
func simpleAttrMap(attrs []*ast.Attribute, opts Options) *OrderedMap {
	out := NewOrderedMap()
	for _, a := range attrs {
		v := simpleValue(a.Value, opts)
		if len(a.Annotations) > 0 {
			out.Set(a.Key, NewOrderedMap().
				Set("value", v).
				Set("annotations", simpleAnnotations(a.Annotations)))
		} else {
			out.Set(a.Key, v)
		}
	}
	return out
}

func simpleAnnotations(anns []*ast.Annotation) []interface{} {
	out := make([]interface{}, len(anns))
	for i, a := range anns {
		out[i] = NewOrderedMap().Set("name", a.Name).Set("args", a.Args)
	}
	return out
}

func simpleValue(v ast.Value, opts Options) interface{} {
	switch val := v.(type) {
	case ast.StringValue:
		return val.Value
	case *ast.MapValue:
		return simpleAttrMap(val.Entries, opts)
	case *ast.ListValue:
		out := make([]interface{}, len(val.Items))
		for i, item := range val.Items {
			out[i] = simpleValue(item, opts)
		}
		return out
	case *ast.Block:
		m := simpleAttrMap(val.Attributes, opts)
		m.Set("kind", val.Kind)
		m.Set("name", val.Name)
		return m
	case *ast.Field:
		return NewOrderedMap().
			Set("visibility", val.Visibility).
			Set("name", val.Name).
			Set("type", val.Type)
	case *ast.Method:
		return simpleMethod(val, opts)
	case *ast.Endpoint:
		return simpleEndpoint(val, opts)
	case *ast.Attribute:
		v := simpleValue(val.Value, opts)
		if len(val.Annotations) > 0 {
			return NewOrderedMap().Set("value", v).Set("annotations", simpleAnnotations(val.Annotations))
		}
		return v
	}
	return nil
}

func simpleMethod(m *ast.Method, opts Options) interface{} {
	if opts.MaxSimple && len(m.Attributes) == 0 {
		return methodDef(m)
	}
	out := NewOrderedMap().
		Set("visibility", m.Visibility).
		Set("name", m.Name).
		Set("params", m.Params).
		Set("returns", m.Returns)
	if len(m.Attributes) > 0 {
		out.Set("attributes", simpleAttrMap(m.Attributes, opts))
	}
	if opts.MaxSimple {
		out.Set("def", methodDef(m))
	}
	return out
}

func methodDef(m *ast.Method) string {
	prefix := ""
	switch m.Visibility {
	case ast.VisibilityPublic:
		prefix = "+"
	case ast.VisibilityPrivate:
		prefix = "-"
	case ast.VisibilityProtected:
		prefix = "#"
	}
	return fmt.Sprintf("%s%s(%s) -> %s", prefix, m.Name, m.Params, m.Returns)
}

func simpleEndpoint(e *ast.Endpoint, opts Options) interface{} {
	if opts.MaxSimple && len(e.Attributes) == 0 {
		return endpointDef(e)
	}
	out := NewOrderedMap().
		Set("style", e.Style).
		Set("method", e.Method)
	if e.Style == ast.EndpointHTTP {
		out.Set("path", e.Path)
	}
	out.Set("request", e.RequestRaw).Set("response", e.ResponseRaw)
	if e.Inputs != nil {
		out.Set("inputs", simpleParams(e.Inputs, false))
	}
	if e.Outputs != nil {
		out.Set("outputs", simpleParams(e.Outputs, true))
	}
	if len(e.Attributes) > 0 {
		out.Set("attributes", simpleAttrMap(e.Attributes, opts))
	}
	if opts.MaxSimple {
		out.Set("def", endpointDef(e))
	}
	return out
}

func endpointDef(e *ast.Endpoint) string {
	if e.Style == ast.EndpointHTTP {
		return strings.TrimSpace(fmt.Sprintf("%s %s -> %s", e.Method, e.Path, e.ResponseRaw))
	}
	return strings.TrimSpace(fmt.Sprintf("%s(%s) -> %s", e.Method, e.RequestRaw, e.ResponseRaw))
}

func simpleParams(params []ast.Param, withOptional bool) []interface{} {
	out := make([]interface{}, len(params))
	for i, p := range params {
		e := NewOrderedMap().Set("name", p.Name).Set("type", p.Type)
		if withOptional {
			e.Set("optional", p.Optional)
		}
		out[i] = e
	}
	return out
}
