package lowering

import (
	"fmt"

	"github.com/simal-lang/simal/internal/compiler/ast"
)

// FromFull reconstructs an AST from the full JSON lowering (spec section
// 8, testable property 3: round-trip). It accepts either the value
// returned directly by Full, or the same structure after a JSON
// marshal/unmarshal round trip (map[string]interface{} / []interface{}).
func FromFull(data interface{}) (*ast.System, error) {
	m, ok := asMap(data)
	if !ok {
		return nil, fmt.Errorf("full JSON: expected a System object")
	}
	if t, _ := m["__type__"].(string); t != "System" {
		return nil, fmt.Errorf("full JSON: expected __type__ System, got %v", m["__type__"])
	}
	attrs, err := entriesFromFull(m["attributes"])
	if err != nil {
		return nil, err
	}
	services, err := servicesFromFull(m["services"])
	if err != nil {
		return nil, err
	}
	return &ast.System{Attributes: attrs, Services: services}, nil
}

func servicesFromFull(raw interface{}) ([]*ast.Service, error) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, nil
	}
	out := make([]*ast.Service, 0, len(items))
	for _, it := range items {
		m, ok := asMap(it)
		if !ok {
			return nil, fmt.Errorf("full JSON: malformed Service entry")
		}
		attrs, err := entriesFromFull(m["attributes"])
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.Service{
			Name:        str(m["name"]),
			Attributes:  attrs,
			Annotations: annotationsFromFull(m["annotations"]),
		})
	}
	return out, nil
}

func entriesFromFull(raw interface{}) ([]*ast.Attribute, error) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, nil
	}
	out := make([]*ast.Attribute, 0, len(items))
	for _, it := range items {
		m, ok := asMap(it)
		if !ok {
			return nil, fmt.Errorf("full JSON: malformed attribute entry")
		}
		val, err := valueFromFull(m["value"])
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.Attribute{
			Key:         str(m["key"]),
			Value:       val,
			Annotations: annotationsFromFull(m["annotations"]),
		})
	}
	return out, nil
}

func annotationsFromFull(raw interface{}) []*ast.Annotation {
	items, ok := asSlice(raw)
	if !ok {
		return nil
	}
	out := make([]*ast.Annotation, 0, len(items))
	for _, it := range items {
		m, ok := asMap(it)
		if !ok {
			continue
		}
		args := []string{}
		if argItems, ok := asSlice(m["args"]); ok {
			for _, a := range argItems {
				args = append(args, str(a))
			}
		}
		out = append(out, &ast.Annotation{Name: str(m["name"]), Args: args})
	}
	return out
}

func valueFromFull(raw interface{}) (ast.Value, error) {
	switch v := raw.(type) {
	case string:
		return ast.StringValue{Value: v}, nil
	case nil:
		return ast.StringValue{}, nil
	}

	if items, ok := asSlice(raw); ok {
		// Ambiguous between a MapValue (array of {key,value,...} entries)
		// and a ListValue (array of bare values); disambiguate on the
		// shape of the first element.
		if len(items) == 0 {
			return &ast.ListValue{}, nil
		}
		if m, ok := asMap(items[0]); ok {
			if _, hasKey := m["key"]; hasKey {
				entries, err := entriesFromFull(raw)
				if err != nil {
					return nil, err
				}
				return &ast.MapValue{Entries: entries}, nil
			}
		}
		vals := make([]ast.Value, 0, len(items))
		for _, it := range items {
			val, err := valueFromFull(it)
			if err != nil {
				return nil, err
			}
			vals = append(vals, val)
		}
		return &ast.ListValue{Items: vals}, nil
	}

	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("full JSON: unrecognized value %#v", raw)
	}
	switch str(m["__type__"]) {
	case "Block":
		attrs, err := entriesFromFull(m["attributes"])
		if err != nil {
			return nil, err
		}
		return &ast.Block{
			Kind:        str(m["kind"]),
			Name:        str(m["name"]),
			Attributes:  attrs,
			Annotations: annotationsFromFull(m["annotations"]),
		}, nil
	case "Field":
		return &ast.Field{
			Visibility:  str(m["visibility"]),
			Name:        str(m["name"]),
			Type:        str(m["type"]),
			Annotations: annotationsFromFull(m["annotations"]),
		}, nil
	case "Method":
		attrs, err := entriesFromFull(m["attributes"])
		if err != nil {
			return nil, err
		}
		return &ast.Method{
			Visibility:  str(m["visibility"]),
			Name:        str(m["name"]),
			Params:      str(m["params"]),
			Returns:     str(m["returns"]),
			Attributes:  attrs,
			Annotations: annotationsFromFull(m["annotations"]),
		}, nil
	case "Endpoint":
		attrs, err := entriesFromFull(m["attributes"])
		if err != nil {
			return nil, err
		}
		return &ast.Endpoint{
			Style:       str(m["style"]),
			Method:      str(m["method"]),
			Path:        str(m["path"]),
			RequestRaw:  str(m["request"]),
			ResponseRaw: str(m["response"]),
			RequestType: shapeFromFull(m["requestType"]),
			ResponseType: shapeFromFull(m["responseType"]),
			Inputs:      paramsFromFull(m["inputs"]),
			Outputs:     paramsFromFull(m["outputs"]),
			Attributes:  attrs,
			Annotations: annotationsFromFull(m["annotations"]),
		}, nil
	case "Attribute":
		val, err := valueFromFull(m["value"])
		if err != nil {
			return nil, err
		}
		return &ast.Attribute{Value: val, Annotations: annotationsFromFull(m["annotations"])}, nil
	}
	return nil, fmt.Errorf("full JSON: unrecognized node __type__ %q", m["__type__"])
}

func paramsFromFull(raw interface{}) []ast.Param {
	items, ok := asSlice(raw)
	if !ok {
		return nil
	}
	out := make([]ast.Param, 0, len(items))
	for _, it := range items {
		m, ok := asMap(it)
		if !ok {
			continue
		}
		p := ast.Param{Name: str(m["name"]), Type: str(m["type"])}
		if b, ok := m["optional"].(bool); ok {
			p.Optional = b
		}
		out = append(out, p)
	}
	return out
}

func shapeFromFull(raw interface{}) *ast.Shape {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	s := &ast.Shape{Kind: str(m["kind"]), Name: str(m["name"]), Type: str(m["type"])}
	if b, ok := m["optional"].(bool); ok {
		s.Optional = b
	}
	if items, ok := asSlice(m["fields"]); ok {
		for _, it := range items {
			fm, ok := asMap(it)
			if !ok {
				continue
			}
			fe := ast.ShapeField{Name: str(fm["name"]), Type: shapeFromFull(fm["type"])}
			if b, ok := fm["optional"].(bool); ok {
				fe.Optional = b
			}
			s.Fields = append(s.Fields, fe)
		}
	}
	return s
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asMap accepts the concrete map types Full produces as well as a plain
// map[string]interface{} recovered from a JSON round trip.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case entry:
		return map[string]interface{}(m), true
	}
	return nil, false
}

// asSlice accepts the concrete slice types Full produces as well as a
// plain []interface{} recovered from a JSON round trip.
func asSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	case []entry:
		out := make([]interface{}, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []map[string]interface{}:
		out := make([]interface{}, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
