package parser

import (
	"strings"

	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
)

// enrichEndpoint runs the (non-fatal) structural mini-parse of an
// endpoint's request/response signatures described in spec section 4.5.
// An absent signature (empty raw string) is not a failure. A present
// signature that cannot be balanced leaves the endpoint with its raw
// strings untouched and no derived inputs/outputs.
func enrichEndpoint(ep *ast.Endpoint) {
	reqOK := true
	if ep.RequestRaw != "" {
		shape, ok := parseShape(ep.RequestRaw)
		if ok {
			ep.RequestType = shape
		}
		reqOK = ok
	}
	respOK := true
	if ep.ResponseRaw != "" {
		shape, ok := parseShape(ep.ResponseRaw)
		if ok {
			ep.ResponseType = shape
		}
		respOK = ok
	}
	if !reqOK || !respOK {
		ep.RequestType = nil
		ep.ResponseType = nil
		return
	}

	var inputs []ast.Param
	if ep.RequestType != nil {
		inputs = shapeToParams(ep.RequestType, false)
	}
	if ep.Style == ast.EndpointHTTP {
		inputs = mergePathParams(ep.Path, inputs)
	}
	ep.Inputs = inputs

	if ep.ResponseType != nil {
		ep.Outputs = shapeToParams(ep.ResponseType, true)
	}
}

// mergePathParams prepends a `str`-typed param for every `{placeholder}`
// in path, in order of appearance; a body field of the same name wins
// over the placeholder-derived one (spec section 4.5).
func mergePathParams(path string, bodyInputs []ast.Param) []ast.Param {
	placeholders := extractPathPlaceholders(path)
	if len(placeholders) == 0 {
		return bodyInputs
	}
	merged := make([]ast.Param, 0, len(placeholders)+len(bodyInputs))
	index := map[string]int{}
	for _, name := range placeholders {
		index[name] = len(merged)
		merged = append(merged, ast.Param{Name: name, Type: "str"})
	}
	for _, p := range bodyInputs {
		if idx, ok := index[p.Name]; ok {
			merged[idx] = p
		} else {
			index[p.Name] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged
}

func extractPathPlaceholders(path string) []string {
	var out []string
	i := 0
	for i < len(path) {
		if path[i] == '{' {
			j := strings.IndexByte(path[i:], '}')
			if j == -1 {
				break
			}
			out = append(out, strings.TrimSpace(path[i+1:i+j]))
			i += j + 1
		} else {
			i++
		}
	}
	return out
}

func shapeToParams(shape *ast.Shape, withOptional bool) []ast.Param {
	if shape == nil || shape.Kind == "primitive" {
		return nil
	}
	out := make([]ast.Param, 0, len(shape.Fields))
	for _, f := range shape.Fields {
		p := ast.Param{Name: f.Name, Type: shapeTypeName(f.Type)}
		if withOptional {
			p.Optional = f.Optional
		}
		out = append(out, p)
	}
	return out
}

func shapeTypeName(s *ast.Shape) string {
	if s == nil {
		return ""
	}
	switch s.Kind {
	case "primitive":
		return s.Type
	case "tuple":
		return "tuple"
	default: // object
		if s.Name != "" {
			return s.Name
		}
		return "object"
	}
}

// parseShape re-tokenizes a reconstructed raw signature string and parses
// it into a Shape tree. Re-tokenizing is safe here because the parser
// builds raw text from the original token forms, either space-joined
// (scanBalanced) or with their source adjacency kept (joinTokens).
func parseShape(raw string) (*ast.Shape, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	tokens, errs := lexer.New(raw).ScanTokens()
	if len(errs) > 0 {
		return nil, false
	}
	sp := &shapeParser{tokens: tokens}
	shape, ok := sp.parseShape()
	if !ok {
		return nil, false
	}
	if sp.pos != len(sp.tokens)-1 {
		return nil, false // stray trailing tokens
	}
	return shape, true
}

type shapeParser struct {
	tokens []lexer.Token
	pos    int
}

func (s *shapeParser) peek() lexer.Token { return s.tokens[s.pos] }

func (s *shapeParser) advance() lexer.Token {
	tok := s.tokens[s.pos]
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return tok
}

func (s *shapeParser) parseShape() (*ast.Shape, bool) {
	var shape *ast.Shape
	switch s.peek().Type {
	case lexer.TOKEN_LBRACE:
		obj, ok := s.parseGroup("", lexer.TOKEN_RBRACE, "object")
		if !ok {
			return nil, false
		}
		shape = obj
	case lexer.TOKEN_LPAREN:
		tup, ok := s.parseGroup("", lexer.TOKEN_RPAREN, "tuple")
		if !ok {
			return nil, false
		}
		shape = tup
	case lexer.TOKEN_IDENT:
		name := s.advance().Lexeme
		if s.peek().Type == lexer.TOKEN_LBRACE {
			obj, ok := s.parseGroup(name, lexer.TOKEN_RBRACE, "object")
			if !ok {
				return nil, false
			}
			shape = obj
		} else {
			shape = &ast.Shape{Kind: "primitive", Type: name}
		}
	default:
		return nil, false
	}

	if s.peek().Type == lexer.TOKEN_IDENT && s.peek().Lexeme == "?" {
		s.advance()
		shape.Optional = true
	}
	return shape, true
}

// parseGroup parses the common `{ name: type, ... }` / `( name: type, ... )`
// shape body; the opening delimiter is the current token.
func (s *shapeParser) parseGroup(name string, closeTok lexer.TokenType, kind string) (*ast.Shape, bool) {
	s.advance() // opening delimiter
	shape := &ast.Shape{Kind: kind, Name: name}
	for {
		if s.peek().Type == closeTok {
			s.advance()
			break
		}
		if s.peek().Type == lexer.TOKEN_EOF {
			return nil, false
		}
		if s.peek().Type == lexer.TOKEN_COMMA {
			s.advance()
			continue
		}
		if s.peek().Type != lexer.TOKEN_IDENT {
			return nil, false
		}
		fieldName := s.advance().Lexeme
		if s.peek().Type != lexer.TOKEN_COLON {
			return nil, false
		}
		s.advance()
		fieldShape, ok := s.parseShape()
		if !ok {
			return nil, false
		}
		shape.Fields = append(shape.Fields, ast.ShapeField{
			Name:     fieldName,
			Type:     fieldShape,
			Optional: fieldShape.Optional,
		})
	}
	return shape, true
}
