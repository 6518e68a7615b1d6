package parser

import (
	"strings"

	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
)

// parseList parses `[ ... ]`. The attribute key selects which of the
// specialized list-item grammars (components/fields/methods/endpoints)
// applies; any other key falls back to the generic item rule (spec
// section 4.4).
func (p *Parser) parseList(key string) (ast.Value, error) {
	bracketTok := p.peek()
	if _, err := p.consume(lexer.TOKEN_LBRACKET, "expected '['"); err != nil {
		return nil, err
	}

	var items []ast.Value
	var pending []*ast.Annotation

	for {
		p.skipSeparators()
		if p.check(lexer.TOKEN_RBRACKET) {
			p.advance()
			break
		}
		if p.isAtEnd() {
			return nil, NewParseError("unexpected end of input: unmatched '['", p.peek())
		}

		if p.check(lexer.TOKEN_AT) {
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, err
			}
			pending = append(pending, ann)
			continue
		}

		item, err := p.parseListItem(key, pending)
		if err != nil {
			return nil, err
		}
		pending = nil
		items = append(items, item)
	}

	if len(pending) > 0 {
		return nil, NewParseError("annotation has no following node", p.peek())
	}
	return &ast.ListValue{Items: items, Loc: loc(bracketTok)}, nil
}

func (p *Parser) parseListItem(key string, pending []*ast.Annotation) (ast.Value, error) {
	switch key {
	case "components":
		return p.parseComponentItem(pending)
	case "fields":
		return p.parseFieldItem(pending)
	case "methods":
		return p.parseMethodItem(pending)
	case "endpoints":
		return p.parseEndpointItem(pending)
	default:
		return p.parseGenericListItem(pending)
	}
}

// parseGenericListItem handles list entries outside the four specialized
// contexts: a nested map/list, or a scalar, optionally annotated.
func (p *Parser) parseGenericListItem(pending []*ast.Annotation) (ast.Value, error) {
	tok := p.peek()
	var val ast.Value
	var err error
	switch {
	case p.check(lexer.TOKEN_LBRACE):
		val, err = p.parseMapValue()
	case p.check(lexer.TOKEN_LBRACKET):
		val, err = p.parseList("")
	case p.check(lexer.TOKEN_STRING):
		strTok := p.advance()
		val = ast.StringValue{Value: strTok.Lexeme, Loc: loc(strTok)}
	default:
		val = ast.StringValue{Value: p.scanScalarText(false), Loc: loc(tok)}
	}
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return &ast.Attribute{Value: val, Annotations: pending, Loc: loc(tok)}, nil
	}
	return val, nil
}

// parseComponentItem matches `Kind Name { attrs }` (a Block); anything
// else in a `components` list falls back to the generic item rule.
func (p *Parser) parseComponentItem(pending []*ast.Annotation) (ast.Value, error) {
	if p.check(lexer.TOKEN_IDENT) && p.peekAt(1).Type == lexer.TOKEN_IDENT && p.peekAt(2).Type == lexer.TOKEN_LBRACE {
		kindTok := p.advance()
		nameTok := p.advance()
		attrs, err := p.parseMapAttributes()
		if err != nil {
			return nil, err
		}
		return &ast.Block{
			Kind:        kindTok.Lexeme,
			Name:        nameTok.Lexeme,
			Attributes:  attrs,
			Annotations: pending,
			Loc:         loc(kindTok),
		}, nil
	}
	return p.parseGenericListItem(pending)
}

// parseFieldItem matches `[+-#]? Name : Type` (spec section 4.4).
func (p *Parser) parseFieldItem(pending []*ast.Annotation) (ast.Value, error) {
	startTok := p.peek()
	visibility := ast.VisibilityNone
	if p.check(lexer.TOKEN_IDENT) && isVisibilityMarker(p.peek().Lexeme) {
		switch p.advance().Lexeme {
		case "+":
			visibility = ast.VisibilityPublic
		case "-":
			visibility = ast.VisibilityPrivate
		case "#":
			visibility = ast.VisibilityProtected
		}
	}

	nameTok, err := p.consume(lexer.TOKEN_IDENT, "expected field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_COLON, "expected ':' after field name"); err != nil {
		return nil, err
	}
	typ := strings.TrimSpace(p.scanScalarText(false))

	return &ast.Field{
		Visibility:  visibility,
		Name:        nameTok.Lexeme,
		Type:        typ,
		Annotations: pending,
		Loc:         loc(startTok),
	}, nil
}

func isVisibilityMarker(lexeme string) bool {
	return lexeme == "+" || lexeme == "-" || lexeme == "#"
}

// parseMethodItem matches `[+-#]? Name(params) -> Returns [{ attrs }]`.
func (p *Parser) parseMethodItem(pending []*ast.Annotation) (ast.Value, error) {
	startTok := p.peek()
	visibility := ast.VisibilityNone
	if p.check(lexer.TOKEN_IDENT) && isVisibilityMarker(p.peek().Lexeme) {
		switch p.advance().Lexeme {
		case "+":
			visibility = ast.VisibilityPublic
		case "-":
			visibility = ast.VisibilityPrivate
		case "#":
			visibility = ast.VisibilityProtected
		}
	}

	nameTok, err := p.consume(lexer.TOKEN_IDENT, "expected method name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_LPAREN, "expected '(' after method name"); err != nil {
		return nil, err
	}
	params, err := p.scanBalanced(lexer.TOKEN_LPAREN, lexer.TOKEN_RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_ARROW, "expected '->' after method parameters"); err != nil {
		return nil, err
	}
	returns := strings.TrimSpace(p.scanScalarText(true))

	var attrs []*ast.Attribute
	if p.check(lexer.TOKEN_LBRACE) {
		attrs, err = p.parseMapAttributes()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Method{
		Visibility:  visibility,
		Name:        nameTok.Lexeme,
		Params:      strings.TrimSpace(params),
		Returns:     returns,
		Attributes:  attrs,
		Annotations: pending,
		Loc:         loc(startTok),
	}, nil
}

// scanBalanced consumes tokens up to (and including) the matching close
// token — the caller must already have consumed the opening token — and
// returns the interior joined with single spaces. NEWLINE tokens inside
// are dropped rather than joined in, since parameter/argument lists are
// reconstructed onto one logical line.
func (p *Parser) scanBalanced(open, close lexer.TokenType) (string, error) {
	depth := 1
	var parts []string
	for {
		tok := p.peek()
		if tok.Type == lexer.TOKEN_EOF {
			return "", NewParseError("unterminated parameter list", tok)
		}
		if tok.Type == close {
			depth--
			p.advance()
			if depth == 0 {
				return strings.Join(parts, " "), nil
			}
			parts = append(parts, tok.TextForm())
			continue
		}
		if tok.Type == open {
			depth++
		}
		if tok.Type == lexer.TOKEN_NEWLINE {
			p.advance()
			continue
		}
		parts = append(parts, tok.TextForm())
		p.advance()
	}
}
