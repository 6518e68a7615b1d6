// Package parser implements the SiMAL recursive-descent parser, transforming
// a lexer token stream into an ast.System.
package parser

import (
	"strings"

	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
)

// Parser transforms a stream of tokens into a SiMAL AST.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a new parser for the given token stream.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a token stream into a System. Per spec section 7, any
// structural error aborts the parse entirely — no partial AST is ever
// returned.
func Parse(tokens []lexer.Token) (*ast.System, error) {
	return New(tokens).Parse()
}

// Parse runs the parser to completion.
func (p *Parser) Parse() (*ast.System, error) {
	p.skipNewlines()

	if !(p.check(lexer.TOKEN_IDENT) && p.peek().Lexeme == "system") {
		return nil, NewParseError("expected 'system' keyword at file start", p.peek())
	}
	sysTok := p.advance()

	if _, err := p.consume(lexer.TOKEN_LBRACE, "expected '{' after 'system'"); err != nil {
		return nil, err
	}

	sys := &ast.System{Loc: loc(sysTok)}
	attrs, services, err := p.parseContainerBody(true)
	if err != nil {
		return nil, err
	}
	sys.Attributes = attrs
	sys.Services = services

	if _, err := p.consume(lexer.TOKEN_RBRACE, "expected '}' to close system block"); err != nil {
		return nil, err
	}
	return sys, nil
}

// parseContainerBody reads attributes (and, when allowServices, nested
// `service NAME { ... }` blocks) until the enclosing RBRACE. The RBRACE
// itself is left unconsumed for the caller.
func (p *Parser) parseContainerBody(allowServices bool) ([]*ast.Attribute, []*ast.Service, error) {
	var attrs []*ast.Attribute
	var services []*ast.Service
	var pending []*ast.Annotation
	seenKeys := map[string]bool{}

	for {
		p.skipSeparators()
		if p.check(lexer.TOKEN_RBRACE) || p.isAtEnd() {
			break
		}

		if p.check(lexer.TOKEN_AT) {
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, nil, err
			}
			pending = append(pending, ann)
			continue
		}

		if allowServices && p.check(lexer.TOKEN_IDENT) && p.peek().Lexeme == "service" &&
			p.peekAt(1).Type == lexer.TOKEN_IDENT && p.peekAt(2).Type == lexer.TOKEN_LBRACE {
			svc, err := p.parseService(pending)
			if err != nil {
				return nil, nil, err
			}
			pending = nil
			services = append(services, svc)
			continue
		}

		attr, err := p.parseAttribute(pending)
		if err != nil {
			return nil, nil, err
		}
		pending = nil
		if seenKeys[attr.Key] {
			return nil, nil, NewParseError("duplicate attribute key \""+attr.Key+"\"", p.previous())
		}
		seenKeys[attr.Key] = true
		attrs = append(attrs, attr)
	}

	if p.isAtEnd() && !p.check(lexer.TOKEN_RBRACE) {
		return nil, nil, NewParseError("unexpected end of input: unmatched '{'", p.peek())
	}
	if len(pending) > 0 {
		return nil, nil, NewParseError("annotation has no following node", p.peek())
	}
	return attrs, services, nil
}

func (p *Parser) parseService(pending []*ast.Annotation) (*ast.Service, error) {
	kwTok := p.advance() // 'service'
	nameTok := p.advance()
	if _, err := p.consume(lexer.TOKEN_LBRACE, "expected '{' after service name"); err != nil {
		return nil, err
	}
	attrs, _, err := p.parseContainerBody(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_RBRACE, "expected '}' to close service block"); err != nil {
		return nil, err
	}
	return &ast.Service{
		Name:        nameTok.Lexeme,
		Attributes:  attrs,
		Annotations: pending,
		Loc:         loc(kwTok),
	}, nil
}

// parseAttribute reads `key COLON value`.
func (p *Parser) parseAttribute(pending []*ast.Annotation) (*ast.Attribute, error) {
	keyTok := p.peek()
	if keyTok.Type != lexer.TOKEN_IDENT && keyTok.Type != lexer.TOKEN_STRING {
		return nil, NewParseError("expected attribute key", keyTok)
	}
	p.advance()

	if _, err := p.consume(lexer.TOKEN_COLON, "expected ':' after attribute key"); err != nil {
		return nil, err
	}

	value, err := p.parseValue(keyTok.Lexeme)
	if err != nil {
		return nil, err
	}
	return &ast.Attribute{
		Key:         keyTok.Lexeme,
		Value:       value,
		Annotations: pending,
		Loc:         loc(keyTok),
	}, nil
}

// parseValue dispatches on the token following `key COLON` (spec section 4.2).
func (p *Parser) parseValue(key string) (ast.Value, error) {
	switch {
	case p.check(lexer.TOKEN_LBRACE):
		return p.parseMapValue()
	case p.check(lexer.TOKEN_LBRACKET):
		return p.parseList(key)
	case p.check(lexer.TOKEN_STRING):
		tok := p.advance()
		return ast.StringValue{Value: tok.Lexeme, Loc: loc(tok)}, nil
	default:
		tok := p.peek()
		text := p.scanScalarText(false)
		return ast.StringValue{Value: text, Loc: loc(tok)}, nil
	}
}

// scanScalarText implements the spec's scalar-reconstruction rule: consume
// tokens until the nearest NEWLINE/COMMA/closing-bracket at the current
// nesting depth, re-joining the consumed tokens' textual forms with single
// spaces. When stopAtLBrace is true, an LBRACE at depth 0 also terminates
// the scan without being consumed (used for method return signatures, where
// a following `{` introduces the method's attribute map rather than being
// part of the scalar itself).
func (p *Parser) scanScalarText(stopAtLBrace bool) string {
	var parts []string
	depth := 0
	for {
		tok := p.peek()
		if tok.Type == lexer.TOKEN_EOF {
			break
		}
		if depth == 0 {
			switch tok.Type {
			case lexer.TOKEN_NEWLINE, lexer.TOKEN_COMMA, lexer.TOKEN_RBRACE, lexer.TOKEN_RBRACKET, lexer.TOKEN_RPAREN:
				return strings.Join(parts, " ")
			case lexer.TOKEN_LBRACE:
				if stopAtLBrace {
					return strings.Join(parts, " ")
				}
			}
		}
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LBRACKET, lexer.TOKEN_LPAREN:
			depth++
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RBRACKET, lexer.TOKEN_RPAREN:
			depth--
		}
		parts = append(parts, tok.TextForm())
		p.advance()
	}
	return strings.Join(parts, " ")
}

// parseAnnotation reads `@name(args)`. Arguments are split on top-level
// commas within the parentheses (nesting respects (){}[]), trimmed.
func (p *Parser) parseAnnotation() (*ast.Annotation, error) {
	atTok := p.advance() // '@'
	nameTok, err := p.consume(lexer.TOKEN_IDENT, "expected annotation name after '@'")
	if err != nil {
		return nil, err
	}
	ann := &ast.Annotation{Name: nameTok.Lexeme, Loc: loc(atTok)}

	if p.check(lexer.TOKEN_LPAREN) {
		p.advance()
		args, err := p.parseAnnotationArgs()
		if err != nil {
			return nil, err
		}
		ann.Args = args
		if _, err := p.consume(lexer.TOKEN_RPAREN, "expected ')' to close annotation arguments"); err != nil {
			return nil, err
		}
	}
	return ann, nil
}

func (p *Parser) parseAnnotationArgs() ([]string, error) {
	var args []string
	var current []string
	depth := 0
	flush := func() {
		text := strings.TrimSpace(strings.Join(current, " "))
		if text != "" {
			args = append(args, text)
		}
		current = nil
	}
	for {
		tok := p.peek()
		if tok.Type == lexer.TOKEN_EOF {
			return nil, NewParseError("unterminated annotation arguments", tok)
		}
		if depth == 0 && tok.Type == lexer.TOKEN_RPAREN {
			flush()
			return args, nil
		}
		if depth == 0 && tok.Type == lexer.TOKEN_COMMA {
			flush()
			p.advance()
			continue
		}
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LBRACKET, lexer.TOKEN_LPAREN:
			depth++
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RBRACKET, lexer.TOKEN_RPAREN:
			depth--
		}
		if tok.Type == lexer.TOKEN_STRING {
			current = append(current, "\""+tok.Lexeme+"\"")
		} else {
			current = append(current, tok.TextForm())
		}
		p.advance()
	}
}

// skipSeparators consumes any run of NEWLINE and/or COMMA tokens.
func (p *Parser) skipSeparators() {
	for p.check(lexer.TOKEN_NEWLINE) || p.check(lexer.TOKEN_COMMA) {
		p.advance()
	}
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
}

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.TOKEN_EOF }

func (p *Parser) peek() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t lexer.TokenType) bool { return p.peek().Type == t }

func (p *Parser) consume(t lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return lexer.Token{}, NewParseError(message, p.peek())
}

func loc(tok lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: tok.Line, Column: tok.Column}
}
