package parser

import (
	"sort"
	"strings"

	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
)

var httpVerbs = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// HTTPVerbs returns the bare uppercase verbs that start an HTTP-style
// endpoint item, sorted, for callers (diagnostics, error messages) that
// want to suggest a correction when a near-miss verb is typed.
func HTTPVerbs() []string {
	verbs := make([]string, 0, len(httpVerbs))
	for v := range httpVerbs {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return verbs
}

// looksLikeVerbTypo reports whether lexeme resembles an attempted HTTP
// verb (a short, all-uppercase identifier) rather than a deliberate RPC
// method name, which by convention starts lowercase or with a visibility
// marker. Used to decide whether an RPC-parse failure is worth a verb
// suggestion.
func looksLikeVerbTypo(lexeme string) bool {
	if len(lexeme) == 0 || len(lexeme) > 10 {
		return false
	}
	for _, r := range lexeme {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return !httpVerbs[lexeme]
}

// parseEndpointItem dispatches between the HTTP and RPC endpoint grammars
// (spec section 4.4): an HTTP-style item starts with one of the bare
// uppercase verb tokens, everything else is RPC-style.
func (p *Parser) parseEndpointItem(pending []*ast.Annotation) (ast.Value, error) {
	if p.check(lexer.TOKEN_IDENT) && httpVerbs[p.peek().Lexeme] {
		return p.parseHTTPEndpoint(pending)
	}
	return p.parseRPCEndpoint(pending)
}

func (p *Parser) parseHTTPEndpoint(pending []*ast.Annotation) (ast.Value, error) {
	startTok := p.peek()
	verbTok := p.advance()

	line := p.collectLogicalLine()
	arrowIdx := findTopLevelArrow(line)
	if arrowIdx == -1 {
		return nil, NewParseError("endpoint: expected '->' in "+joinTokens(line), startTok)
	}
	left, right := line[:arrowIdx], line[arrowIdx+1:]

	path, requestRaw := splitPathRequest(left)
	body, attrTokens := splitTrailingBracket(right)
	responseRaw := joinTokens(body)

	attrs, err := parseFlatAttrs(attrTokens)
	if err != nil {
		return nil, err
	}

	ep := &ast.Endpoint{
		Style:       ast.EndpointHTTP,
		Method:      verbTok.Lexeme,
		Path:        strings.TrimSpace(joinTokens(path)),
		RequestRaw:  strings.TrimSpace(joinTokens(requestRaw)),
		ResponseRaw: strings.TrimSpace(responseRaw),
		Attributes:  attrs,
		Annotations: pending,
		Loc:         loc(startTok),
	}
	enrichEndpoint(ep)
	return ep, nil
}

func (p *Parser) parseRPCEndpoint(pending []*ast.Annotation) (ast.Value, error) {
	startTok := p.peek()
	nameTok, err := p.consume(lexer.TOKEN_IDENT, "expected RPC method name")
	if err != nil {
		return nil, err
	}
	if looksLikeVerbTypo(nameTok.Lexeme) {
		return nil, NewParseError(nameTok.Lexeme+" is not a recognized HTTP verb", nameTok)
	}
	if _, err := p.consume(lexer.TOKEN_LPAREN, "expected '(' after RPC method name"); err != nil {
		return nil, err
	}
	requestRaw, err := p.scanBalanced(lexer.TOKEN_LPAREN, lexer.TOKEN_RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_ARROW, "expected '->' after RPC request signature"); err != nil {
		return nil, err
	}

	line := p.collectLogicalLine()
	body, attrTokens := splitTrailingBracket(line)
	attrs, err := parseFlatAttrs(attrTokens)
	if err != nil {
		return nil, err
	}

	ep := &ast.Endpoint{
		Style:       ast.EndpointGRPC,
		Method:      nameTok.Lexeme,
		RequestRaw:  strings.TrimSpace(requestRaw),
		ResponseRaw: strings.TrimSpace(joinTokens(body)),
		Attributes:  attrs,
		Annotations: pending,
		Loc:         loc(startTok),
	}
	enrichEndpoint(ep)
	return ep, nil
}

// collectLogicalLine advances the parser through the tokens that make up
// one endpoint list item — up to, but not including, the first top-level
// NEWLINE, COMMA, or the RBRACKET that closes the enclosing endpoints
// list — without consuming the terminator, so the list loop can tell a
// separator from the list's end.
func (p *Parser) collectLogicalLine() []lexer.Token {
	start := p.pos
	depth := 0
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type == lexer.TOKEN_EOF {
			break
		}
		if depth == 0 && (tok.Type == lexer.TOKEN_NEWLINE || tok.Type == lexer.TOKEN_COMMA || tok.Type == lexer.TOKEN_RBRACKET) {
			break
		}
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LBRACKET, lexer.TOKEN_LPAREN:
			depth++
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET:
			depth--
		}
		p.pos++
	}
	return p.tokens[start:p.pos]
}

// findTopLevelArrow returns the index of the first ARROW token at bracket
// depth 0, or -1.
func findTopLevelArrow(tokens []lexer.Token) int {
	depth := 0
	for i, tok := range tokens {
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LBRACKET, lexer.TOKEN_LPAREN:
			depth++
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET:
			depth--
		case lexer.TOKEN_ARROW:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitPathRequest splits the left half of an HTTP endpoint line into its
// path and (optional) request signature. The request begins at the first
// top-level "JSON" identifier, or at a top-level LBRACE that is not the
// opening of a `{placeholder}` group embedded in the path — recognized
// here as a bare '{' whose preceding token is a path-shaped identifier
// (one containing '/'). This resolves an ambiguity the grammar leaves
// implicit: a path ending in a placeholder (`/things/{id}`) must stay
// whole when there is no separate request signature.
func splitPathRequest(tokens []lexer.Token) (path, request []lexer.Token) {
	depth := 0
	splitIdx := -1
	for i, tok := range tokens {
		if depth == 0 {
			if tok.Type == lexer.TOKEN_IDENT && tok.Lexeme == "JSON" {
				splitIdx = i
				break
			}
			if tok.Type == lexer.TOKEN_LBRACE {
				precededByPathIdent := i > 0 && tokens[i-1].Type == lexer.TOKEN_IDENT && strings.Contains(tokens[i-1].Lexeme, "/")
				if !precededByPathIdent {
					splitIdx = i
					break
				}
			}
		}
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LBRACKET, lexer.TOKEN_LPAREN:
			depth++
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET:
			depth--
		}
	}
	if splitIdx == -1 {
		return tokens, nil
	}
	return tokens[:splitIdx], tokens[splitIdx:]
}

// splitTrailingBracket peels a trailing top-level `[ ... ]` group off the
// end of tokens (the endpoint's optional attribute block), returning the
// body before it and the inner tokens of the bracket (brackets stripped).
func splitTrailingBracket(tokens []lexer.Token) (body, attrs []lexer.Token) {
	type frame struct {
		typ lexer.TokenType
		idx int
	}
	var stack []frame
	var start, end = -1, -1
	for i, tok := range tokens {
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LPAREN, lexer.TOKEN_LBRACKET:
			stack = append(stack, frame{tok.Type, i})
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				start, end = top.idx, i
			}
		}
	}
	if start == -1 || end != len(tokens)-1 || tokens[start].Type != lexer.TOKEN_LBRACKET {
		return tokens, nil
	}
	return tokens[:start], tokens[start+1 : end]
}

// parseFlatAttrs parses a flat `k: v, k2: v2` token sequence, as found
// inside an endpoint's trailing attribute block.
func parseFlatAttrs(tokens []lexer.Token) ([]*ast.Attribute, error) {
	var entries []*ast.Attribute
	i := 0
	for i < len(tokens) {
		if tokens[i].Type == lexer.TOKEN_COMMA {
			i++
			continue
		}
		keyTok := tokens[i]
		if keyTok.Type != lexer.TOKEN_IDENT && keyTok.Type != lexer.TOKEN_STRING {
			return nil, NewParseError("expected attribute key in endpoint attribute block", keyTok)
		}
		i++
		if i >= len(tokens) || tokens[i].Type != lexer.TOKEN_COLON {
			return nil, NewParseError("expected ':' in endpoint attribute block", keyTok)
		}
		i++
		valStart := i
		for i < len(tokens) && tokens[i].Type != lexer.TOKEN_COMMA {
			i++
		}
		valText := strings.TrimSpace(joinTokens(tokens[valStart:i]))
		entries = append(entries, &ast.Attribute{
			Key:   keyTok.Lexeme,
			Value: ast.StringValue{Value: valText, Loc: loc(keyTok)},
			Loc:   loc(keyTok),
		})
	}
	return entries, nil
}

// joinTokens reconstructs endpoint path/request/response text preserving
// the original spacing between adjacent tokens rather than always
// inserting a single space (unlike the generic scalar-reconstruction
// rule in scanScalarText). This keeps a path like "/things/{id}" whole:
// the generic single-space join documented in spec section 4.2 is a
// deliberately lossy fallback for free-form scalars, but the worked
// endpoint example in section 8 requires byte-exact path reassembly, so
// the endpoint-signature reconstruction tracks column adjacency instead.
func joinTokens(tokens []lexer.Token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			adjacent := tok.Line == prev.Line && tok.Column == prev.Column+len(prev.TextForm())
			if !adjacent {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok.TextForm())
	}
	return b.String()
}
