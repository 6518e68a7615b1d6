package parser

import (
	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
)

// RawLinesKey is the synthetic attribute key under which raw (non
// key:value) map lines are collected when a map contains both real
// entries and raw lines.
const RawLinesKey = "__raw__"

// parseMapValue parses `{ ... }` in attribute-value position. Per spec
// section 4.3, a map whose only content is raw lines collapses to a
// StringValue joining those lines with newlines; the parent attribute
// receives the string, not the map.
func (p *Parser) parseMapValue() (ast.Value, error) {
	braceTok := p.peek()
	entries, rawLines, err := p.parseMapBody()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 && len(rawLines) > 0 {
		return ast.StringValue{Value: joinLines(rawLines), Loc: loc(braceTok)}, nil
	}
	if len(rawLines) > 0 {
		entries = append(entries, rawAttribute(rawLines, braceTok))
	}
	return &ast.MapValue{Entries: entries, Loc: loc(braceTok)}, nil
}

// parseMapAttributes parses `{ ... }` in a position that always wants an
// attribute list (Block/Method attribute maps) — no raw-only collapse to
// a bare string applies there, since the caller's field expects entries.
func (p *Parser) parseMapAttributes() ([]*ast.Attribute, error) {
	braceTok := p.peek()
	entries, rawLines, err := p.parseMapBody()
	if err != nil {
		return nil, err
	}
	if len(rawLines) > 0 {
		entries = append(entries, rawAttribute(rawLines, braceTok))
	}
	return entries, nil
}

// parseMapBody reads entries until the matching RBRACE, which it
// consumes. Duplicate keys among the real entries are rejected; a
// pending annotation with no following node (including one immediately
// preceding a raw line) is rejected.
func (p *Parser) parseMapBody() ([]*ast.Attribute, []string, error) {
	if _, err := p.consume(lexer.TOKEN_LBRACE, "expected '{'"); err != nil {
		return nil, nil, err
	}

	var entries []*ast.Attribute
	var rawLines []string
	var pending []*ast.Annotation
	seenKeys := map[string]bool{}

	for {
		p.skipSeparators()
		if p.check(lexer.TOKEN_RBRACE) {
			p.advance()
			break
		}
		if p.isAtEnd() {
			return nil, nil, NewParseError("unexpected end of input: unmatched '{'", p.peek())
		}

		if p.check(lexer.TOKEN_AT) {
			ann, err := p.parseAnnotation()
			if err != nil {
				return nil, nil, err
			}
			pending = append(pending, ann)
			continue
		}

		if p.looksLikeMapEntry() {
			attr, err := p.parseAttribute(pending)
			if err != nil {
				return nil, nil, err
			}
			pending = nil
			if seenKeys[attr.Key] {
				return nil, nil, NewParseError("duplicate attribute key \""+attr.Key+"\"", p.previous())
			}
			seenKeys[attr.Key] = true
			entries = append(entries, attr)
			continue
		}

		if len(pending) > 0 {
			return nil, nil, NewParseError("annotation has no following node", p.peek())
		}
		rawLines = append(rawLines, p.scanScalarText(false))
	}

	if len(pending) > 0 {
		return nil, nil, NewParseError("annotation has no following node", p.peek())
	}
	return entries, rawLines, nil
}

// looksLikeMapEntry reports whether the upcoming tokens form `key COLON`.
func (p *Parser) looksLikeMapEntry() bool {
	if !(p.check(lexer.TOKEN_IDENT) || p.check(lexer.TOKEN_STRING)) {
		return false
	}
	return p.peekAt(1).Type == lexer.TOKEN_COLON
}

func rawAttribute(rawLines []string, braceTok lexer.Token) *ast.Attribute {
	items := make([]ast.Value, len(rawLines))
	for i, line := range rawLines {
		items[i] = ast.StringValue{Value: line}
	}
	return &ast.Attribute{
		Key:   RawLinesKey,
		Value: &ast.ListValue{Items: items, Loc: loc(braceTok)},
		Loc:   loc(braceTok),
	}
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}
