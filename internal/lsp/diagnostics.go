package lsp

import (
	"fmt"
	"strings"

	"github.com/simal-lang/simal/internal/cli/ui"
	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
	"github.com/simal-lang/simal/internal/compiler/parser"
	"go.lsp.dev/protocol"
)

// Diagnose lexes and parses source and returns the diagnostics a client
// should display: lex/parse errors at Error severity, plus an Hint for
// every endpoint whose request or response signature could not be
// structurally enriched and was left as raw text.
func Diagnose(source string) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	tokens, lexErrors := lexer.New(source).ScanTokens()
	for _, e := range lexErrors {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    pointRange(e.Line, e.Column),
			Severity: protocol.DiagnosticSeverityError,
			Source:   "simal",
			Message:  e.Message,
		})
	}
	if len(lexErrors) > 0 {
		return diagnostics
	}

	system, err := parser.Parse(tokens)
	if err != nil {
		if pe, ok := err.(*parser.ParseError); ok {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    pointRange(pe.Location.Line, pe.Location.Column),
				Severity: protocol.DiagnosticSeverityError,
				Source:   "simal",
				Message:  verbTypoMessage(pe),
			})
		} else {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    pointRange(1, 1),
				Severity: protocol.DiagnosticSeverityError,
				Source:   "simal",
				Message:  err.Error(),
			})
		}
		return diagnostics
	}

	for _, ep := range collectEndpoints(system) {
		if unenriched(ep) {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    pointRange(ep.Loc.Line, ep.Loc.Column),
				Severity: protocol.DiagnosticSeverityHint,
				Source:   "simal",
				Message:  "endpoint signature could not be parsed; left as raw text",
			})
		}
	}

	return diagnostics
}

// verbTypoMessage enriches a "not a recognized HTTP verb" parse error with
// close spellings of the real verbs, the way the CLI's resource-not-found
// errors suggest close resource names.
func verbTypoMessage(pe *parser.ParseError) string {
	if !strings.HasSuffix(pe.Message, "is not a recognized HTTP verb") {
		return pe.Message
	}
	suggestions := ui.FindSimilar(pe.Token.Lexeme, parser.HTTPVerbs(), nil)
	if len(suggestions) == 0 {
		return pe.Message
	}
	return fmt.Sprintf("%s (did you mean: %s?)", pe.Message, strings.Join(suggestions, ", "))
}

func unenriched(ep *ast.Endpoint) bool {
	return (ep.RequestRaw != "" && ep.RequestType == nil) ||
		(ep.ResponseRaw != "" && ep.ResponseType == nil)
}

// collectEndpoints walks every attribute value reachable from system
// looking for *ast.Endpoint entries, however deeply they are nested
// inside maps and lists.
func collectEndpoints(system *ast.System) []*ast.Endpoint {
	var out []*ast.Endpoint
	walkAttrs(system.Attributes, &out)
	for _, svc := range system.Services {
		walkAttrs(svc.Attributes, &out)
	}
	return out
}

func walkAttrs(attrs []*ast.Attribute, out *[]*ast.Endpoint) {
	for _, attr := range attrs {
		walkValue(attr.Value, out)
	}
}

func walkValue(v ast.Value, out *[]*ast.Endpoint) {
	switch val := v.(type) {
	case *ast.Endpoint:
		*out = append(*out, val)
	case *ast.MapValue:
		walkAttrs(val.Entries, out)
	case *ast.ListValue:
		for _, item := range val.Items {
			walkValue(item, out)
		}
	}
}

func pointRange(line, column int) protocol.Range {
	// LSP positions are zero-based; Location tracks 1-based lex/parse
	// positions.
	l := uint32(0)
	if line > 0 {
		l = uint32(line - 1)
	}
	c := uint32(0)
	if column > 0 {
		c = uint32(column - 1)
	}
	return protocol.Range{
		Start: protocol.Position{Line: l, Character: c},
		End:   protocol.Position{Line: l, Character: c + 1},
	}
}
