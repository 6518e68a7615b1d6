// Package parser implements the SiMAL recursive-descent parser, transforming
// a lexer token stream into an ast.System.
package parser

import (
	"fmt"
	"strings"

	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing.
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s (near %q)", e.Location.Line, e.Location.Column, e.Message, e.Token.Lexeme)
}

// NewParseError creates a new parse error anchored at the given token.
func NewParseError(message string, token lexer.Token) *ParseError {
	return &ParseError{
		Message:  message,
		Location: ast.SourceLocation{Line: token.Line, Column: token.Column},
		Token:    token,
	}
}

// ParseErrors joins several parse errors into one error value. Parse
// itself stops at the first structural error and returns that single
// *ParseError with no partial AST; it does not build a ParseErrors.
type ParseErrors []*ParseError

func (pe ParseErrors) Error() string {
	parts := make([]string, len(pe))
	for i, e := range pe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
