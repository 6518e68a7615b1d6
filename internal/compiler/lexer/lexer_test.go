package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanSource(t *testing.T, source string) []Token {
	t.Helper()
	tokens, errs := New(source).ScanTokens()
	require.Empty(t, errs, "unexpected lex errors: %v", errs)
	return tokens
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Type)
	}
	return out
}

func TestDelimitersAndPunctuation(t *testing.T) {
	tokens := scanSource(t, "{}[](): ,@->")
	assert.Equal(t, []TokenType{
		TOKEN_LBRACE, TOKEN_RBRACE, TOKEN_LBRACKET, TOKEN_RBRACKET,
		TOKEN_LPAREN, TOKEN_RPAREN, TOKEN_COLON, TOKEN_COMMA, TOKEN_AT,
		TOKEN_ARROW, TOKEN_EOF,
	}, types(tokens))
}

func TestSingleDashIsIdent(t *testing.T) {
	tokens := scanSource(t, "- ->")
	require.Len(t, tokens, 3)
	assert.Equal(t, TOKEN_IDENT, tokens[0].Type)
	assert.Equal(t, "-", tokens[0].Lexeme)
	assert.Equal(t, TOKEN_ARROW, tokens[1].Type)
}

func TestIdentifierCharset(t *testing.T) {
	tokens := scanSource(t, "postgres-12 meta[name=csrf-token] user_name /api/v1")
	require.True(t, len(tokens) >= 2)
	assert.Equal(t, "postgres-12", tokens[0].Lexeme)
}

func TestNumbersLexAsOneIdent(t *testing.T) {
	tokens := scanSource(t, "587")
	require.Len(t, tokens, 2)
	assert.Equal(t, TOKEN_IDENT, tokens[0].Type)
	assert.Equal(t, "587", tokens[0].Lexeme)
}

func TestSingleCharFallback(t *testing.T) {
	tokens := scanSource(t, "+ # = % *")
	var lexemes []string
	for _, tok := range tokens {
		if tok.Type == TOKEN_EOF {
			continue
		}
		assert.Equal(t, TOKEN_IDENT, tok.Type)
		lexemes = append(lexemes, tok.Lexeme)
	}
	assert.Equal(t, []string{"+", "#", "=", "%", "*"}, lexemes)
}

func TestQuotedStringVerbatim(t *testing.T) {
	tokens := scanSource(t, `"hello \n world"`)
	require.Len(t, tokens, 2)
	assert.Equal(t, TOKEN_STRING, tokens[0].Type)
	assert.Equal(t, `hello \n world`, tokens[0].Lexeme)
}

func TestUnterminatedQuoteIsError(t *testing.T) {
	_, errs := New(`"unterminated`).ScanTokens()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unterminated quoted string")
}

func TestBlankLinesCollapseToOneNewline(t *testing.T) {
	tokens := scanSource(t, "a\n\n\nb")
	assert.Equal(t, []TokenType{TOKEN_IDENT, TOKEN_NEWLINE, TOKEN_IDENT, TOKEN_EOF}, types(tokens))
}

func TestHeredocDedent(t *testing.T) {
	source := "<<SQL\n    select 1\n    from dual\nSQL\n"
	tokens := scanSource(t, source)
	require.GreaterOrEqual(t, len(tokens), 1)
	assert.Equal(t, TOKEN_STRING, tokens[0].Type)
	assert.Equal(t, "select 1\nfrom dual", tokens[0].Lexeme)
}

func TestHeredocUnterminated(t *testing.T) {
	_, errs := New("<<SQL\nselect 1\n").ScanTokens()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "missing closing label")
}

func TestHeredocMinimalIndentPreserved(t *testing.T) {
	source := "<<TXT\n  one\n    two\nTXT\n"
	tokens := scanSource(t, source)
	assert.Equal(t, "one\n  two", tokens[0].Lexeme)
}
