package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/lexer"
	"github.com/gatedb/gatedb/token"
)

func TestTokenizeEmptyInputIsJustEOF(t *testing.T) {
	toks, err := lexer.Tokenize("")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Type)
}

func TestTokenizeSimpleSelect(t *testing.T) {
	toks, err := lexer.Tokenize("SELECT * FROM users WHERE age >= 18;")
	require.NoError(t, err)

	var types []token.Type
	var lits []string
	for _, tk := range toks {
		types = append(types, tk.Type)
		lits = append(lits, tk.Lit)
	}
	assert.Equal(t, []token.Type{
		token.KEYWORD, token.OPERATOR, token.KEYWORD, token.IDENTIFIER,
		token.KEYWORD, token.IDENTIFIER, token.OPERATOR, token.NUMBER,
		token.SYMBOL, token.EOF,
	}, types)
	assert.Equal(t, "SELECT", lits[0])
	assert.Equal(t, "users", lits[3])
	assert.Equal(t, ">=", lits[6])
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks, err := lexer.Tokenize(`SELECT 'hello world'`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, token.STRING, toks[1].Type)
	assert.Equal(t, "hello world", toks[1].Lit)
}

func TestTokenizeLineComment(t *testing.T) {
	toks, err := lexer.Tokenize("SELECT 1 -- trailing comment\nFROM t")
	require.NoError(t, err)
	var lits []string
	for _, tk := range toks {
		lits = append(lits, tk.Lit)
	}
	assert.NotContains(t, lits, "trailing")
	assert.Contains(t, lits, "FROM")
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	toks, err := lexer.Tokenize("select Age from Users")
	require.NoError(t, err)
	assert.Equal(t, token.KEYWORD, toks[0].Type)
	assert.Equal(t, "SELECT", toks[0].Lit)
	assert.Equal(t, token.IDENTIFIER, toks[1].Type)
	assert.Equal(t, "Age", toks[1].Lit)
}

func TestTokenizeFloatAndOperators(t *testing.T) {
	toks, err := lexer.Tokenize("price <> 3.14 AND x != y")
	require.NoError(t, err)
	var lits []string
	for _, tk := range toks {
		lits = append(lits, tk.Lit)
	}
	assert.Contains(t, lits, "<>")
	assert.Contains(t, lits, "3.14")
	assert.Contains(t, lits, "!=")
}

func TestTokenizeBooleanAndNull(t *testing.T) {
	toks, err := lexer.Tokenize("TRUE FALSE NULL")
	require.NoError(t, err)
	assert.Equal(t, token.BOOLEAN, toks[0].Type)
	assert.Equal(t, token.BOOLEAN, toks[1].Type)
	assert.Equal(t, token.NULL, toks[2].Type)
}
