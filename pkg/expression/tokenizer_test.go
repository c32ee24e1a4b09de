package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}

	return out
}

func TestTokenizeClassification(t *testing.T) {
	e := New()

	tokens, err := e.tokenize(`(amount >= 10.5) && status == 'open'`)
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{
		TokenLeftParen, TokenVariable, TokenOperator, TokenLiteral, TokenRightParen,
		TokenOperator, TokenVariable, TokenOperator, TokenLiteral,
	}, kinds(tokens))

	assert.Equal(t, "amount", tokens[1].Name)
	assert.Equal(t, ">=", tokens[2].Name)
	assert.Equal(t, 10.5, tokens[3].Value)
	assert.Equal(t, "open", tokens[8].Value)
}

func TestTokenizeFunctionLookahead(t *testing.T) {
	e := New()
	e.RegisterFunction("max", 2, func(args []any) (any, error) { return nil, nil })

	// Whitespace between the name and the parenthesis still reads as a call.
	tokens, err := e.tokenize("max (1, 2)")
	require.NoError(t, err)
	assert.Equal(t, TokenFunction, tokens[0].Kind)
	assert.Equal(t, "max", tokens[0].Name)

	// A bare identifier is a variable.
	tokens, err = e.tokenize("max")
	require.NoError(t, err)
	assert.Equal(t, TokenVariable, tokens[0].Kind)
}

func TestTokenizeBooleans(t *testing.T) {
	e := New()

	tokens, err := e.tokenize("true || false")
	require.NoError(t, err)

	assert.Equal(t, true, tokens[0].Value)
	assert.Equal(t, "||", tokens[1].Name)
	assert.Equal(t, false, tokens[2].Value)
}

func TestTokenizeRejectsGarbage(t *testing.T) {
	e := New()

	_, err := e.tokenize("a # b")
	assert.ErrorIs(t, err, ErrUnexpectedCharacter)
}
