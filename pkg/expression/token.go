// Package expression implements the condition expression language used by
// workflow nodes: infix boolean and comparison expressions over literals,
// variables and registered custom functions, parsed with a shunting-yard
// conversion to postfix and evaluated over a value stack.
package expression

// TokenKind classifies a parsed token.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenVariable
	TokenOperator
	TokenFunction
	TokenLeftParen
	TokenRightParen
	TokenComma
)

// Token is one unit of a parsed expression. Literals carry the parsed Go
// value (float64, string or bool) in Value; operators and functions carry
// their symbol or name in Name. A function token in postfix form additionally
// carries the argument count collected at the call site in Value.
type Token struct {
	Kind  TokenKind
	Name  string
	Value any
}

type tokenStack []Token

func (s *tokenStack) push(t Token) {
	*s = append(*s, t)
}

func (s *tokenStack) pop() (Token, bool) {
	if len(*s) == 0 {
		return Token{}, false
	}

	t := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]

	return t, true
}
