package expression

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator describes a binary infix operator: its symbol, shunting-yard
// precedence and associativity, and the computation applied to its operands.
type Operator struct {
	Symbol           string
	Precedence       int
	RightAssociative bool
	Apply            func(left, right Token) (Token, error)
}

// Execute pops the operator's two operands from the value stack and returns
// the computed literal. The second value popped is the left operand.
func (o *Operator) Execute(stack *tokenStack) (Token, error) {
	right, ok := stack.pop()
	if !ok {
		return Token{}, fmt.Errorf("operator %q has no operands: %w", o.Symbol, ErrIncorrectExpression)
	}

	left, ok := stack.pop()
	if !ok {
		return Token{}, fmt.Errorf("operator %q has one operand: %w", o.Symbol, ErrIncorrectExpression)
	}

	return o.Apply(left, right)
}

// numeric reports the float64 value of v when v is a number or a
// numeric-looking string.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

// compare orders two operand values: numeric comparison when both sides
// coerce to numbers, lexical comparison otherwise.
func compare(a, b any) int {
	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(stringify(a), stringify(b))
}

// truthy converts an operand value to a boolean for the logical operators.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b
		}

		if f, ok := numeric(t); ok {
			return f != 0
		}

		return t != ""
	default:
		return true
	}
}

func boolToken(b bool) Token {
	return Token{Kind: TokenLiteral, Value: b}
}

func comparison(symbol string, precedence int, match func(int) bool) *Operator {
	return &Operator{
		Symbol:     symbol,
		Precedence: precedence,
		Apply: func(left, right Token) (Token, error) {
			return boolToken(match(compare(left.Value, right.Value))), nil
		},
	}
}

// Built-in operator precedence: logical OR binds loosest, then logical AND,
// then equality, then ordering. All built-ins are left-associative binaries.
func defaultOperators() []*Operator {
	return []*Operator{
		{
			Symbol:     "||",
			Precedence: 10,
			Apply: func(left, right Token) (Token, error) {
				return boolToken(truthy(left.Value) || truthy(right.Value)), nil
			},
		},
		{
			Symbol:     "&&",
			Precedence: 15,
			Apply: func(left, right Token) (Token, error) {
				return boolToken(truthy(left.Value) && truthy(right.Value)), nil
			},
		},
		comparison("==", 20, func(c int) bool { return c == 0 }),
		comparison("!=", 20, func(c int) bool { return c != 0 }),
		comparison("<", 25, func(c int) bool { return c < 0 }),
		comparison(">", 25, func(c int) bool { return c > 0 }),
		comparison("<=", 25, func(c int) bool { return c <= 0 }),
		comparison(">=", 25, func(c int) bool { return c >= 0 }),
	}
}
