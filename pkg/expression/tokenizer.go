package expression

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.'
}

// operatorSymbols returns the registered operator symbols, longest first, so
// multi-character operators match before their prefixes.
func (e *Evaluator) operatorSymbols() []string {
	symbols := make([]string, 0, len(e.operators))
	for symbol := range e.operators {
		symbols = append(symbols, symbol)
	}

	sort.Slice(symbols, func(i, j int) bool {
		if len(symbols[i]) != len(symbols[j]) {
			return len(symbols[i]) > len(symbols[j])
		}

		return symbols[i] < symbols[j]
	})

	return symbols
}

// tokenize scans the input left to right into a token stream. Numbers become
// float64 literals, quoted strings become string literals, true/false become
// bool literals, and identifiers become function tokens when followed by an
// opening parenthesis, variable tokens otherwise.
func (e *Evaluator) tokenize(input string) ([]Token, error) {
	var tokens []Token

	symbols := e.operatorSymbols()

	i := 0
	for i < len(input) {
		c := input[i]

		switch {
		case isSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLeftParen})
			i++
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRightParen})
			i++
		case c == ',':
			tokens = append(tokens, Token{Kind: TokenComma})
			i++
		case isDigit(c) || (c == '.' && i+1 < len(input) && isDigit(input[i+1])):
			j := i
			for j < len(input) && (isDigit(input[j]) || input[j] == '.') {
				j++
			}

			value, err := strconv.ParseFloat(input[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("malformed number %q: %w", input[i:j], ErrUnexpectedCharacter)
			}

			tokens = append(tokens, Token{Kind: TokenLiteral, Value: value})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(input) && input[j] != c {
				j++
			}

			if j >= len(input) {
				return nil, fmt.Errorf("unterminated string at position %d: %w", i, ErrIncorrectExpression)
			}

			tokens = append(tokens, Token{Kind: TokenLiteral, Value: input[i+1 : j]})
			i = j + 1
		case isIdentStart(c):
			j := i
			for j < len(input) && isIdentPart(input[j]) {
				j++
			}

			word := input[i:j]

			k := j
			for k < len(input) && isSpace(input[k]) {
				k++
			}

			switch {
			case word == "true":
				tokens = append(tokens, Token{Kind: TokenLiteral, Value: true})
			case word == "false":
				tokens = append(tokens, Token{Kind: TokenLiteral, Value: false})
			case k < len(input) && input[k] == '(':
				tokens = append(tokens, Token{Kind: TokenFunction, Name: word})
			default:
				tokens = append(tokens, Token{Kind: TokenVariable, Name: word})
			}

			i = j
		default:
			matched := false

			for _, symbol := range symbols {
				if strings.HasPrefix(input[i:], symbol) {
					tokens = append(tokens, Token{Kind: TokenOperator, Name: symbol})
					i += len(symbol)
					matched = true

					break
				}
			}

			if !matched {
				return nil, fmt.Errorf("position %d (%q): %w", i, string(c), ErrUnexpectedCharacter)
			}
		}
	}

	return tokens, nil
}
