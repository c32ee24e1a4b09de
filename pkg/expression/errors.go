package expression

import (
	"errors"
	"fmt"
)

// Standard expression errors. All of them surface to the caller of Evaluate;
// the engine never recovers a malformed expression.
var (
	// ErrIncorrectExpression indicates an expression that parses into an
	// inconsistent token sequence (missing operands, dangling commas, more
	// than one value left after evaluation).
	ErrIncorrectExpression = errors.New("incorrect expression")

	// ErrMismatchedParentheses indicates unbalanced parentheses.
	ErrMismatchedParentheses = errors.New("mismatched parentheses")

	// ErrUnexpectedCharacter indicates input the tokenizer cannot consume.
	ErrUnexpectedCharacter = errors.New("unexpected character")

	// ErrUnknownOperator indicates an operator symbol with no registration.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrUnknownFunction indicates a call to an unregistered function.
	ErrUnknownFunction = errors.New("unknown function")
)

// ArityError reports a function call site supplying fewer arguments than the
// function's declared parameter count.
type ArityError struct {
	Function string
	Required int
	Given    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("incorrect number of parameters for function %q: %d needed, %d passed",
		e.Function, e.Required, e.Given)
}
