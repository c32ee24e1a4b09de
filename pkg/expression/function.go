package expression

import "fmt"

// Func is the callback signature for registered custom functions. Arguments
// arrive in call-site order.
type Func func(args []any) (any, error)

// Function is a named custom function with an explicitly declared arity.
// Arity is declared at registration rather than inferred, so a call site
// supplying fewer arguments fails before the callback runs.
type Function struct {
	Name  string
	Arity int
	Call  Func
}

// Execute pops argc operands from the value stack, rebuilds them in original
// call order and pushes the callback's result as a literal.
func (f *Function) Execute(stack *tokenStack, argc int) (Token, error) {
	if argc < f.Arity {
		return Token{}, &ArityError{Function: f.Name, Required: f.Arity, Given: argc}
	}

	args := make([]any, argc)

	// Operands pop in reverse call order; fill the slice back to front.
	for i := argc - 1; i >= 0; i-- {
		tok, ok := stack.pop()
		if !ok {
			return Token{}, fmt.Errorf("function %q is missing operands: %w", f.Name, ErrIncorrectExpression)
		}

		args[i] = tok.Value
	}

	result, err := f.Call(args)
	if err != nil {
		return Token{}, fmt.Errorf("function %q: %w", f.Name, err)
	}

	return Token{Kind: TokenLiteral, Value: result}, nil
}
