package expression

import "fmt"

// Evaluator parses and evaluates condition expressions. It carries the
// operator table, the registered custom functions and the variable bindings
// for one evaluation scope. It is not safe for concurrent use.
type Evaluator struct {
	operators map[string]*Operator
	functions map[string]*Function
	variables map[string]any
}

// New returns an evaluator with the built-in comparison and logical
// operators registered.
func New() *Evaluator {
	e := &Evaluator{
		operators: make(map[string]*Operator),
		functions: make(map[string]*Function),
		variables: make(map[string]any),
	}

	for _, op := range defaultOperators() {
		e.operators[op.Symbol] = op
	}

	return e
}

// RegisterOperator adds or replaces an operator.
func (e *Evaluator) RegisterOperator(op *Operator) {
	e.operators[op.Symbol] = op
}

// RegisterFunction registers a custom function under the given name with an
// explicitly declared arity.
func (e *Evaluator) RegisterFunction(name string, arity int, fn Func) {
	e.functions[name] = &Function{Name: name, Arity: arity, Call: fn}
}

// SetVariable binds a variable for subsequent evaluations.
func (e *Evaluator) SetVariable(name string, value any) {
	e.variables[name] = value
}

// Evaluate parses and evaluates the expression, returning the resulting
// literal token. Malformed expressions, unknown operators or functions and
// arity mismatches all return an error and no value.
func (e *Evaluator) Evaluate(input string) (Token, error) {
	tokens, err := e.tokenize(input)
	if err != nil {
		return Token{}, err
	}

	if len(tokens) == 0 {
		return Token{}, fmt.Errorf("empty expression: %w", ErrIncorrectExpression)
	}

	postfix, err := e.toPostfix(tokens)
	if err != nil {
		return Token{}, err
	}

	return e.evalPostfix(postfix)
}

// EvaluateBool evaluates the expression and coerces the result to a boolean.
func (e *Evaluator) EvaluateBool(input string) (bool, error) {
	token, err := e.Evaluate(input)
	if err != nil {
		return false, err
	}

	return truthy(token.Value), nil
}

// parenFrame tracks one open parenthesis during the infix to postfix
// conversion; function call parens additionally count their arguments.
type parenFrame struct {
	isCall   bool
	argCount int
	sawArg   bool
}

func markArg(frames []parenFrame) {
	if len(frames) > 0 {
		frames[len(frames)-1].sawArg = true
	}
}

// toPostfix converts the token stream to postfix order with the classic
// shunting-yard algorithm. Operators pop from the operator stack while the
// stack top has higher precedence, or equal precedence for left-associative
// operators; right-associative operators stay on the stack at equal
// precedence. Function call sites collect their argument count, validated at
// evaluation time against the function's declared arity.
func (e *Evaluator) toPostfix(tokens []Token) ([]Token, error) {
	var (
		output tokenStack
		ops    tokenStack
		frames []parenFrame
	)

	for i, token := range tokens {
		switch token.Kind {
		case TokenLiteral, TokenVariable:
			output.push(token)
			markArg(frames)
		case TokenFunction:
			if _, ok := e.functions[token.Name]; !ok {
				return nil, fmt.Errorf("%q: %w", token.Name, ErrUnknownFunction)
			}

			ops.push(token)
			markArg(frames)
		case TokenComma:
			for {
				if len(ops) == 0 {
					return nil, fmt.Errorf("comma outside a function call: %w", ErrIncorrectExpression)
				}

				if ops[len(ops)-1].Kind == TokenLeftParen {
					break
				}

				top, _ := ops.pop()
				output.push(top)
			}

			if len(frames) == 0 || !frames[len(frames)-1].isCall || !frames[len(frames)-1].sawArg {
				return nil, fmt.Errorf("misplaced comma: %w", ErrIncorrectExpression)
			}

			frames[len(frames)-1].argCount++
			frames[len(frames)-1].sawArg = false
		case TokenOperator:
			op, ok := e.operators[token.Name]
			if !ok {
				return nil, fmt.Errorf("%q: %w", token.Name, ErrUnknownOperator)
			}

			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kind != TokenOperator {
					break
				}

				topOp := e.operators[top.Name]
				if topOp.Precedence > op.Precedence ||
					(topOp.Precedence == op.Precedence && !op.RightAssociative) {
					popped, _ := ops.pop()
					output.push(popped)

					continue
				}

				break
			}

			ops.push(token)
		case TokenLeftParen:
			frames = append(frames, parenFrame{
				isCall: i > 0 && tokens[i-1].Kind == TokenFunction,
			})
			ops.push(token)
		case TokenRightParen:
			for {
				top, ok := ops.pop()
				if !ok {
					return nil, fmt.Errorf("unopened parenthesis: %w", ErrMismatchedParentheses)
				}

				if top.Kind == TokenLeftParen {
					break
				}

				output.push(top)
			}

			frame := frames[len(frames)-1]
			frames = frames[:len(frames)-1]

			if frame.isCall {
				fn, ok := ops.pop()
				if !ok || fn.Kind != TokenFunction {
					return nil, fmt.Errorf("orphan function call: %w", ErrIncorrectExpression)
				}

				argc := frame.argCount
				if frame.sawArg {
					argc++
				}

				fn.Value = argc
				output.push(fn)
			} else if frame.sawArg {
				// A closed grouping yields one value, visible to an
				// enclosing call as an argument.
				markArg(frames)
			}
		}
	}

	for len(ops) > 0 {
		top, _ := ops.pop()
		if top.Kind == TokenLeftParen {
			return nil, fmt.Errorf("unclosed parenthesis: %w", ErrMismatchedParentheses)
		}

		output.push(top)
	}

	return output, nil
}

// evalPostfix walks the postfix sequence maintaining a value stack.
func (e *Evaluator) evalPostfix(postfix []Token) (Token, error) {
	var stack tokenStack

	for _, token := range postfix {
		switch token.Kind {
		case TokenLiteral:
			stack.push(token)
		case TokenVariable:
			stack.push(e.resolveVariable(token))
		case TokenOperator:
			result, err := e.operators[token.Name].Execute(&stack)
			if err != nil {
				return Token{}, err
			}

			stack.push(result)
		case TokenFunction:
			argc, _ := token.Value.(int)

			result, err := e.functions[token.Name].Execute(&stack, argc)
			if err != nil {
				return Token{}, err
			}

			stack.push(result)
		default:
			return Token{}, fmt.Errorf("unexpected token in postfix stream: %w", ErrIncorrectExpression)
		}
	}

	if len(stack) != 1 {
		return Token{}, fmt.Errorf("expression leaves %d values on the stack: %w", len(stack), ErrIncorrectExpression)
	}

	return stack[0], nil
}

// resolveVariable resolves a variable token against the bound variables. An
// unbound identifier evaluates as its own name: stored condition operands
// arrive unquoted, so "status == pending" compares the two strings.
func (e *Evaluator) resolveVariable(token Token) Token {
	if value, ok := e.variables[token.Name]; ok {
		return Token{Kind: TokenLiteral, Value: value}
	}

	return Token{Kind: TokenLiteral, Value: token.Name}
}
