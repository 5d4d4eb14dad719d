package lishp

import "fmt"

// Builtin is an operation implemented in Go. It takes ownership of the
// already evaluated operands and returns the result.
type Builtin func(args *SExpr) Value

// Evaluator reduces Values to their simplest form.
type Evaluator struct {
	Builtins map[string]Builtin
}

// NewEvaluator returns an Evaluator with the default builtin table.
func NewEvaluator() *Evaluator {
	e := &Evaluator{Builtins: DefaultBuiltins()}
	e.Builtins["eval"] = e.builtinEval
	return e
}

// Eval reduces v. Only S-Expressions are reduced; every other value is
// returned as it is.
func (e *Evaluator) Eval(v Value) Value {
	if s, ok := v.(*SExpr); ok {
		return e.evalSExpr(s)
	}
	return v
}

func (e *Evaluator) evalSExpr(s *SExpr) Value {
	for i, c := range s.cells {
		s.cells[i] = e.Eval(c)
	}

	// First error wins.
	for i, c := range s.cells {
		if _, ok := c.(Error); ok {
			return s.TakeAt(i)
		}
	}

	switch s.Len() {
	case 0:
		return s
	case 1:
		return s.TakeAt(0)
	}

	head := s.RemoveAt(0)
	sym, ok := head.(Symbol)
	if !ok {
		s.drop()
		return ErrorVal("S-Expression does not start with symbol")
	}
	fn, ok := e.Builtins[string(sym)]
	if !ok {
		s.drop()
		return Errorf("Unsupported function: %s", sym)
	}
	return fn(s)
}

// EvalString parses, reads and evaluates one line of input. Parse failures
// are returned as a *ParseError and never become Values.
func (e *Evaluator) EvalString(input string) (Value, error) {
	root, err := Parse(input)
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return e.Eval(Read(root)), nil
}
