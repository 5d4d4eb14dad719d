package lishp

// DefaultBuiltins returns the list and arithmetic builtins. The "eval"
// builtin needs an Evaluator and is added by NewEvaluator.
func DefaultBuiltins() map[string]Builtin {
	return map[string]Builtin{
		"list": builtinList,
		"head": builtinHead,
		"tail": builtinTail,
		"join": builtinJoin,
		"len":  builtinLen,
		"cons": builtinCons,
		"init": builtinInit,
		// Arithmetic
		"+": arith("+"),
		"-": arith("-"),
		"*": arith("*"),
		"/": arith("/"),
		"%": arith("%"),
	}
}

// --- Argument checks ---

func checkArity(name string, args *SExpr, want int) (Error, bool) {
	n := args.Len()
	if n == want {
		return Error{}, true
	}
	args.drop()
	if n > want {
		return Errorf("Function '%s' passed too many arguments. Got %d, expected %d.", name, n, want), false
	}
	return Errorf("Function '%s' passed too few arguments. Got %d, expected %d.", name, n, want), false
}

func checkQExprs(name string, args *SExpr) (Error, bool) {
	for i, c := range args.cells {
		if _, ok := c.(*QExpr); !ok {
			fail := Errorf("Function '%s' passed incorrect type for argument %d. Got %s, expected Q-Expression.", name, i, c.KindName())
			args.drop()
			return fail, false
		}
	}
	return Error{}, true
}

// singleQExpr checks that args holds exactly one Q-Expression and takes it.
// When nonEmpty is set the Q-Expression must have at least one cell.
func singleQExpr(name string, args *SExpr, nonEmpty bool) (*QExpr, Value) {
	if fail, ok := checkArity(name, args, 1); !ok {
		return nil, fail
	}
	if fail, ok := checkQExprs(name, args); !ok {
		return nil, fail
	}
	q := args.TakeAt(0).(*QExpr)
	if nonEmpty && q.Len() == 0 {
		return nil, Errorf("Function '%s' passed {}.", name)
	}
	return q, nil
}

// --- List builtins ---

func builtinList(args *SExpr) Value {
	return args.Quote()
}

func builtinHead(args *SExpr) Value {
	q, fail := singleQExpr("head", args, true)
	if fail != nil {
		return fail
	}
	first := q.RemoveAt(0)
	q.drop()
	return NewQExpr(first)
}

func builtinTail(args *SExpr) Value {
	q, fail := singleQExpr("tail", args, true)
	if fail != nil {
		return fail
	}
	q.RemoveAt(0)
	return q
}

func builtinInit(args *SExpr) Value {
	q, fail := singleQExpr("init", args, true)
	if fail != nil {
		return fail
	}
	q.RemoveAt(q.Len() - 1)
	return q
}

func builtinLen(args *SExpr) Value {
	q, fail := singleQExpr("len", args, false)
	if fail != nil {
		return fail
	}
	n := q.Len()
	q.drop()
	return NumberVal(int64(n))
}

func builtinCons(args *SExpr) Value {
	return NewQExpr(args.drain()...)
}

func builtinJoin(args *SExpr) Value {
	if fail, ok := checkQExprs("join", args); !ok {
		return fail
	}
	out := NewQExpr()
	for args.Len() > 0 {
		q := args.RemoveAt(0).(*QExpr)
		out.push(q.drain()...)
	}
	return out
}

func (e *Evaluator) builtinEval(args *SExpr) Value {
	q, fail := singleQExpr("eval", args, false)
	if fail != nil {
		return fail
	}
	return e.Eval(q.Unquote())
}

// --- Arithmetic ---

// arith returns the left-fold builtin for op. "-" with a single operand
// negates it.
func arith(op string) Builtin {
	return func(args *SExpr) Value {
		for i, c := range args.cells {
			if _, ok := c.(Number); !ok {
				fail := Errorf("Function '%s' passed incorrect type for argument %d. Got %s, expected Number.", op, i, c.KindName())
				args.drop()
				return fail
			}
		}
		if args.Len() == 0 {
			return Errorf("Function '%s' passed no arguments.", op)
		}

		acc := args.RemoveAt(0).(Number)
		if op == "-" && args.Len() == 0 {
			return -acc
		}
		for args.Len() > 0 {
			y := args.RemoveAt(0).(Number)
			switch op {
			case "+":
				acc += y
			case "-":
				acc -= y
			case "*":
				acc *= y
			case "/", "%":
				if y == 0 {
					args.drop()
					return ErrorVal("Division by zero")
				}
				if op == "/" {
					acc /= y
				} else {
					acc %= y
				}
			}
		}
		return acc
	}
}
