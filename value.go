package lishp

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a lishp runtime value: Number, Error, Symbol, *SExpr or *QExpr.
type Value interface {
	String() string
	KindName() string
	isValue()
}

// Number is a signed 64-bit integer.
type Number int64

// Error is a user-facing evaluation error. It travels through evaluation
// like any other value.
type Error struct {
	Msg string
}

// Symbol names a builtin.
type Symbol string

// SExpr is an evaluable list. It owns its cells.
type SExpr struct {
	list
}

// QExpr is a quoted list. It owns its cells and is never evaluated implicitly.
type QExpr struct {
	list
}

// NumberVal returns n as a Number.
func NumberVal(n int64) Number { return Number(n) }

// ErrorVal returns an Error carrying msg.
func ErrorVal(msg string) Error { return Error{Msg: msg} }

// SymbolVal returns the Symbol for name.
func SymbolVal(name string) Symbol { return Symbol(name) }

// Errorf returns an Error with a formatted message.
func Errorf(format string, args ...any) Error {
	return Error{Msg: fmt.Sprintf(format, args...)}
}

// NewSExpr returns an S-Expression owning cells.
func NewSExpr(cells ...Value) *SExpr {
	return &SExpr{list{cells: cells}}
}

// NewQExpr returns a Q-Expression owning cells.
func NewQExpr(cells ...Value) *QExpr {
	return &QExpr{list{cells: cells}}
}

func (Number) isValue() {}
func (Error) isValue()  {}
func (Symbol) isValue() {}
func (*SExpr) isValue() {}
func (*QExpr) isValue() {}

// list holds the cells of a container. A cell belongs to exactly one list.
type list struct {
	cells []Value
}

func (l *list) Len() int { return len(l.cells) }

// At returns cell i without removing it. The cell stays owned by the list.
func (l *list) At(i int) Value { return l.cells[i] }

func (l *list) push(vs ...Value) {
	l.cells = append(l.cells, vs...)
}

// RemoveAt removes cell i and hands it to the caller. An index out of range
// is an evaluator bug and panics.
func (l *list) RemoveAt(i int) Value {
	if i < 0 || i >= len(l.cells) {
		panic(fmt.Sprintf("lishp: RemoveAt(%d) on list of length %d", i, len(l.cells)))
	}
	v := l.cells[i]
	copy(l.cells[i:], l.cells[i+1:])
	l.cells[len(l.cells)-1] = nil
	l.cells = l.cells[:len(l.cells)-1]
	return v
}

// TakeAt removes cell i and discards the rest of the list. The container
// must not be used afterwards.
func (l *list) TakeAt(i int) Value {
	v := l.RemoveAt(i)
	l.drop()
	return v
}

// drain hands every cell to the caller and leaves the list empty.
func (l *list) drain() []Value {
	cells := l.cells
	l.cells = nil
	return cells
}

func (l *list) drop() {
	clear(l.cells)
	l.cells = nil
}

func (l *list) join(open, close string) string {
	parts := make([]string, len(l.cells))
	for i, c := range l.cells {
		parts[i] = c.String()
	}
	return open + strings.Join(parts, " ") + close
}

// Append adds v as the last cell and returns s for chaining.
func (s *SExpr) Append(v Value) *SExpr {
	s.push(v)
	return s
}

// Append adds v as the last cell and returns q for chaining.
func (q *QExpr) Append(v Value) *QExpr {
	q.push(v)
	return q
}

// Quote retags s as a Q-Expression. The cells move without copying and s is
// left empty.
func (s *SExpr) Quote() *QExpr {
	return &QExpr{list{cells: s.drain()}}
}

// Unquote retags q as an S-Expression. The cells move without copying and q
// is left empty.
func (q *QExpr) Unquote() *SExpr {
	return &SExpr{list{cells: q.drain()}}
}

func (n Number) String() string { return strconv.FormatInt(int64(n), 10) }
func (e Error) String() string  { return "Error: " + e.Msg }
func (s Symbol) String() string { return string(s) }
func (s *SExpr) String() string { return s.join("(", ")") }
func (q *QExpr) String() string { return q.join("{", "}") }

func (Number) KindName() string { return "Number" }
func (Error) KindName() string  { return "Error" }
func (Symbol) KindName() string { return "Symbol" }
func (*SExpr) KindName() string { return "S-Expression" }
func (*QExpr) KindName() string { return "Q-Expression" }

// ValuesEqual compares two Values for deep equality.
func ValuesEqual(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case Error:
		y, ok := b.(Error)
		return ok && x.Msg == y.Msg
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x == y
	case *SExpr:
		y, ok := b.(*SExpr)
		return ok && cellsEqual(x.cells, y.cells)
	case *QExpr:
		y, ok := b.(*QExpr)
		return ok && cellsEqual(x.cells, y.cells)
	}
	return false
}

func cellsEqual(as, bs []Value) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !ValuesEqual(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// ValueToGo converts a Value to a native Go value for JSON serialization.
func ValueToGo(v Value) any {
	switch x := v.(type) {
	case Number:
		return int64(x)
	case Error:
		return map[string]any{"error": x.Msg}
	case Symbol:
		return "sym:" + string(x)
	case *SExpr:
		return map[string]any{"sexpr": cellsToGo(x.cells)}
	case *QExpr:
		return map[string]any{"qexpr": cellsToGo(x.cells)}
	default:
		return nil
	}
}

func cellsToGo(cells []Value) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = ValueToGo(c)
	}
	return out
}
