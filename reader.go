package lishp

import (
	"strconv"
	"strings"
)

// Read converts a parse tree into a Value. Malformed number literals become
// Error values rather than failing the read.
func Read(n *Node) Value {
	switch {
	case strings.Contains(n.Tag, "number"):
		return readNumber(n.Contents)
	case strings.Contains(n.Tag, "symbol"):
		return SymbolVal(n.Contents)
	case n.Tag == TagRoot || strings.Contains(n.Tag, "sexpr"):
		s := NewSExpr()
		for _, c := range n.Children {
			if skip(c) {
				continue
			}
			s.Append(Read(c))
		}
		return s
	case strings.Contains(n.Tag, "qexpr"):
		q := NewQExpr()
		for _, c := range n.Children {
			if skip(c) {
				continue
			}
			q.Append(Read(c))
		}
		return q
	default:
		return Errorf("unknown node tag: %s", n.Tag)
	}
}

func readNumber(lit string) Value {
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return ErrorVal("invalid number")
	}
	return NumberVal(n)
}

// skip reports whether n is punctuation with no value of its own.
func skip(n *Node) bool {
	switch n.Contents {
	case "(", ")", "{", "}":
		return true
	}
	return n.Tag == TagRegex
}
