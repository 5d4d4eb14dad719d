package lishp

import (
	"fmt"
	"strings"

	"github.com/hucsmn/peg"
)

// Tags carried by parse tree nodes.
const (
	TagRoot   = ">"
	TagNumber = "expr|number|regex"
	TagSymbol = "expr|symbol|regex"
	TagSExpr  = "expr|sexpr|>"
	TagQExpr  = "expr|qexpr|>"
	TagChar   = "char"
	TagRegex  = "regex"
)

const (
	symbolChars = "_+-*/\\=<>!&%"
	spaceChars  = " \t\n\r\v\f"
)

var (
	spaces = peg.Q0(peg.S(spaceChars))

	number = peg.CT(leafCons(TagNumber),
		peg.Seq(peg.Q01(peg.T("-")), peg.Q1(peg.R('0', '9'))))

	symbol = peg.CT(leafCons(TagSymbol),
		peg.Q1(peg.Alt(peg.R('a', 'z', 'A', 'Z', '0', '9'), peg.S(symbolChars))))

	exprs = peg.Q0(peg.Seq(spaces, peg.V("expr")))

	program = peg.Let(
		map[string]peg.Pattern{
			"expr": peg.Alt(
				number,
				symbol,
				peg.CC(groupCons(TagSExpr),
					peg.Seq(delim("("), exprs, spaces, delim(")"))),
				peg.CC(groupCons(TagQExpr),
					peg.Seq(delim("{"), exprs, spaces, delim("}"))),
			),
		},
		peg.CC(rootCons, peg.Seq(exprs, spaces)))
)

func delim(s string) peg.Pattern {
	return peg.CT(leafCons(TagChar), peg.T(s))
}

func leafCons(tag string) func(string, peg.Position) (peg.Capture, error) {
	return func(lit string, _ peg.Position) (peg.Capture, error) {
		return &Node{Tag: tag, Contents: lit}, nil
	}
}

func groupCons(tag string) func([]peg.Capture) (peg.Capture, error) {
	return func(caps []peg.Capture) (peg.Capture, error) {
		children, err := captureNodes(caps)
		if err != nil {
			return nil, err
		}
		return &Node{Tag: tag, Children: children}, nil
	}
}

// rootCons wraps the top level expressions between empty start and end
// markers.
func rootCons(caps []peg.Capture) (peg.Capture, error) {
	children, err := captureNodes(caps)
	if err != nil {
		return nil, err
	}
	all := make([]*Node, 0, len(children)+2)
	all = append(all, &Node{Tag: TagRegex})
	all = append(all, children...)
	all = append(all, &Node{Tag: TagRegex})
	return &Node{Tag: TagRoot, Children: all}, nil
}

func captureNodes(caps []peg.Capture) ([]*Node, error) {
	nodes := make([]*Node, len(caps))
	for i, c := range caps {
		n, ok := c.(*Node)
		if !ok {
			return nil, fmt.Errorf("unexpected capture: %#v", c)
		}
		nodes[i] = n
	}
	return nodes, nil
}

// ParseError reports input the grammar rejected.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("<stdin>: parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses a line of input into a tree rooted at a TagRoot node.
func Parse(input string) (*Node, error) {
	caps, err := peg.Parse(program, input)
	if err != nil {
		return nil, &ParseError{Input: input, Err: err}
	}
	if len(caps) != 1 {
		return nil, &ParseError{Input: input, Err: fmt.Errorf("expected one root, got %d captures", len(caps))}
	}
	root, ok := caps[0].(*Node)
	if !ok {
		return nil, &ParseError{Input: input, Err: fmt.Errorf("unexpected capture: %#v", caps[0])}
	}
	if off, ok := unconsumed(root, input); ok {
		return nil, &ParseError{Input: input, Err: fmt.Errorf("unexpected input at offset %d", off)}
	}
	return root, nil
}

// unconsumed compares the matched leaves against the non-space runes of the
// input and returns the byte offset of the first rune the grammar did not
// cover.
func unconsumed(root *Node, input string) (int, bool) {
	var b strings.Builder
	root.leaves(&b)
	matched := b.String()
	j := 0
	for off, r := range input {
		if strings.ContainsRune(spaceChars, r) {
			continue
		}
		if j >= len(matched) || !strings.HasPrefix(matched[j:], string(r)) {
			return off, true
		}
		j += len(string(r))
	}
	return 0, false
}
