package lishp

import "testing"

func leaf(tag, contents string) *Node {
	return &Node{Tag: tag, Contents: contents}
}

func TestReadNumber(t *testing.T) {
	cases := []struct {
		lit  string
		want Value
	}{
		{"0", NumberVal(0)},
		{"-12", NumberVal(-12)},
		{"9223372036854775807", NumberVal(9223372036854775807)},
		{"9223372036854775808", ErrorVal("invalid number")},
		{"-9223372036854775809", ErrorVal("invalid number")},
	}
	for _, tc := range cases {
		got := Read(leaf(TagNumber, tc.lit))
		if !ValuesEqual(got, tc.want) {
			t.Fatalf("Read(%s) = %s, want %s", tc.lit, got.String(), tc.want.String())
		}
	}
}

func TestReadSymbol(t *testing.T) {
	got := Read(leaf(TagSymbol, "join"))
	if !ValuesEqual(got, SymbolVal("join")) {
		t.Fatalf("got %s", got.String())
	}
}

func TestReadSkipsPunctuation(t *testing.T) {
	tree := &Node{Tag: TagRoot, Children: []*Node{
		leaf(TagRegex, ""),
		{Tag: TagSExpr, Children: []*Node{
			leaf(TagChar, "("),
			leaf(TagSymbol, "+"),
			leaf(TagNumber, "1"),
			{Tag: TagQExpr, Children: []*Node{
				leaf(TagChar, "{"),
				leaf(TagNumber, "2"),
				leaf(TagChar, "}"),
			}},
			leaf(TagChar, ")"),
		}},
		leaf(TagRegex, ""),
	}}
	got := Read(tree)
	want := NewSExpr(NewSExpr(SymbolVal("+"), NumberVal(1), NewQExpr(NumberVal(2))))
	if !ValuesEqual(got, want) {
		t.Fatalf("got %s, want %s", got.String(), want.String())
	}
}

func TestReadParsedInput(t *testing.T) {
	cases := map[string]string{
		"+ 1 2":                "(+ 1 2)",
		"(+ 1 (* 2 3))":        "((+ 1 (* 2 3)))",
		"{1 {2 3} ()}":         "({1 {2 3} ()})",
		"":                     "()",
		"head {} tail":         "(head {} tail)",
		"99999999999999999999": "(Error: invalid number)",
	}
	for input, want := range cases {
		root, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got := Read(root).String(); got != want {
			t.Fatalf("Read(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestReadUnknownTag(t *testing.T) {
	got := Read(leaf("string", "x"))
	if _, ok := got.(Error); !ok {
		t.Fatalf("expected Error for unknown tag, got %s", got.KindName())
	}
}
