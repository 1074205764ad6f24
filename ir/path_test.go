package ir

import (
	"testing"
)

func TestParsePatternRoundTrip(t *testing.T) {
	tests := []string{
		"$",
		"$.configs",
		"$.configs[*]",
		"$.configs[2].source",
		"$.'we.ird'[*]",
		"$[0][*].a",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			p, err := ParsePattern(in)
			if err != nil {
				t.Fatal(err)
			}
			if got := p.String(); got != in {
				t.Errorf("round trip: got %q, want %q", got, in)
			}
		})
	}
}

func TestParsePatternErrors(t *testing.T) {
	tests := []string{
		"",
		"configs",
		"$.",
		"$.configs[",
		"$.configs[x]",
		"$.'unterminated",
		"$configs",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParsePattern(in); err == nil {
				t.Errorf("ParsePattern(%q): expected error", in)
			}
		})
	}
}

func testDoc() *Node {
	return FromKeyVals([]KeyVal{
		{Key: "configs", Val: FromSlice([]*Node{
			FromKeyVals([]KeyVal{{Key: "name", Val: FromString("a")}}),
			FromKeyVals([]KeyVal{{Key: "name", Val: FromString("b")}}),
		})},
		{Key: "main", Val: FromKeyVals([]KeyVal{
			{Key: "ref", Val: FromString("a")},
		})},
	})
}

func TestMatchNode(t *testing.T) {
	doc := testDoc()
	configs := Get(doc, "configs")
	tests := []struct {
		pattern string
		node    *Node
		res     bool
	}{
		{"$.configs", configs, true},
		{"$.configs[*]", configs.Values[0], true},
		{"$.configs[*]", configs.Values[1], true},
		{"$.configs[1]", configs.Values[1], true},
		{"$.configs[0]", configs.Values[1], false},
		{"$.configs[*]", configs, false},
		{"$.main", configs, false},
		{"$.configs[*].name", Get(configs.Values[0], "name"), true},
		{"$.configs", doc, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if got := p.MatchNode(tt.node); got != tt.res {
				t.Errorf("%s.MatchNode(%s) = %v, want %v", tt.pattern, tt.node.Path(), got, tt.res)
			}
		})
	}
}

func TestPath(t *testing.T) {
	doc := testDoc()
	configs := Get(doc, "configs")
	if got := doc.Path(); got != "$" {
		t.Errorf("root path = %q", got)
	}
	if got := configs.Values[1].Path(); got != "$.configs[1]" {
		t.Errorf("element path = %q", got)
	}
	if got := Get(configs.Values[0], "name").Path(); got != "$.configs[0].name" {
		t.Errorf("leaf path = %q", got)
	}
}

func TestGetPath(t *testing.T) {
	doc := testDoc()
	got, err := doc.GetPath("$.configs[1].name")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.String != "b" {
		t.Errorf("GetPath = %v, want string \"b\"", got)
	}
	got, err = doc.GetPath("$.main.missing")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("absent location should resolve to nil, got %v", got)
	}
	if _, err := doc.GetPath("$.configs[*]"); err == nil {
		t.Errorf("wildcard should be rejected in GetPath")
	}
}
