package ir

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Path renders the node's location from the root, e.g. "$.configs[2].name".
func (y *Node) Path() string {
	if y.Parent == nil {
		return "$"
	}
	switch y.Parent.Type {
	case ObjectType:
		return y.Parent.Path() + "." + pathString(y.ParentField)
	case ArrayType:
		return y.Parent.Path() + "[" + strconv.Itoa(y.ParentIndex) + "]"
	default:
		panic("parent but not in container")
	}
}

func pathString(f string) string {
	if f != "" && strings.IndexAny(f, "'.*$[]") == -1 {
		return f
	}
	return "'" + strings.Replace(f, "'", "\\'", -1) + "'"
}

// Step is one segment of a Pattern: a literal object field, a literal
// array index, or the [*] any-index wildcard.
type Step struct {
	Field    *string
	Index    *int
	AnyIndex bool
}

// Pattern addresses a fixed location in a document. Patterns contain no
// subtree recursion: pools and anchors live at declared places.
type Pattern []Step

func (p Pattern) String() string {
	buf := bytes.NewBuffer([]byte{'$'})
	for _, s := range p {
		switch {
		case s.AnyIndex:
			buf.WriteString("[*]")
		case s.Field != nil:
			buf.WriteString("." + pathString(*s.Field))
		case s.Index != nil:
			fmt.Fprintf(buf, "[%d]", *s.Index)
		}
	}
	return buf.String()
}

func ParsePattern(p string) (Pattern, error) {
	if len(p) == 0 || p[0] != '$' {
		return nil, fmt.Errorf("pattern %q should start with '$'", p)
	}
	var res Pattern
	frag := p[1:]
	for len(frag) > 0 {
		switch frag[0] {
		case '.':
			field, rest, err := parseField(frag[1:])
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", p, err)
			}
			res = append(res, Step{Field: &field})
			frag = rest
		case '[':
			i := strings.IndexByte(frag[1:], ']')
			if i == -1 {
				return nil, fmt.Errorf("pattern %q: expected '[' <index> ']'", p)
			}
			index, all, err := parseIndex(frag[1 : i+1])
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", p, err)
			}
			if all {
				res = append(res, Step{AnyIndex: true})
			} else {
				res = append(res, Step{Index: &index})
			}
			frag = frag[i+2:]
		default:
			return nil, fmt.Errorf("pattern %q: expected '.' or '['", p)
		}
	}
	return res, nil
}

func parseIndex(is string) (index int, all bool, err error) {
	if len(is) == 1 && is[0] == '*' {
		return 0, true, nil
	}
	u64, err := strconv.ParseUint(is, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return int(u64), false, nil
}

func parseField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("expected field at end of string")
	}
	if frag[0] != '\'' {
		i := strings.IndexAny(frag, ".[")
		if i == -1 {
			return frag, "", nil
		}
		return frag[:i], frag[i:], nil
	}
	escaped := false
	res := make([]byte, 0, len(frag))
	for i := 1; i < len(frag); i++ {
		c := frag[i]
		switch c {
		case '\\':
			escaped = true
		case '\'':
			if !escaped {
				return string(res), frag[i+1:], nil
			}
			fallthrough
		default:
			escaped = false
			res = append(res, c)
		}
	}
	return "", "", fmt.Errorf("end of string scanning for \"'\"")
}

// MatchNode reports whether the node's location matches the pattern. The
// match is exact: the pattern must account for every segment between the
// root and the node.
func (p Pattern) MatchNode(y *Node) bool {
	chain := make([]*Node, 0, len(p))
	for n := y; n.Parent != nil; n = n.Parent {
		chain = append(chain, n)
	}
	if len(chain) != len(p) {
		return false
	}
	for i, step := range p {
		n := chain[len(chain)-1-i]
		switch n.Parent.Type {
		case ObjectType:
			if step.Field == nil || *step.Field != n.ParentField {
				return false
			}
		case ArrayType:
			if step.AnyIndex {
				continue
			}
			if step.Index == nil || *step.Index != n.ParentIndex {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// GetPath resolves a wildcard-free pattern against the tree rooted at y.
// A nil result with nil error means the location does not exist.
func (y *Node) GetPath(pattern string) (*Node, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	res := y
	for _, step := range p {
		switch {
		case step.AnyIndex:
			return nil, fmt.Errorf("any index in get")
		case step.Index != nil:
			if res.Type != ArrayType {
				return nil, fmt.Errorf("expected array, got %s", res.Type)
			}
			index := *step.Index
			if index < 0 || index >= len(res.Values) {
				return nil, fmt.Errorf("index out of bounds %d (len %d)", index, len(res.Values))
			}
			res = res.Values[index]
		case step.Field != nil:
			if res.Type != ObjectType {
				return nil, fmt.Errorf("expected object, got %s", res.Type)
			}
			res = Get(res, *step.Field)
			if res == nil {
				return nil, nil
			}
		}
	}
	return res, nil
}
