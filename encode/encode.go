// Package encode renders ir.Node trees as JSON or YAML, preserving object
// field order exactly as it appears in the tree.
package encode

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/croppelt/nested-object-cleaner/format"
	"github.com/croppelt/nested-object-cleaner/ir"
)

type EncState struct {
	indent int
	wire   bool

	format format.Format

	Color func(ir.Type, ColorAttr, string) string
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
		format: format.JSONFormat,
	}
	for _, opt := range opts {
		opt(es)
	}
	if es.Color == nil {
		es.Color = noColor
	}
	if node == nil {
		node = ir.Null()
	}
	var err error
	if es.format.IsYAML() {
		err = encodeYAML(node, w, es, 0, false)
	} else {
		err = encodeJSON(node, w, es, 0)
		if err == nil {
			err = writeString(w, "\n")
		}
	}
	return err
}

func noColor(_ ir.Type, _ ColorAttr, s string) string { return s }

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func (es *EncState) pad(w io.Writer, depth int) error {
	return writeString(w, strings.Repeat(" ", es.indent*depth))
}

func scalarJSON(y *ir.Node) string {
	switch y.Type {
	case ir.StringType:
		d, err := json.Marshal(y.String)
		if err != nil {
			return strconv.Quote(y.String)
		}
		return string(d)
	case ir.BoolType:
		return strconv.FormatBool(y.Bool)
	case ir.NullType:
		return "null"
	case ir.NumberType:
		if y.Int64 != nil {
			return strconv.FormatInt(*y.Int64, 10)
		}
		if y.Float64 != nil {
			return strconv.FormatFloat(*y.Float64, 'g', -1, 64)
		}
		return y.Number
	}
	return ""
}

func encodeJSON(y *ir.Node, w io.Writer, es *EncState, depth int) error {
	switch y.Type {
	case ir.ObjectType:
		if len(y.Fields) == 0 {
			return writeString(w, "{}")
		}
		if err := writeString(w, "{"); err != nil {
			return err
		}
		for i := range y.Fields {
			if err := es.jsonEntrySep(w, i, depth+1); err != nil {
				return err
			}
			key := scalarJSON(y.Fields[i])
			if err := writeString(w, es.Color(ir.ObjectType, FieldColor, key)); err != nil {
				return err
			}
			sep := ": "
			if es.wire {
				sep = ":"
			}
			if err := writeString(w, es.Color(ir.ObjectType, SepColor, sep)); err != nil {
				return err
			}
			if err := encodeJSON(y.Values[i], w, es, depth+1); err != nil {
				return err
			}
		}
		if err := es.jsonClose(w, depth); err != nil {
			return err
		}
		return writeString(w, "}")
	case ir.ArrayType:
		if len(y.Values) == 0 {
			return writeString(w, "[]")
		}
		if err := writeString(w, "["); err != nil {
			return err
		}
		for i, yv := range y.Values {
			if err := es.jsonEntrySep(w, i, depth+1); err != nil {
				return err
			}
			if err := encodeJSON(yv, w, es, depth+1); err != nil {
				return err
			}
		}
		if err := es.jsonClose(w, depth); err != nil {
			return err
		}
		return writeString(w, "]")
	default:
		return writeString(w, es.Color(y.Type, ValueColor, scalarJSON(y)))
	}
}

func (es *EncState) jsonEntrySep(w io.Writer, i, depth int) error {
	if i > 0 {
		if err := writeString(w, ","); err != nil {
			return err
		}
	}
	if es.wire {
		return nil
	}
	if err := writeString(w, "\n"); err != nil {
		return err
	}
	return es.pad(w, depth)
}

func (es *EncState) jsonClose(w io.Writer, depth int) error {
	if es.wire {
		return nil
	}
	if err := writeString(w, "\n"); err != nil {
		return err
	}
	return es.pad(w, depth)
}

func scalarYAML(y *ir.Node) string {
	if y.Type != ir.StringType {
		return scalarJSON(y)
	}
	if yamlPlainOK(y.String) {
		return y.String
	}
	return scalarJSON(y)
}

func yamlPlainOK(s string) bool {
	if s == "" {
		return false
	}
	// YAML 1.1 readers coerce these when plain
	switch strings.ToLower(s) {
	case "null", "true", "false", "yes", "no", "on", "off", "~":
		return false
	}
	if strings.TrimSpace(s) != s {
		return false
	}
	if strings.ContainsAny(s, ":#{}[]&*!|>'\"%@`,\n") {
		return false
	}
	switch s[0] {
	case '-', '?', ' ':
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	return true
}

// encodeYAML writes block-style YAML. hang indicates the current line is
// already positioned (after "- "), so the first entry skips its padding.
func encodeYAML(y *ir.Node, w io.Writer, es *EncState, depth int, hang bool) error {
	switch y.Type {
	case ir.ObjectType:
		if len(y.Fields) == 0 {
			if err := padUnlessHang(w, es, depth, hang); err != nil {
				return err
			}
			return writeString(w, "{}\n")
		}
		for i := range y.Fields {
			if err := padUnlessHang(w, es, depth, hang && i == 0); err != nil {
				return err
			}
			key := scalarYAML(y.Fields[i])
			if err := writeString(w, es.Color(ir.ObjectType, FieldColor, key)); err != nil {
				return err
			}
			if err := writeString(w, es.Color(ir.ObjectType, SepColor, ":")); err != nil {
				return err
			}
			yv := y.Values[i]
			if yv.Type.IsScalar() {
				val := es.Color(yv.Type, ValueColor, scalarYAML(yv))
				if err := writeString(w, " "+val+"\n"); err != nil {
					return err
				}
				continue
			}
			if emptyContainer(yv) {
				if err := writeString(w, " "+emptyLit(yv)+"\n"); err != nil {
					return err
				}
				continue
			}
			if err := writeString(w, "\n"); err != nil {
				return err
			}
			if err := encodeYAML(yv, w, es, depth+1, false); err != nil {
				return err
			}
		}
		return nil
	case ir.ArrayType:
		if len(y.Values) == 0 {
			if err := padUnlessHang(w, es, depth, hang); err != nil {
				return err
			}
			return writeString(w, "[]\n")
		}
		for i, yv := range y.Values {
			if err := padUnlessHang(w, es, depth, hang && i == 0); err != nil {
				return err
			}
			if yv.Type.IsScalar() {
				val := es.Color(yv.Type, ValueColor, scalarYAML(yv))
				if err := writeString(w, "- "+val+"\n"); err != nil {
					return err
				}
				continue
			}
			if emptyContainer(yv) {
				if err := writeString(w, "- "+emptyLit(yv)+"\n"); err != nil {
					return err
				}
				continue
			}
			if err := writeString(w, "- "); err != nil {
				return err
			}
			if err := encodeYAML(yv, w, es, depth+1, true); err != nil {
				return err
			}
		}
		return nil
	default:
		if err := padUnlessHang(w, es, depth, hang); err != nil {
			return err
		}
		return writeString(w, es.Color(y.Type, ValueColor, scalarYAML(y))+"\n")
	}
}

func padUnlessHang(w io.Writer, es *EncState, depth int, hang bool) error {
	if hang {
		return nil
	}
	return es.pad(w, depth)
}

func emptyContainer(y *ir.Node) bool {
	switch y.Type {
	case ir.ObjectType:
		return len(y.Fields) == 0
	case ir.ArrayType:
		return len(y.Values) == 0
	}
	return false
}

func emptyLit(y *ir.Node) string {
	if y.Type == ir.ObjectType {
		return "{}"
	}
	return "[]"
}

// MustString renders a node to a string, for diagnostics and tests.
func MustString(node *ir.Node, opts ...EncodeOption) string {
	var sb strings.Builder
	if err := Encode(node, &sb, opts...); err != nil {
		return fmt.Sprintf("<encode error: %v>", err)
	}
	return sb.String()
}
