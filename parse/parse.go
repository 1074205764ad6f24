// Package parse decodes JSON and YAML documents into ir.Node trees.
//
// Decoding goes through the YAML reader for both formats: JSON is a YAML
// subset, and the YAML reader tolerates '#' comments in input documents
// (configuration files in the wild routinely carry them). Object field
// order is preserved.
package parse

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/croppelt/nested-object-cleaner/ir"
)

var ErrParse = errors.New("parse error")

func Parse(d []byte, opts ...ParseOption) (*ir.Node, error) {
	pOpts := &parseOpts{}
	for _, f := range opts {
		f(pOpts)
	}
	var v any
	if err := yaml.UnmarshalWithOptions(d, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return FromAny(v)
}

// FromAny converts plain Go values (as produced by the YAML decoder, with
// objects as yaml.MapSlice) into an ir.Node tree.
func FromAny(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case nil:
		return ir.Null(), nil
	case bool:
		return ir.FromBool(x), nil
	case string:
		return ir.FromString(x), nil
	case int:
		return ir.FromInt(int64(x)), nil
	case int64:
		return ir.FromInt(x), nil
	case uint64:
		if x > 1<<63-1 {
			return &ir.Node{Type: ir.NumberType, Number: fmt.Sprintf("%d", x)}, nil
		}
		return ir.FromInt(int64(x)), nil
	case float64:
		return ir.FromFloat(x), nil
	case float32:
		return ir.FromFloat(float64(x)), nil
	case []any:
		values := make([]*ir.Node, len(x))
		for i, e := range x {
			ye, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			values[i] = ye
		}
		return ir.FromSlice(values), nil
	case yaml.MapSlice:
		kvs := make([]ir.KeyVal, len(x))
		for i, item := range x {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprintf("%v", item.Key)
			}
			yv, err := FromAny(item.Value)
			if err != nil {
				return nil, err
			}
			kvs[i] = ir.KeyVal{Key: key, Val: yv}
		}
		return ir.FromKeyVals(kvs), nil
	case map[string]any:
		yMap := make(map[string]*ir.Node, len(x))
		for k, e := range x {
			ye, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			yMap[k] = ye
		}
		return ir.FromMap(yMap), nil
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrParse, v)
	}
}
