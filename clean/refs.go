package clean

import (
	"fmt"

	"github.com/croppelt/nested-object-cleaner/debug"
	"github.com/croppelt/nested-object-cleaner/ir"
)

// scanRefs extracts the reference edges held by one object node and
// attributes them to their owning anchor: the nearest enclosing pool
// element if the object sits inside one, otherwise the implicit anchor.
func (st *state) scanRefs(y *ir.Node) error {
	for i := range y.Fields {
		rf := st.cfg.refFields[y.Fields[i].String]
		if rf == nil {
			continue
		}
		targets, err := extractTargets(rf, y.Values[i])
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			continue
		}
		owner := st.owningEntry(y)
		if debug.Refs() {
			who := "anchor"
			if owner != nil {
				who = owner.pool.Name + "/" + owner.disp
			}
			debug.Logf("refs %s: %d edge(s) from %s\n", y.Values[i].Path(), len(targets), who)
		}
		if owner == nil {
			st.anchorSeeds = append(st.anchorSeeds, targets...)
			continue
		}
		st.elemRefs[owner] = append(st.elemRefs[owner], targets...)
	}
	return nil
}

// owningEntry climbs to the nearest enclosing pool element, or nil when
// the node sits outside every pool (anchor territory).
func (st *state) owningEntry(y *ir.Node) *entry {
	for n := y; n != nil; n = n.Parent {
		if e := st.byNode[n]; e != nil {
			return e
		}
	}
	return nil
}

// extractTargets reads the identifiers named by one reference field
// value under the field's mode. An empty sequence yields no edges; a
// value that cannot be read as identifiers is an error.
func extractTargets(rf *ReferenceField, val *ir.Node) ([]target, error) {
	switch rf.Mode {
	case DirectMode:
		return directTargets(rf, val)
	case NestedMode:
		return nestedTargets(rf, val)
	default:
		return nil, &ReferenceError{Field: rf.FieldName, Path: val.Path(), Message: fmt.Sprintf("unrecognized mode %d", rf.Mode)}
	}
}

func directTargets(rf *ReferenceField, val *ir.Node) ([]target, error) {
	switch val.Type {
	case ir.NullType:
		return nil, nil
	case ir.StringType, ir.NumberType:
		t, err := scalarTarget(rf, val)
		if err != nil {
			return nil, err
		}
		return []target{t}, nil
	case ir.ArrayType:
		res := make([]target, 0, len(val.Values))
		for _, yv := range val.Values {
			t, err := scalarTarget(rf, yv)
			if err != nil {
				return nil, err
			}
			res = append(res, t)
		}
		return res, nil
	default:
		return nil, &ReferenceError{
			Field:   rf.FieldName,
			Path:    val.Path(),
			Message: fmt.Sprintf("direct mode expects an identifier or a sequence of identifiers, got %s", val.Type),
		}
	}
}

func nestedTargets(rf *ReferenceField, val *ir.Node) ([]target, error) {
	switch val.Type {
	case ir.NullType:
		return nil, nil
	case ir.ObjectType:
		t, err := nestedTarget(rf, val)
		if err != nil {
			return nil, err
		}
		return []target{t}, nil
	case ir.ArrayType:
		res := make([]target, 0, len(val.Values))
		for _, yv := range val.Values {
			if yv.Type != ir.ObjectType {
				return nil, &ReferenceError{
					Field:   rf.FieldName,
					Path:    yv.Path(),
					Message: fmt.Sprintf("nested mode expects maps, got %s", yv.Type),
				}
			}
			t, err := nestedTarget(rf, yv)
			if err != nil {
				return nil, err
			}
			res = append(res, t)
		}
		return res, nil
	default:
		return nil, &ReferenceError{
			Field:   rf.FieldName,
			Path:    val.Path(),
			Message: fmt.Sprintf("nested mode expects a map or a sequence of maps, got %s", val.Type),
		}
	}
}

func nestedTarget(rf *ReferenceField, obj *ir.Node) (target, error) {
	sub := ir.Get(obj, rf.NestedIdentifierField)
	if sub == nil {
		return target{}, &ReferenceError{
			Field:   rf.FieldName,
			Path:    obj.Path(),
			Message: fmt.Sprintf("missing sub-field %q", rf.NestedIdentifierField),
		}
	}
	return scalarTarget(rf, sub)
}

func scalarTarget(rf *ReferenceField, y *ir.Node) (target, error) {
	key, disp, ok := identKey(y)
	if !ok {
		return target{}, &ReferenceError{
			Field:   rf.FieldName,
			Path:    y.Path(),
			Message: fmt.Sprintf("%s is not an identifier", y.Type),
		}
	}
	return target{
		key:   key,
		disp:  disp,
		pools: rf.TargetPools,
		field: rf.FieldName,
		path:  y.Path(),
	}, nil
}
