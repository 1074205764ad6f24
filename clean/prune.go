package clean

import (
	"github.com/croppelt/nested-object-cleaner/debug"
	"github.com/croppelt/nested-object-cleaner/ir"
)

// rebuild produces the pruned copy of the tree. Pool sequences keep, in
// original order, only elements that are marked reachable, pinned, or
// were kept out of the analysis; everything else is copied unchanged.
func (st *state) rebuild(y *ir.Node) *ir.Node {
	switch y.Type {
	case ir.ArrayType:
		values := make([]*ir.Node, 0, len(y.Values))
		if _, isPool := st.arrays[y]; isPool {
			for _, elem := range y.Values {
				if !st.keepElem(elem) {
					continue
				}
				values = append(values, st.rebuild(elem))
			}
		} else {
			for _, elem := range y.Values {
				values = append(values, st.rebuild(elem))
			}
		}
		return ir.FromSlice(values)
	case ir.ObjectType:
		kvs := make([]ir.KeyVal, len(y.Fields))
		for i := range y.Fields {
			kvs[i] = ir.KeyVal{
				Key: y.Fields[i].String,
				Val: st.rebuild(y.Values[i]),
			}
		}
		return ir.FromKeyVals(kvs)
	default:
		return y.Clone()
	}
}

func (st *state) keepElem(elem *ir.Node) bool {
	if st.skipped[elem] {
		return true
	}
	e := st.byNode[elem]
	if e == nil {
		// Element of a pool sequence that was never indexed: not a pool
		// member, leave it alone.
		return true
	}
	keep := e.marked || e.pinned
	if !keep && debug.Prune() {
		debug.Logf("prune %s/%s at %s\n", e.pool.Name, e.disp, elem.Path())
	}
	return keep
}
