package clean

import (
	"fmt"

	"github.com/croppelt/nested-object-cleaner/debug"
)

// reach runs the breadth-first traversal over the reference graph. The
// frontier starts with every identifier referenced from an anchor (plus
// pinned elements); following an edge to an indexed element marks it and
// enqueues its own outgoing edges. The marked flag prevents reference
// cycles from looping; a cycle with no path from an anchor is never
// entered and stays unmarked. Edges to identifiers absent from every
// targeted pool are recorded as dangling diagnostics and dropped.
func (st *state) reach() {
	var frontier []*entry

	mark := func(e *entry, why string) {
		if e.marked {
			return
		}
		e.marked = true
		frontier = append(frontier, e)
		if debug.Reach() {
			debug.Logf("mark %s/%s (%s)\n", e.pool.Name, e.disp, why)
		}
	}

	resolve := func(t target) {
		found := false
		for _, pool := range t.pools {
			if e := st.byIdent[pool][t.key]; e != nil {
				found = true
				mark(e, "via "+t.path)
			}
		}
		if found {
			return
		}
		st.diags = append(st.diags, Diagnostic{
			Code:       DanglingReference,
			Path:       t.path,
			Identifier: t.disp,
			Message:    fmt.Sprintf("field %q references %q, absent from pool(s) %v", t.field, t.disp, t.pools),
		})
	}

	for _, e := range st.order {
		if e.pinned {
			mark(e, "pinned")
		}
	}
	for _, t := range st.anchorSeeds {
		resolve(t)
	}
	for len(frontier) > 0 {
		e := frontier[0]
		frontier = frontier[1:]
		for _, t := range st.elemRefs[e] {
			resolve(t)
		}
	}
}
