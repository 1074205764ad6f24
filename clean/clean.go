package clean

import (
	"github.com/croppelt/nested-object-cleaner/debug"
	"github.com/croppelt/nested-object-cleaner/ir"
)

// Clean returns a copy of the tree with unreachable pool elements
// removed, together with the diagnostics recorded along the way. The
// input tree is never mutated. Fatal conditions (see package doc) return
// a nil tree and an error before any pruning decision is made.
func Clean(root *ir.Node, cfg *Config) (*ir.Node, []Diagnostic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if root == nil {
		return nil, nil, nil
	}
	st := &state{
		cfg:     cfg,
		byIdent: map[string]map[string]*entry{},
		byNode:  map[*ir.Node]*entry{},
		arrays:  map[*ir.Node]*PoolConfig{},
		skipped: map[*ir.Node]bool{},
		elemRefs: map[*entry][]target{},
	}
	for i := range cfg.Pools {
		st.byIdent[cfg.Pools[i].Name] = map[string]*entry{}
	}
	if err := st.walk(root); err != nil {
		return nil, nil, err
	}
	st.reach()
	return st.rebuild(root), st.diags, nil
}

// entry is one indexed pool element.
type entry struct {
	pool   *PoolConfig
	node   *ir.Node
	key    string // typed identifier key, see identKey
	disp   string // identifier as written, for diagnostics
	pinned bool   // matched an anchor pattern or a keep expression
	marked bool   // reachable from an anchor
}

// target is one outgoing reference edge: an identifier to resolve in the
// reference field's target pools.
type target struct {
	key   string
	disp  string
	pools []string
	field string
	path  string // location of the referencing value
}

type state struct {
	cfg *Config

	byIdent map[string]map[string]*entry // pool name -> identifier key
	byNode  map[*ir.Node]*entry          // element node -> entry
	arrays  map[*ir.Node]*PoolConfig     // matched pool sequence nodes
	skipped map[*ir.Node]bool            // elements kept out of the analysis
	order   []*entry                     // entries in walk order

	anchorSeeds []target            // edges owned by anchors (incl. the root)
	elemRefs    map[*entry][]target // edges owned by pool elements

	diags []Diagnostic
}

// walk runs the single pass over the tree: pool indexing, anchor
// matching, and reference extraction share one traversal. Pre-order
// guarantees a pool sequence is indexed before the references inside its
// elements are seen, so edge owners resolve immediately.
func (st *state) walk(root *ir.Node) error {
	return root.Visit(func(y *ir.Node, isPost bool) (bool, error) {
		if isPost {
			return false, nil
		}
		for i := range st.cfg.Pools {
			p := &st.cfg.Pools[i]
			if !p.pattern.MatchNode(y) {
				continue
			}
			if err := st.indexPool(p, y); err != nil {
				return false, err
			}
		}
		for _, pat := range st.cfg.anchorPatterns {
			if pat.MatchNode(y) {
				st.pinEnclosing(y)
			}
		}
		if y.Type == ir.ObjectType {
			if err := st.scanRefs(y); err != nil {
				return false, err
			}
		}
		return true, nil
	})
}

// pinEnclosing marks the pool element containing an anchor location (or
// being one) as always in use. Anchors outside every pool need no pin:
// only pool elements are ever pruned.
func (st *state) pinEnclosing(y *ir.Node) {
	for n := y; n != nil; n = n.Parent {
		if e := st.byNode[n]; e != nil {
			if debug.Reach() {
				debug.Logf("pin %s/%s: anchor at %s\n", e.pool.Name, e.disp, y.Path())
			}
			e.pinned = true
			return
		}
	}
}
