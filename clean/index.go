package clean

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/croppelt/nested-object-cleaner/debug"
	"github.com/croppelt/nested-object-cleaner/ir"
)

// identKey returns the typed lookup key for an identifier node. Strings
// and numbers are valid identifiers; they compare by equality within
// their own kind, so the string "1" and the number 1 stay distinct.
func identKey(y *ir.Node) (key, disp string, ok bool) {
	switch y.Type {
	case ir.StringType:
		if y.String == "" {
			return "", "", false
		}
		return "s:" + y.String, y.String, true
	case ir.NumberType:
		lit, _ := y.Literal()
		return "n:" + lit, lit, true
	default:
		return "", "", false
	}
}

// indexPool registers the elements of a matched pool sequence.
func (st *state) indexPool(p *PoolConfig, y *ir.Node) error {
	if y.Type != ir.ArrayType {
		return &ConfigError{Message: fmt.Sprintf("pool %q: pattern matched %s at %s, expected a sequence", p.Name, y.Type, y.Path())}
	}
	if prev := st.arrays[y]; prev != nil {
		return &ConfigError{Message: fmt.Sprintf("pools %q and %q both match %s", prev.Name, p.Name, y.Path())}
	}
	st.arrays[y] = p
	for _, elem := range y.Values {
		var identNode *ir.Node
		if elem.Type == ir.ObjectType {
			identNode = ir.Get(elem, p.IdentifierField)
		}
		if identNode == nil {
			if err := st.missingIdent(p, elem); err != nil {
				return err
			}
			continue
		}
		key, disp, ok := identKey(identNode)
		if !ok {
			if err := st.missingIdent(p, elem); err != nil {
				return err
			}
			continue
		}
		if prev := st.byIdent[p.Name][key]; prev != nil {
			return &DuplicateIdentifierError{
				Pool:       p.Name,
				Identifier: disp,
				Path:       elem.Path(),
				FirstPath:  prev.node.Path(),
			}
		}
		e := &entry{pool: p, node: elem, key: key, disp: disp}
		if p.keepPrg != nil {
			pinned, err := evalKeep(p, e)
			if err != nil {
				return err
			}
			e.pinned = pinned
		}
		st.byIdent[p.Name][key] = e
		st.byNode[elem] = e
		st.order = append(st.order, e)
		if debug.Index() {
			debug.Logf("index %s/%s at %s (pinned=%v)\n", p.Name, disp, elem.Path(), e.pinned)
		}
	}
	return nil
}

func (st *state) missingIdent(p *PoolConfig, elem *ir.Node) error {
	if st.cfg.OnMissingIdentifier == ErrorOnMissingIdentifier {
		return &MissingIdentifierError{
			Pool:  p.Name,
			Field: p.IdentifierField,
			Path:  elem.Path(),
		}
	}
	st.skipped[elem] = true
	st.diags = append(st.diags, Diagnostic{
		Code:    MissingIdentifier,
		Path:    elem.Path(),
		Pool:    p.Name,
		Message: fmt.Sprintf("element has no usable identifier field %q; kept as-is", p.IdentifierField),
	})
	return nil
}

func evalKeep(p *PoolConfig, e *entry) (bool, error) {
	env := map[string]any{
		"pool":  p.Name,
		"ident": e.disp,
		"elem":  ir.ToAny(e.node),
	}
	res, err := expr.Run(p.keepPrg, env)
	if err != nil {
		return false, fmt.Errorf("pool %q: keep expression at %s: %w", p.Name, e.node.Path(), err)
	}
	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("pool %q: keep expression at %s returned %T, want bool", p.Name, e.node.Path(), res)
	}
	return b, nil
}
