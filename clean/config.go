package clean

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/croppelt/nested-object-cleaner/ir"
)

// Mode selects how a reference field's value names identifiers.
type Mode int

const (
	// DirectMode: the field value is an identifier or a sequence of
	// identifiers.
	DirectMode Mode = iota
	// NestedMode: the field value is a map, or a sequence of maps, each
	// carrying the identifier under a further sub-field.
	NestedMode
)

func ParseMode(v string) (Mode, error) {
	m, ok := map[string]Mode{
		"direct": DirectMode,
		"nested": NestedMode,
	}[v]
	if ok {
		return m, nil
	}
	return 0, fmt.Errorf("unrecognized mode %q", v)
}

func (m Mode) String() string {
	switch m {
	case DirectMode:
		return "direct"
	case NestedMode:
		return "nested"
	default:
		return "<unknown mode>"
	}
}

func (m Mode) MarshalYAML() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalYAML(d []byte) error {
	var s string
	if err := yaml.Unmarshal(d, &s); err != nil {
		return err
	}
	pm, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = pm
	return nil
}

// MissingIdentifierPolicy decides what happens when a pool element lacks
// its identifier field (or carries an empty one).
type MissingIdentifierPolicy int

const (
	// ErrorOnMissingIdentifier aborts the run.
	ErrorOnMissingIdentifier MissingIdentifierPolicy = iota
	// WarnOnMissingIdentifier records a diagnostic and keeps the element
	// out of the analysis: it is never pruned and contributes no edges as
	// a pool element (references inside it still resolve to the implicit
	// anchor, keeping their targets alive).
	WarnOnMissingIdentifier
)

func ParseMissingIdentifierPolicy(v string) (MissingIdentifierPolicy, error) {
	p, ok := map[string]MissingIdentifierPolicy{
		"error": ErrorOnMissingIdentifier,
		"warn":  WarnOnMissingIdentifier,
	}[v]
	if ok {
		return p, nil
	}
	return 0, fmt.Errorf("unrecognized missing identifier policy %q", v)
}

func (p MissingIdentifierPolicy) String() string {
	switch p {
	case ErrorOnMissingIdentifier:
		return "error"
	case WarnOnMissingIdentifier:
		return "warn"
	default:
		return "<unknown policy>"
	}
}

func (p MissingIdentifierPolicy) MarshalYAML() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *MissingIdentifierPolicy) UnmarshalYAML(d []byte) error {
	var s string
	if err := yaml.Unmarshal(d, &s); err != nil {
		return err
	}
	pp, err := ParseMissingIdentifierPolicy(s)
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

// PoolConfig declares one pool: a sequence at a fixed location whose
// elements are maps carrying the identifier field.
type PoolConfig struct {
	Name            string `yaml:"name"`
	PathPattern     string `yaml:"pathPattern"`
	IdentifierField string `yaml:"identifierField"`

	// Keep is an optional expr boolean expression evaluated per element
	// with env {pool, ident, elem}. Matching elements are pinned: never
	// pruned, and their references seed reachability like anchors.
	Keep string `yaml:"keep,omitempty"`

	pattern ir.Pattern
	keepPrg *vm.Program
}

// ReferenceField declares one reference field and the pools its values
// resolve into.
type ReferenceField struct {
	FieldName             string   `yaml:"fieldName"`
	Mode                  Mode     `yaml:"mode,omitempty"`
	NestedIdentifierField string   `yaml:"nestedIdentifierField,omitempty"`
	TargetPools           []string `yaml:"targetPools"`
}

// Config is the input of Clean. Validate compiles patterns and keep
// expressions in place, so a Config shared across concurrent Clean
// invocations must be validated first; ParseConfig returns validated
// configs.
type Config struct {
	Pools               []PoolConfig            `yaml:"pools"`
	ReferenceFields     []ReferenceField        `yaml:"referenceFields"`
	Anchors             []string                `yaml:"anchors,omitempty"`
	OnMissingIdentifier MissingIdentifierPolicy `yaml:"onMissingIdentifier,omitempty"`

	anchorPatterns []ir.Pattern
	refFields      map[string]*ReferenceField
	validated      bool
}

// anchorsPoolByPosition reports whether the anchor pattern reaches into
// the pool's sequence through a literal element index. Positions shift
// as elements are pruned, so such an anchor would pin a different
// element on a second pass.
func anchorsPoolByPosition(pool, anchor ir.Pattern) bool {
	if len(anchor) <= len(pool) {
		return false
	}
	for i := range pool {
		if !stepsOverlap(pool[i], anchor[i]) {
			return false
		}
	}
	return anchor[len(pool)].Index != nil
}

// stepsOverlap reports whether two pattern steps can match the same
// node.
func stepsOverlap(a, b ir.Step) bool {
	if a.Field != nil || b.Field != nil {
		return a.Field != nil && b.Field != nil && *a.Field == *b.Field
	}
	if a.Index != nil && b.Index != nil {
		return *a.Index == *b.Index
	}
	return true
}

// ParseConfig decodes and validates a YAML or JSON configuration
// document.
func ParseConfig(d []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(d, cfg); err != nil {
		return nil, &ConfigError{Message: "cannot decode configuration", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and compiles patterns and keep
// expressions. It is called by Clean when needed and is idempotent.
func (c *Config) Validate() error {
	if c.validated {
		return nil
	}
	poolNames := map[string]bool{}
	for i := range c.Pools {
		p := &c.Pools[i]
		if p.Name == "" {
			return &ConfigError{Message: fmt.Sprintf("pool %d: empty name", i)}
		}
		if poolNames[p.Name] {
			return &ConfigError{Message: fmt.Sprintf("pool %q declared twice", p.Name)}
		}
		poolNames[p.Name] = true
		if p.IdentifierField == "" {
			return &ConfigError{Message: fmt.Sprintf("pool %q: empty identifierField", p.Name)}
		}
		pat, err := ir.ParsePattern(p.PathPattern)
		if err != nil {
			return &ConfigError{Message: fmt.Sprintf("pool %q", p.Name), Err: err}
		}
		p.pattern = pat
		if p.Keep != "" {
			prg, err := expr.Compile(p.Keep, expr.AsBool())
			if err != nil {
				return &ConfigError{Message: fmt.Sprintf("pool %q: keep expression", p.Name), Err: err}
			}
			p.keepPrg = prg
		}
	}
	c.refFields = make(map[string]*ReferenceField, len(c.ReferenceFields))
	for i := range c.ReferenceFields {
		rf := &c.ReferenceFields[i]
		if rf.FieldName == "" {
			return &ConfigError{Message: fmt.Sprintf("reference field %d: empty fieldName", i)}
		}
		if c.refFields[rf.FieldName] != nil {
			return &ConfigError{Message: fmt.Sprintf("reference field %q declared twice", rf.FieldName)}
		}
		if rf.Mode == NestedMode && rf.NestedIdentifierField == "" {
			return &ConfigError{Message: fmt.Sprintf("reference field %q: nested mode requires nestedIdentifierField", rf.FieldName)}
		}
		if rf.Mode == DirectMode && rf.NestedIdentifierField != "" {
			return &ConfigError{Message: fmt.Sprintf("reference field %q: nestedIdentifierField requires nested mode", rf.FieldName)}
		}
		if len(rf.TargetPools) == 0 {
			return &ConfigError{Message: fmt.Sprintf("reference field %q: empty targetPools", rf.FieldName)}
		}
		for _, tp := range rf.TargetPools {
			if !poolNames[tp] {
				return &ConfigError{Message: fmt.Sprintf("reference field %q: undeclared target pool %q", rf.FieldName, tp)}
			}
		}
		c.refFields[rf.FieldName] = rf
	}
	c.anchorPatterns = make([]ir.Pattern, len(c.Anchors))
	for i, a := range c.Anchors {
		pat, err := ir.ParsePattern(a)
		if err != nil {
			return &ConfigError{Message: fmt.Sprintf("anchor %d", i), Err: err}
		}
		for j := range c.Pools {
			p := &c.Pools[j]
			if anchorsPoolByPosition(p.pattern, pat) {
				return &ConfigError{Message: fmt.Sprintf("anchor %q addresses elements of pool %q by position; use a field pattern under [*] instead", a, p.Name)}
			}
		}
		c.anchorPatterns[i] = pat
	}
	c.validated = true
	return nil
}
