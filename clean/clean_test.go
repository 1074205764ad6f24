package clean

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/croppelt/nested-object-cleaner/ir"
	"github.com/croppelt/nested-object-cleaner/parse"
)

func asErr[T error](err error, target *T) bool {
	return errors.As(err, target)
}

func mustParse(t *testing.T, in string) *ir.Node {
	t.Helper()
	node, err := parse.Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	return node
}

func mustConfig(t *testing.T, in string) *Config {
	t.Helper()
	cfg, err := ParseConfig([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func mustClean(t *testing.T, doc string, cfg *Config) (*ir.Node, []Diagnostic) {
	t.Helper()
	res, diags, err := Clean(mustParse(t, doc), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return res, diags
}

const canonicalConfig = `
pools:
- name: importantListOfDicts
  pathPattern: $.importantListOfDicts
  identifierField: name
referenceFields:
- fieldName: linkedImportantDict
  mode: nested
  nestedIdentifierField: name
  targetPools: [importantListOfDicts]
- fieldName: useConfigsname
  mode: nested
  nestedIdentifierField: sourceName
  targetPools: [importantListOfDicts]
anchors:
- $.importantOtherDict
`

const canonicalDoc = `
importantListOfDicts:
- name: dict01
  criticalConfiguration:
    some: setting
- name: dict02
  criticalConfiguration:
    linkedImportantDict:
      name: dict03
- name: dict03
  criticalConfiguration:
    other: setting
importantOtherDict:
  useConfigsname:
  - sourceName: dict02
  - sourceName: dict03
`

func TestCleanCanonical(t *testing.T) {
	cfg := mustConfig(t, canonicalConfig)
	res, diags := mustClean(t, canonicalDoc, cfg)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	want := mustParse(t, `
importantListOfDicts:
- name: dict02
  criticalConfiguration:
    linkedImportantDict:
      name: dict03
- name: dict03
  criticalConfiguration:
    other: setting
importantOtherDict:
  useConfigsname:
  - sourceName: dict02
  - sourceName: dict03
`)
	if !ir.Equal(want, res) {
		t.Errorf("clean result mismatch:\n%s", cmp.Diff(ir.ToAny(want), ir.ToAny(res)))
	}
}

func TestCleanPure(t *testing.T) {
	cfg := mustConfig(t, canonicalConfig)
	doc := mustParse(t, canonicalDoc)
	before := doc.Clone()
	if _, _, err := Clean(doc, cfg); err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(before, doc) {
		t.Errorf("input document was mutated")
	}
}

func TestCleanIdempotent(t *testing.T) {
	cfg := mustConfig(t, canonicalConfig)
	once, _ := mustClean(t, canonicalDoc, cfg)
	twice, diags, err := Clean(once, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Errorf("second pass produced diagnostics: %v", diags)
	}
	if !ir.Equal(once, twice) {
		t.Errorf("cleaning a cleaned document changed it:\n%s", cmp.Diff(ir.ToAny(once), ir.ToAny(twice)))
	}
}

const chainConfig = `
pools:
- name: configs
  pathPattern: $.configs
  identifierField: name
referenceFields:
- fieldName: ref
  targetPools: [configs]
`

func TestCleanTransitiveOrphans(t *testing.T) {
	// b references c, but nothing reaches b: both go.
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, `
configs:
- name: a
- name: b
  ref: c
- name: c
main:
  ref: a
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	configs := ir.Get(res, "configs")
	if len(configs.Values) != 1 {
		t.Fatalf("kept %d elements, want 1", len(configs.Values))
	}
	if got := ir.Get(configs.Values[0], "name").String; got != "a" {
		t.Errorf("kept %q, want \"a\"", got)
	}
}

func TestCleanCycles(t *testing.T) {
	doc := `
configs:
- name: a
  ref: b
- name: b
  ref: a
- name: c
  ref: d
- name: d
  ref: c
main:
  ref: a
`
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, doc, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	var names []string
	for _, e := range ir.Get(res, "configs").Values {
		names = append(names, ir.Get(e, "name").String)
	}
	// a<->b is anchored; the c<->d cycle only references itself
	if d := cmp.Diff([]string{"a", "b"}, names); d != "" {
		t.Errorf("kept elements (-want +got):\n%s", d)
	}
}

func TestCleanDanglingReference(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, `
configs:
- name: a
  ref: ghost
main:
  ref: a
`, cfg)
	if len(diags) != 1 || diags[0].Code != DanglingReference {
		t.Fatalf("diagnostics = %v, want one dangling reference", diags)
	}
	if diags[0].Identifier != "ghost" {
		t.Errorf("diagnostic identifier = %q", diags[0].Identifier)
	}
	if len(ir.Get(res, "configs").Values) != 1 {
		t.Errorf("dangling reference should not remove the referencing element")
	}
}

func TestCleanUnfollowedDanglingIsSilent(t *testing.T) {
	// the bad reference sits in an element that is itself pruned
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, `
configs:
- name: a
- name: b
  ref: ghost
main:
  ref: a
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(ir.Get(res, "configs").Values) != 1 {
		t.Errorf("kept %d elements, want 1", len(ir.Get(res, "configs").Values))
	}
}

func TestCleanNonPoolInvariance(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	res, _ := mustClean(t, `
configs:
- name: a
main:
  ref: a
  settings:
    zebra: 1
    apple: [1, {x: null}]
`, cfg)
	want := mustParse(t, `
ref: a
settings:
  zebra: 1
  apple: [1, {x: null}]
`)
	if !ir.Equal(want, ir.Get(res, "main")) {
		t.Errorf("non-pool content changed:\n%s", cmp.Diff(ir.ToAny(want), ir.ToAny(ir.Get(res, "main"))))
	}
}

func TestCleanOrderPreserved(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	res, _ := mustClean(t, `
configs:
- name: e
- name: d
- name: c
- name: b
- name: a
main:
  ref: [a, c, e]
`, cfg)
	var names []string
	for _, e := range ir.Get(res, "configs").Values {
		names = append(names, ir.Get(e, "name").String)
	}
	if d := cmp.Diff([]string{"e", "c", "a"}, names); d != "" {
		t.Errorf("element order (-want +got):\n%s", d)
	}
}

func TestCleanDirectModeScalarAndList(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, `
configs:
- name: a
- name: b
- name: c
- name: 7
main:
  ref: [b, 7]
other:
  ref: c
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	var names []string
	for _, e := range ir.Get(res, "configs").Values {
		lit, _ := ir.Get(e, "name").Literal()
		names = append(names, lit)
	}
	if d := cmp.Diff([]string{"b", "c", "7"}, names); d != "" {
		t.Errorf("kept elements (-want +got):\n%s", d)
	}
}

func TestCleanIdentifierTyping(t *testing.T) {
	// the string "7" does not reference the number 7
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, `
configs:
- name: 7
main:
  ref: "7"
`, cfg)
	if len(diags) != 1 || diags[0].Code != DanglingReference {
		t.Fatalf("diagnostics = %v, want one dangling reference", diags)
	}
	if len(ir.Get(res, "configs").Values) != 0 {
		t.Errorf("number-identified element kept by string reference")
	}
}

func TestCleanMissingIdentifierError(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	_, _, err := Clean(mustParse(t, `
configs:
- name: a
- note: no name here
`), cfg)
	var mErr *MissingIdentifierError
	if !asErr(err, &mErr) {
		t.Fatalf("err = %v, want MissingIdentifierError", err)
	}
	if mErr.Pool != "configs" || mErr.Path != "$.configs[1]" {
		t.Errorf("error fields: %+v", mErr)
	}
}

func TestCleanMissingIdentifierWarn(t *testing.T) {
	cfg := mustConfig(t, chainConfig+"onMissingIdentifier: warn\n")
	res, diags := mustClean(t, `
configs:
- name: a
- note: no name, keeps b alive
  ref: b
- name: b
`, cfg)
	if len(diags) != 1 || diags[0].Code != MissingIdentifier {
		t.Fatalf("diagnostics = %v, want one missing identifier", diags)
	}
	var kept []string
	for _, e := range ir.Get(res, "configs").Values {
		if n := ir.Get(e, "name"); n != nil {
			kept = append(kept, n.String)
			continue
		}
		kept = append(kept, "<skipped>")
	}
	// a has no incoming reference and goes; the skipped element stays
	// as-is and its reference pins b
	if d := cmp.Diff([]string{"<skipped>", "b"}, kept); d != "" {
		t.Errorf("kept elements (-want +got):\n%s", d)
	}
}

func TestCleanDuplicateIdentifier(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	_, _, err := Clean(mustParse(t, `
configs:
- name: a
- name: a
`), cfg)
	var dErr *DuplicateIdentifierError
	if !asErr(err, &dErr) {
		t.Fatalf("err = %v, want DuplicateIdentifierError", err)
	}
	if dErr.Identifier != "a" || dErr.Path != "$.configs[1]" || dErr.FirstPath != "$.configs[0]" {
		t.Errorf("error fields: %+v", dErr)
	}
}

func TestCleanKeepExpression(t *testing.T) {
	cfg := mustConfig(t, `
pools:
- name: configs
  pathPattern: $.configs
  identifierField: name
  keep: ident == "pinned" or elem.protected == true
referenceFields:
- fieldName: ref
  targetPools: [configs]
`)
	res, diags := mustClean(t, `
configs:
- name: a
- name: pinned
  ref: chained
- name: chained
- name: guarded
  protected: true
main: {}
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	var names []string
	for _, e := range ir.Get(res, "configs").Values {
		names = append(names, ir.Get(e, "name").String)
	}
	// pinned elements seed reachability like anchors
	if d := cmp.Diff([]string{"pinned", "chained", "guarded"}, names); d != "" {
		t.Errorf("kept elements (-want +got):\n%s", d)
	}
}

func TestCleanAnchorInsidePool(t *testing.T) {
	cfg := mustConfig(t, `
pools:
- name: configs
  pathPattern: $.configs
  identifierField: name
referenceFields:
- fieldName: ref
  targetPools: [configs]
anchors:
- $.configs[*].pinned
`)
	res, diags := mustClean(t, `
configs:
- name: first
  pinned: true
  ref: second
- name: second
- name: third
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	var names []string
	for _, e := range ir.Get(res, "configs").Values {
		names = append(names, ir.Get(e, "name").String)
	}
	if d := cmp.Diff([]string{"first", "second"}, names); d != "" {
		t.Errorf("kept elements (-want +got):\n%s", d)
	}
	// the anchor travels with the element, so a second pass keeps the
	// same set
	again, _, err := Clean(res, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(res, again) {
		t.Errorf("anchored cleaning not idempotent:\n%s", cmp.Diff(ir.ToAny(res), ir.ToAny(again)))
	}
}

func TestCleanOverlappingPools(t *testing.T) {
	// alpha and beta both claim $.configs; resolution would be ambiguous
	cfg := mustConfig(t, `
pools:
- name: alpha
  pathPattern: $.configs
  identifierField: name
- name: beta
  pathPattern: $.configs
  identifierField: name
referenceFields:
- fieldName: ref
  targetPools: [alpha]
`)
	_, _, err := Clean(mustParse(t, `
configs:
- name: a
main:
  ref: a
`), cfg)
	var cErr *ConfigError
	if !asErr(err, &cErr) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
	if !strings.Contains(err.Error(), "both match") {
		t.Errorf("err = %v, want overlapping pool report", err)
	}
}

func TestCleanMultiplePools(t *testing.T) {
	cfg := mustConfig(t, `
pools:
- name: sources
  pathPattern: $.sources
  identifierField: name
- name: sinks
  pathPattern: $.sinks
  identifierField: id
referenceFields:
- fieldName: to
  targetPools: [sinks]
- fieldName: from
  targetPools: [sources, sinks]
`)
	res, diags := mustClean(t, `
sources:
- name: s1
  to: k1
- name: s2
sinks:
- id: k1
  from: s1
- id: k2
main:
  from: s1
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if n := len(ir.Get(res, "sources").Values); n != 1 {
		t.Errorf("kept %d sources, want 1", n)
	}
	if n := len(ir.Get(res, "sinks").Values); n != 1 {
		t.Errorf("kept %d sinks, want 1", n)
	}
}

func TestCleanWildcardPoolPattern(t *testing.T) {
	cfg := mustConfig(t, `
pools:
- name: items
  pathPattern: $.groups[*].items
  identifierField: name
referenceFields:
- fieldName: ref
  targetPools: [items]
`)
	res, diags := mustClean(t, `
groups:
- items:
  - name: a
  - name: b
- items:
  - name: c
main:
  ref: [a, c]
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	groups := ir.Get(res, "groups")
	if n := len(ir.Get(groups.Values[0], "items").Values); n != 1 {
		t.Errorf("first group kept %d, want 1", n)
	}
	if n := len(ir.Get(groups.Values[1], "items").Values); n != 1 {
		t.Errorf("second group kept %d, want 1", n)
	}
}

func TestCleanNullAndEmptyRefs(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	res, diags := mustClean(t, `
configs:
- name: a
main:
  ref: null
other:
  ref: []
`, cfg)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if n := len(ir.Get(res, "configs").Values); n != 0 {
		t.Errorf("kept %d elements, want 0", n)
	}
}

func TestCleanBadReferenceValue(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	_, _, err := Clean(mustParse(t, `
configs:
- name: a
main:
  ref:
    not: an identifier
`), cfg)
	var rErr *ReferenceError
	if !asErr(err, &rErr) {
		t.Fatalf("err = %v, want ReferenceError", err)
	}
}

func TestCleanPoolPatternWrongShape(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	_, _, err := Clean(mustParse(t, `configs: {name: not-a-list}`), cfg)
	var cErr *ConfigError
	if !asErr(err, &cErr) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}

func TestCleanNilRoot(t *testing.T) {
	cfg := mustConfig(t, chainConfig)
	res, diags, err := Clean(nil, cfg)
	if err != nil || res != nil || diags != nil {
		t.Errorf("Clean(nil) = (%v, %v, %v)", res, diags, err)
	}
}
