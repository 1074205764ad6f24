package clean

import "fmt"

type DiagCode int

const (
	// DanglingReference: a reference names an identifier absent from every
	// targeted pool. The edge is dropped; nothing else is affected.
	DanglingReference DiagCode = iota
	// MissingIdentifier: a pool element without a usable identifier was
	// kept out of the analysis (onMissingIdentifier: warn).
	MissingIdentifier
)

func (c DiagCode) String() string {
	switch c {
	case DanglingReference:
		return "dangling-reference"
	case MissingIdentifier:
		return "missing-identifier"
	default:
		return "<unknown diagnostic>"
	}
}

func (c DiagCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Diagnostic is a non-fatal finding, recorded in deterministic order.
type Diagnostic struct {
	Code       DiagCode
	Path       string
	Pool       string
	Identifier string
	Message    string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Path, d.Message)
}
