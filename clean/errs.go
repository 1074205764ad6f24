package clean

import "fmt"

// ConfigError reports a malformed configuration or a pool pattern that
// matched a location of the wrong shape. It aborts the run before any
// pruning decision.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// MissingIdentifierError reports a pool element without its identifier
// field (or with an empty or non-scalar one).
type MissingIdentifierError struct {
	Pool  string
	Field string
	Path  string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("pool %q: element at %s has no usable identifier field %q", e.Pool, e.Path, e.Field)
}

// DuplicateIdentifierError reports two elements of the same pool sharing
// an identifier value, making reference resolution ambiguous.
type DuplicateIdentifierError struct {
	Pool       string
	Identifier string
	Path       string
	FirstPath  string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("pool %q: duplicate identifier %q at %s (first at %s)", e.Pool, e.Identifier, e.Path, e.FirstPath)
}

// ReferenceError reports a reference field value that cannot be read as
// one or more identifiers under its configured mode.
type ReferenceError struct {
	Field   string
	Path    string
	Message string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference field %q at %s: %s", e.Field, e.Path, e.Message)
}
