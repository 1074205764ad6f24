package parse

import (
	"github.com/croppelt/nested-object-cleaner/format"
)

type parseOpts struct {
	format format.Format
}

type ParseOption func(*parseOpts)

func ParseYAML() ParseOption {
	return ParseFormat(format.YAMLFormat)
}
func ParseJSON() ParseOption {
	return ParseFormat(format.JSONFormat)
}

// ParseFormat declares the expected input format. Both formats share the
// YAML reader; the declaration exists for CLI symmetry with encoding.
func ParseFormat(f format.Format) ParseOption {
	return func(o *parseOpts) { o.format = f }
}
