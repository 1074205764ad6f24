// Package debug provides env-toggled trace logging for the cleaner
// pipeline (NOC_DEBUG_INDEX, NOC_DEBUG_REFS, NOC_DEBUG_REACH,
// NOC_DEBUG_PRUNE).
package debug

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/croppelt/nested-object-cleaner/encode"
	"github.com/croppelt/nested-object-cleaner/ir"
)

func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *ir.Node:
			buf := bytes.NewBuffer(nil)
			if err := encode.Encode(x, buf); err != nil {
				args[i] = fmt.Sprintf("[raw node] %v", x)
				continue
			}
			args[i] = buf.String()
		case bool, string, float64, int:

		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
