package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Index bool
	Refs  bool
	Reach bool
	Prune bool
}

var d *debug

func init() {
	d = &debug{}
	d.Index = boolEnv("NOC_DEBUG_INDEX")
	d.Refs = boolEnv("NOC_DEBUG_REFS")
	d.Reach = boolEnv("NOC_DEBUG_REACH")
	d.Prune = boolEnv("NOC_DEBUG_PRUNE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Index() bool {
	return d.Index
}
func Refs() bool {
	return d.Refs
}
func Reach() bool {
	return d.Reach
}
func Prune() bool {
	return d.Prune
}
