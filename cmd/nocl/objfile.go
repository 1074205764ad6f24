package main

import (
	"fmt"
	"io"
	"os"

	"github.com/croppelt/nested-object-cleaner/clean"
	"github.com/croppelt/nested-object-cleaner/ir"
	"github.com/croppelt/nested-object-cleaner/parse"

	"github.com/scott-cotton/cli"
)

// readObjFile parses one document argument; "-" reads the command input.
func readObjFile(cfg *MainConfig, cc *cli.Context, arg string) (*ir.Node, error) {
	var rdr io.Reader
	if arg == "-" {
		rdr = cc.In
	} else {
		f, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", arg, err)
		}
		defer f.Close()
		rdr = f
	}
	d, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	node, err := parse.Parse(d, cfg.parseOpts()...)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", arg, err)
	}
	return node, nil
}

func readConfig(path string) (*clean.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: -c <config> is required", cli.ErrUsage)
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}
	cfg, err := clean.ParseConfig(d)
	if err != nil {
		return nil, fmt.Errorf("error in config %s: %w", path, err)
	}
	return cfg, nil
}

// objArgs defaults to the command input when no files are given.
func objArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}
