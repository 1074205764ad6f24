package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/croppelt/nested-object-cleaner/clean"
	"github.com/croppelt/nested-object-cleaner/encode"
)

func runClean(cfg *CleanConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Clean.Parse(cc, args)
	if err != nil {
		cfg.Clean.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	cleanCfg, err := readConfig(cfg.ConfigPath)
	if err != nil {
		return err
	}
	nDiags := 0
	for _, arg := range objArgs(args) {
		node, err := readObjFile(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, diags, err := clean.Clean(node, cleanCfg)
		if err != nil {
			return fmt.Errorf("error cleaning %s: %w", arg, err)
		}
		nDiags += len(diags)
		reportDiags(arg, diags)
		w, closeW, err := cleanOut(cfg, cc, arg)
		if err != nil {
			return err
		}
		if err := encode.Encode(res, w, cfg.encOpts(w)...); err != nil {
			if closeW != nil {
				closeW()
			}
			return fmt.Errorf("error encoding result: %w", err)
		}
		if closeW != nil {
			if err := closeW(); err != nil {
				return err
			}
		}
	}
	if cfg.Strict && nDiags > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func reportDiags(arg string, diags []clean.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", color.YellowString("warning:"), arg, d)
	}
}

// cleanOut picks the destination: cleaned_<basename> with -w, the
// command output otherwise.
func cleanOut(cfg *CleanConfig, cc *cli.Context, arg string) (io.Writer, func() error, error) {
	if !cfg.Write {
		return cc.Out, nil, nil
	}
	if arg == "-" {
		return nil, nil, fmt.Errorf("%w: -w requires file arguments", cli.ErrUsage)
	}
	dst := filepath.Join(filepath.Dir(arg), "cleaned_"+filepath.Base(arg))
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening %s: %w", dst, err)
	}
	return f, f.Close, nil
}
