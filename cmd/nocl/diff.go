package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/croppelt/nested-object-cleaner/clean"
	"github.com/croppelt/nested-object-cleaner/encode"
	"github.com/croppelt/nested-object-cleaner/format"
	"github.com/croppelt/nested-object-cleaner/ir"
	"github.com/croppelt/nested-object-cleaner/parse"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	cleanCfg, err := readConfig(cfg.ConfigPath)
	if err != nil {
		return err
	}
	for _, arg := range objArgs(args) {
		node, err := readObjFile(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, diags, err := clean.Clean(node, cleanCfg)
		if err != nil {
			return fmt.Errorf("error cleaning %s: %w", arg, err)
		}
		reportDiags(arg, diags)
		if cfg.Text {
			err = textDiff(cfg, cc, node, res)
		} else {
			err = mergePatch(cfg, cc, node, res)
		}
		if err != nil {
			return fmt.Errorf("error diffing %s: %w", arg, err)
		}
	}
	return nil
}

// mergePatch renders the removal as an RFC 7386 merge patch from the
// input to the cleaned document.
func mergePatch(cfg *DiffConfig, cc *cli.Context, before, after *ir.Node) error {
	bj, err := wireJSON(before)
	if err != nil {
		return err
	}
	aj, err := wireJSON(after)
	if err != nil {
		return err
	}
	patch, err := jsonpatch.CreateMergePatch(bj, aj)
	if err != nil {
		return err
	}
	// round-trip through the IR so -O/-color apply to the patch too
	node, err := parse.Parse(patch, parse.ParseJSON())
	if err != nil {
		return err
	}
	return encode.Encode(node, cc.Out, cfg.encOpts(cc.Out)...)
}

func textDiff(cfg *DiffConfig, cc *cli.Context, before, after *ir.Node) error {
	bs := encode.MustString(before, encode.EncodeFormat(cfg.outFormat()))
	as := encode.MustString(after, encode.EncodeFormat(cfg.outFormat()))
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(bs, as, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if colorOut(cfg.MainConfig, cc.Out) {
		_, err := io.WriteString(cc.Out, dmp.DiffPrettyText(diffs))
		return err
	}
	_, err := io.WriteString(cc.Out, dmp.PatchToText(dmp.PatchMake(bs, diffs)))
	return err
}

func wireJSON(node *ir.Node) ([]byte, error) {
	var buf bytes.Buffer
	err := encode.Encode(node, &buf,
		encode.EncodeFormat(format.JSONFormat),
		encode.EncodeWire(true))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorOut(cfg *MainConfig, w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
