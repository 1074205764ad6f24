package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		}, &cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "nocl").
		WithSynopsis("nocl [opts] command [opts]").
		WithDescription("nocl removes unreferenced elements from nested object documents.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return noclMain(cfg, cc, args)
		}).
		WithSubs(
			CleanCommand(cfg),
			ViewCommand(cfg),
			DiffCommand(cfg))
}

func CleanCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CleanConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("clean").
		WithAliases("c", "cl").
		WithSynopsis("clean -c <config> [-w] [files]").
		WithDescription(cleanDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runClean(cfg, cc, args)
		})
	cfg.Clean = cmd
	return cmd
}

const cleanDescription = `clean removes orphaned pool elements from object documents.

The configuration file names the pools (sequences of identified
elements), the reference fields that link to them, and the anchor
locations that are always considered in use.  Elements of a pool that
cannot be reached from any anchor through the configured reference
fields are removed; everything else is left exactly as found.

With -w, the result is written to cleaned_<basename> next to each
input instead of the command output.  Diagnostics (dangling references,
skipped elements) go to stderr; -strict makes them fatal.`

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("view").
		WithAliases("v").
		WithSynopsis("view [files]").
		WithDescription("view object files, converting formats with -I/-O").
		WithRun(func(cc *cli.Context, args []string) error {
			return view(cfg, cc, args)
		})
	cfg.View = cmd
	return cmd
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithSynopsis("diff -c <config> [-text] [files]").
		WithDescription("show what cleaning would remove, as a merge patch or text diff").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}
