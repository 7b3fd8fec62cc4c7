package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/pipeline"
	"github.com/matzehuels/tierviz/pkg/store"
)

type layoutFlags struct {
	inputs  []string
	output  string
	noCache bool
	save    bool
	watch   bool
}

// layoutCommand creates the layout command for computing chart layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute a chart layout for a scenario or dataset file",
		Long: `Compute a chart layout for a scenario or dataset file.

The dataset comes either from the COEQWAL API (--scenario) or from dataset
files written by 'fetch' (--input, JSON or YAML, globs allowed). With
--compare the baseline scenario is fetched as well and moved objectives get
a triangle mark plus a baseline mark.

Modes:
  tiers    unit dots per category band and tier row (default)
  treemap  squarified treemap weighted by water volume
  bar      one bar per objective, height proportional to unmet demand

The result is a layout JSON document (one per input). Layouts are cached;
--watch recomputes file inputs whenever they change.`,
		Example: `  tierviz layout --scenario s0020
  tierviz layout --scenario s0020 --compare s0011 -o compare.json
  tierviz layout --input 'data/**/*.yaml' --mode treemap --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&opts.Scenario, "scenario", "s", "", "scenario id, e.g. s0020")
	cmd.Flags().StringSliceVarP(&flags.inputs, "input", "i", nil, "dataset file or glob (repeatable)")
	cmd.Flags().StringVar(&opts.Baseline, "compare", "", "baseline scenario id to compare against")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", string(chart.ModeTiers), "layout mode: tiers, treemap, bar")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height (default from config)")
	cmd.Flags().StringSliceVar(&opts.Tiers, "tiers", nil, "tier labels, lowest level first (default from config)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached API responses")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file, or - for stdout (single input only)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.save, "save", false, "also store the layout in the configured store")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "recompute when input files change")

	cmd.MarkFlagsMutuallyExclusive("scenario", "input")
	cmd.MarkFlagsOneRequired("scenario", "input")
	cmd.MarkFlagsMutuallyExclusive("watch", "scenario")
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = cmd.RegisterFlagCompletionFunc("input", completeDatasetFiles)

	return cmd
}

// runLayout resolves inputs, runs the pipeline for each, and optionally
// keeps watching file inputs.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, flags layoutFlags) error {
	c.applyConfigDefaults(&opts)

	inputs, err := expandInputs(flags.inputs)
	if err != nil {
		return err
	}
	if len(inputs) > 1 && flags.output != "" {
		return fmt.Errorf("--output needs a single input, got %d", len(inputs))
	}

	runner, _, err := c.newRunner(ctx, flags.noCache, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var st store.Store
	if flags.save {
		if st, err = c.newStore(ctx); err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	run := func(input string) error {
		o := opts
		o.Input = input
		return c.layoutOne(ctx, runner, st, o, layoutOutput(o, flags.output))
	}

	if len(inputs) == 0 {
		return run("")
	}
	for _, in := range inputs {
		if err := run(in); err != nil {
			if !flags.watch {
				return err
			}
			printError("%s: %v", in, err)
		}
	}

	if !flags.watch {
		return nil
	}
	printInfo("Watching %s", plural(len(inputs), "file"))
	return watchFiles(ctx, inputs, c.Logger, func(path string) {
		if err := run(path); err != nil && ctx.Err() == nil {
			printError("%s: %v", path, err)
		}
	})
}

// layoutOne runs the pipeline once and writes the document.
func (c *CLI) layoutOne(ctx context.Context, runner *pipeline.Runner, st store.Store, opts pipeline.Options, output string) error {
	label := opts.Scenario
	if opts.Input != "" {
		label = filepath.Base(opts.Input)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout for %s...", opts.Mode, label))
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("layout ready", "mode", opts.Mode, "source", label, "marks", result.Stats.Marks)

	if st != nil {
		if err := st.Save(ctx, result.Layout); err != nil {
			return fmt.Errorf("save layout: %w", err)
		}
	}

	if output == "-" {
		data, err := chart.MarshalLayout(result.Layout)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := chart.WriteLayoutFile(result.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats, result.CacheInfo)
	if st != nil {
		printDetail("Stored as %s", result.Layout.ID)
	}
	return nil
}

// applyConfigDefaults fills unset flags from the loaded config.
func (c *CLI) applyConfigDefaults(opts *pipeline.Options) {
	if opts.Width == 0 {
		opts.Width = c.cfg.Layout.Width
	}
	if opts.Height == 0 {
		opts.Height = c.cfg.Layout.Height
	}
	if len(opts.Tiers) == 0 {
		opts.Tiers = c.cfg.API.Tiers
	}
	opts.Logger = c.Logger
}

// layoutOutput picks the output path: the flag, <input>.layout.json for
// files, or <scenario>[-vs-<baseline>].<mode>.layout.json.
func layoutOutput(opts pipeline.Options, flag string) string {
	if flag != "" {
		return flag
	}
	if opts.Input != "" {
		return strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input)) + ".layout.json"
	}
	name := opts.Scenario
	if opts.Baseline != "" {
		name += "-vs-" + opts.Baseline
	}
	return name + "." + opts.Mode + ".layout.json"
}
