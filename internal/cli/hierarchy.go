package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/layout"
	"github.com/matzehuels/tierviz/pkg/pipeline"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// hierarchyCommand creates the hierarchy command, a debugging view of the
// category → objective tree the treemap is built from.
func (c *CLI) hierarchyCommand() *cobra.Command {
	var (
		input   string
		output  string
		format  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Show the treemap hierarchy as Graphviz DOT or SVG",
		Long: `Show the treemap hierarchy of a scenario or dataset file.

Categories and objectives are listed in the order the treemap packs them,
labeled with their water volume. DOT is written as text; SVG is rendered
with Graphviz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = input
			return c.runHierarchy(cmd.Context(), opts, format, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&opts.Scenario, "scenario", "s", "", "scenario id")
	cmd.Flags().StringVarP(&input, "input", "i", "", "dataset file")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <source>.hierarchy.<format>), or - for stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	cmd.MarkFlagsMutuallyExclusive("scenario", "input")
	cmd.MarkFlagsOneRequired("scenario", "input")
	_ = cmd.RegisterFlagCompletionFunc("input", completeDatasetFiles)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runHierarchy(ctx context.Context, opts pipeline.Options, format, output string, noCache bool) error {
	if format != formatDOT && format != formatSVG {
		return fmt.Errorf("unknown format %q (want dot or svg)", format)
	}
	c.applyConfigDefaults(&opts)

	runner, _, err := c.newRunner(ctx, noCache, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Acquire(ctx, opts)
	if err != nil {
		return err
	}

	root := layout.BuildHierarchy(d.Objectives)
	var data []byte
	if format == formatDOT {
		data = []byte(root.ToDOT())
	} else {
		if data, err = layout.RenderHierarchySVG(ctx, root); err != nil {
			return fmt.Errorf("render hierarchy: %w", err)
		}
	}

	if output == "" {
		base := opts.Scenario
		if opts.Input != "" {
			base = strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input))
		}
		output = base + ".hierarchy." + format
	}
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Hierarchy of %s", plural(len(root.Leaves()), "objective"))
	printFile(output)
	return nil
}
