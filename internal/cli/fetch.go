package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
	"github.com/matzehuels/tierviz/pkg/pipeline"
)

// fetchCommand creates the fetch command, which saves a scenario as a
// dataset file for offline layouts.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		lenient bool
		summary bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "fetch <scenario>",
		Short: "Save a scenario's objectives as a dataset file",
		Long: `Fetch the tier results of a scenario and write them as a dataset file.

The file extension picks the format: .json (default) or .yaml/.yml.
Dataset files can be edited and laid out with 'layout --input'.

With --lenient an unreachable API or unknown scenario yields an empty
dataset instead of an error.`,
		Example: `  tierviz fetch s0020
  tierviz fetch s0020 --compare s0011 -o s0020.yaml --summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scenario = args[0]
			return c.runFetch(cmd.Context(), opts, output, noCache, lenient, summary)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <scenario>.json), or - for stdout")
	cmd.Flags().StringVar(&opts.Baseline, "compare", "", "baseline scenario id; sets each objective's baseline tier")
	cmd.Flags().StringSliceVar(&opts.Tiers, "tiers", nil, "tier labels, lowest level first (default from config)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached API responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "write an empty dataset when the fetch fails")
	cmd.Flags().BoolVar(&summary, "summary", false, "print objective counts per tier and category")

	cmd.MarkFlagsMutuallyExclusive("lenient", "compare")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, opts pipeline.Options, output string, noCache, lenient, summary bool) error {
	c.applyConfigDefaults(&opts)
	if err := opts.ValidateForAcquire(); err != nil {
		return err
	}

	runner, client, err := c.newRunner(ctx, noCache, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s...", opts.Scenario))
	spinner.Start()
	prog := newProgress(c.Logger)

	var d chart.Dataset
	if lenient {
		client.Refresh = opts.Refresh
		d = client.LoadScenario(ctx, opts.Scenario, opts.Tiers)
	} else {
		d, err = runner.Acquire(ctx, opts)
	}
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("fetched scenario", "scenario", opts.Scenario, "objectives", len(d.Objectives))

	if output == "" {
		output = opts.Scenario + ".json"
	}
	if output == "-" {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := chart.WriteDatasetFile(d, output); err != nil {
		return fmt.Errorf("write dataset %s: %w", output, err)
	}

	if d.Empty() {
		printWarning("Scenario %s has no objectives", opts.Scenario)
	} else {
		printSuccess("Fetched %s", plural(len(d.Objectives), "objective"))
	}
	printFile(output)
	if mean := coeqwal.MeanTier(d.Objectives); mean > 0 {
		printDetail("Mean tier %.2f", mean)
	}
	if summary {
		fmt.Println(summaryTable(d.Summarize()))
	}
	fmt.Println()
	printNextStep("Lay out", "tierviz layout --input "+output)
	return nil
}
