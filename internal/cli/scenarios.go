package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
	"github.com/matzehuels/tierviz/pkg/pipeline"
)

// scenariosCommand creates the scenarios command and its raw-data
// subcommands.
func (c *CLI) scenariosCommand() *cobra.Command {
	var (
		pick    bool
		refresh bool
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List scenarios available from the COEQWAL API",
		Long: `List scenarios available from the COEQWAL API, sorted by id.

With --pick an interactive list opens; the chosen scenario is laid out
as with 'tierviz layout --scenario <id>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScenarios(cmd.Context(), cmd.OutOrStdout(), pick, refresh, mode)
		},
	}

	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose a scenario interactively and lay it out")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached API responses")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(chart.ModeTiers), "layout mode for --pick")
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)

	cmd.AddCommand(c.scenariosCodesCommand())
	cmd.AddCommand(c.scenariosGeoCommand())

	return cmd
}

func (c *CLI) runScenarios(ctx context.Context, out io.Writer, pick, refresh bool, mode string) error {
	if _, err := chart.ParseMode(mode); err != nil {
		return err
	}

	runner, client, err := c.newRunner(ctx, false, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	client.Refresh = refresh

	spinner := newSpinnerWithContext(ctx, "Loading scenarios...")
	spinner.Start()
	scenarios, err := client.ListScenarios(ctx)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("list scenarios: %w", err)
	}
	sortScenarios(scenarios)

	if !pick {
		rows := make([][]string, len(scenarios))
		for i, s := range scenarios {
			rows[i] = []string{s.ID, s.Name, truncate(s.Description, 60)}
		}
		fmt.Fprintln(out, renderTable([]string{"Scenario", "Name", "Description"}, rows))
		printDetail("%s", plural(len(scenarios), "scenario"))
		return nil
	}

	if len(scenarios) == 0 {
		printWarning("No scenarios to pick from")
		return nil
	}
	final, err := tea.NewProgram(NewScenarioPicker(scenarios), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}
	picked := final.(ScenarioPicker).Selected
	if picked == nil {
		return nil
	}

	opts := pipeline.Options{Scenario: picked.ID, Mode: mode, Refresh: refresh}
	c.applyConfigDefaults(&opts)
	return c.layoutOne(ctx, runner, nil, opts, layoutOutput(opts, ""))
}

// sortScenarios orders scenarios by id with numeric-aware collation, so
// "s2" sorts before "s10".
func sortScenarios(scenarios []coeqwal.Scenario) {
	col := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	slices.SortStableFunc(scenarios, func(a, b coeqwal.Scenario) int {
		return col.CompareString(a.ID, b.ID)
	})
}

// scenariosCodesCommand prints the raw tier short-code list.
func (c *CLI) scenariosCodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "Print the tier indicator short codes as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, client, err := c.newRunner(ctx, false, nil)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			raw, err := client.ShortCodes(ctx)
			if err != nil {
				return fmt.Errorf("short codes: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
			return err
		},
	}
}

// scenariosGeoCommand saves the GeoJSON tier map of one indicator.
func (c *CLI) scenariosGeoCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "geo <short-code>",
		Short: "Save the GeoJSON tier map of a tier indicator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, client, err := c.newRunner(ctx, false, nil)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			raw, err := client.GeoShapes(ctx, args[0])
			if err != nil {
				return fmt.Errorf("geo shapes %s: %w", args[0], err)
			}
			if output == "" {
				output = args[0] + ".geojson"
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Saved tier map for %s", args[0])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <short-code>.geojson), or - for stdout")
	return cmd
}
