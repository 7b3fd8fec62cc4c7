package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/chart"
)

// completionCommand creates the completion command. Scripts are written to
// the command's output so they can be redirected or captured in tests.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tierviz.

  bash:        source <(tierviz completion bash)
  zsh:         tierviz completion zsh > "${fpath[1]}/_tierviz"
  fish:        tierviz completion fish | source
  powershell:  tierviz completion powershell | Out-String | Invoke-Expression

Flag values such as --mode and --format complete as well.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// completeModes completes --mode values.
func completeModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	modes := make([]string, len(chart.Modes))
	for i, m := range chart.Modes {
		modes[i] = string(m)
	}
	return modes, cobra.ShellCompDirectiveNoFileComp
}

// completeDatasetFiles limits file completion to dataset extensions.
func completeDatasetFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}
