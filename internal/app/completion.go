package app

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell autocompletion scripts",
		Long: `Generate autocompletion scripts for your shell. Collection arguments
complete from the hub's review queue when a token is configured.

Examples:
  source <(hubctl completion bash)
  source <(hubctl completion zsh)
  hubctl completion fish > ~/.config/fish/completions/hubctl.fish
  hubctl completion powershell | Out-String | Invoke-Expression`,
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return cmd.Help()
		},
	}
}

// completeVersions suggests namespace.name:version refs from one pipeline
// state. It stays silent without a hub connection.
func completeVersions(state certify.State) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if hc == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()

		params := url.Values{
			"repository_label": {"pipeline=" + state.Label()},
			"limit":            {"100"},
		}
		if ns, _, found := strings.Cut(toComplete, "."); found {
			params.Set("namespace", ns)
		}
		page, err := hc.ListCollectionVersions(ctx, params)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		for _, r := range page.Data {
			if ref := r.CollectionVersion.String(); strings.HasPrefix(ref, toComplete) {
				out = append(out, ref)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
