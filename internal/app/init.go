package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		apiBase  string
		tokenEnv string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file for a hub",
		Long: `Write ~/.config/hubctl/config.yml (or the --config path) with the
hub's API base and the pipeline repository names.

The token is never written; it is read from the environment variable named
by hub.token_env (HUB_TOKEN by default) or from a .env file.`,
		Example: `  hubctl init --api-base https://hub.example.com/api/galaxy
  hubctl init --api-base https://hub.example.com/api/galaxy --token-env MY_HUB_TOKEN --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.Path()
			if flagConfig != "" {
				path = config.ExpandHome(flagConfig)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			out := *cfg
			if apiBase != "" {
				out.Hub.APIBase = apiBase
			}
			if tokenEnv != "" {
				out.Hub.TokenEnv = tokenEnv
			}
			if out.Pipeline == (certify.Repos{}) {
				out.Pipeline = certify.DefaultRepos()
			}
			if err := config.SaveFile(&out, path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok("Wrote %s", path)

			if os.Getenv(out.Hub.TokenEnv) == "" {
				fmt.Println()
				fmt.Println("Next step: set your hub token")
				fmt.Printf("  %s\n", color.CyanString("export %s=<token>", out.Hub.TokenEnv))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiBase, "api-base", "", "Hub API base, e.g. https://hub.example.com/api/galaxy")
	cmd.Flags().StringVar(&tokenEnv, "token-env", "", "Environment variable holding the token")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
