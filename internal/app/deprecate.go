package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeprecateCmd(deprecated bool) *cobra.Command {
	var repository string

	use, short, verb := "deprecate", "Mark a collection as deprecated", "deprecated"
	if !deprecated {
		use, short, verb = "undeprecate", "Clear the deprecation mark of a collection", "undeprecated"
	}

	cmd := &cobra.Command{
		Use:   use + " <namespace.name>",
		Short: short,
		Long: fmt.Sprintf(`%s. The change applies to the collection in one
repository, addressed through the distribution serving it.

Examples:
  hubctl %s acme.tools
  hubctl %s acme.tools --repository staging`, short, use, use),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if repository == "" {
				repository = cfg.Pipeline.Published
			}
			basePath, err := basePathForRepo(ctx, repository)
			if err != nil {
				return err
			}
			task, err := hc.SetDeprecation(ctx, basePath, ref.Namespace, ref.Name, deprecated)
			if err != nil {
				return err
			}
			if err := waitTask(ctx, task, use+" "+ref.String()); err != nil {
				return err
			}
			details.Invalidate()
			ok("%s %s in %s", ref, verb, repository)
			return nil
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "", "Repository name (default: the published repository)")
	return cmd
}
