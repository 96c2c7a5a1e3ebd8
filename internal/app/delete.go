package app

import (
	"fmt"

	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var (
		repository string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <namespace.name[:version]>",
		Short: "Delete a collection or one of its versions from a repository",
		Long: `Delete a collection version, or every version of a collection when no
version is given, from one repository.

Examples:
  hubctl delete acme.tools:1.2.0 --repository rejected
  hubctl delete acme.tools --repository staging --yes`,
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

			if !yes && !confirm(fmt.Sprintf("Delete %s from %s?", ref, repository)) {
				warn("Cancelled.")
				return nil
			}

			basePath, err := basePathForRepo(ctx, repository)
			if err != nil {
				return err
			}
			var task *hub.TaskRef
			if ref.Version != "" {
				task, err = hc.DeleteCollectionVersion(ctx, basePath, ref.Namespace, ref.Name, ref.Version)
			} else {
				task, err = hc.DeleteCollection(ctx, basePath, ref.Namespace, ref.Name)
			}
			if err != nil {
				return err
			}
			if err := waitTask(ctx, task, "delete "+ref.String()); err != nil {
				return err
			}
			details.Invalidate()
			if ref.Version != "" {
				_ = cacheMgr.Remove(ref.Namespace, ref.Name, ref.Version)
			}
			ok("Deleted %s from %s", ref, repository)
			return nil
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "", "Repository name (default: the published repository)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
