package app

import (
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/hubctl/internal/cache"
	"github.com/blackwell-systems/hubctl/internal/util"
	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	var (
		repository string
		outDir     string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "download <namespace.name:version>",
		Short: "Download a collection artifact into the local cache",
		Long: `Download a collection tarball through the distribution serving its
repository. Artifacts are cached under defaults.cache_dir and verified
against the hub's sha256.

Examples:
  hubctl download acme.tools:1.2.0
  hubctl download acme.tools:1.2.0 --repository staging --out ./dist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], true)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			path := cacheMgr.Path(ref.Namespace, ref.Name, ref.Version)
			if refresh || !cacheMgr.Exists(ref.Namespace, ref.Name, ref.Version) {
				row, err := findVersion(ctx, hc, ref, repository)
				if err != nil {
					return err
				}
				basePath, err := newResolver().BasePathFor(ctx, row.Repository)
				if err != nil {
					return err
				}
				content, err := hc.GetVersionContent(ctx, basePath, ref.Namespace, ref.Name, ref.Version)
				if err != nil {
					return err
				}
				body, err := hc.DownloadArtifact(ctx, content.DownloadURL)
				if err != nil {
					return err
				}
				path, err = cacheMgr.Store(ref.Namespace, ref.Name, ref.Version, body, content.Artifact.SHA256)
				body.Close()
				if err != nil {
					return err
				}
				ok("Downloaded %s (%s) from %s", ref, util.HumanBytes(content.Artifact.Size), basePath)
			} else {
				ok("%s already cached", ref)
			}

			if outDir == "" {
				fmt.Println(path)
				return nil
			}
			dst := filepath.Join(outDir, cache.Filename(ref.Namespace, ref.Name, ref.Version))
			if err := util.CopyFile(path, dst); err != nil {
				return err
			}
			fmt.Println(dst)
			return nil
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "", "Repository to download from (default: the version's pipeline repository)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Also copy the artifact into this directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Download even if cached")
	return cmd
}
