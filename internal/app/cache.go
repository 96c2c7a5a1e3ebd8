package app

import (
	"fmt"

	"github.com/blackwell-systems/hubctl/internal/cache"
	"github.com/blackwell-systems/hubctl/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local artifact cache",
		Long:  "Manage the local cache of downloaded collection artifacts without affecting the hub.",
	}
	cmd.AddCommand(
		newCacheListCmd(),
		newCacheClearCmd(),
	)
	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached artifacts",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			entries, err := cacheMgr.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				ok("Cache is empty (%s)", cacheMgr.Dir())
				return nil
			}
			header("%-40s %-14s %s", "COLLECTION", "VERSION", "SIZE")
			for _, e := range entries {
				fmt.Printf("%-40s %-14s %s\n", e.Namespace+"."+e.Name, e.Version, util.HumanBytes(e.Size))
			}
			fmt.Printf("\n%d artifacts, %s in %s\n", len(entries), util.HumanBytes(totalSize(entries)), cacheMgr.Dir())
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [namespace.name:version...]",
		Short: "Remove artifacts from the local cache",
		Long: `Remove cached artifacts. They are downloaded again on the next
'hubctl download'.

Examples:
  hubctl cache clear acme.tools:1.2.0
  hubctl cache clear --all`,
		RunE: func(_ *cobra.Command, args []string) error {
			if all {
				return clearAllCache()
			}
			if len(args) == 0 {
				return fmt.Errorf("name artifacts to remove or pass --all")
			}
			refs, err := parseRefs(args, true)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				if !cacheMgr.Exists(ref.Namespace, ref.Name, ref.Version) {
					warn("%s is not cached", ref)
					continue
				}
				if err := cacheMgr.Remove(ref.Namespace, ref.Name, ref.Version); err != nil {
					return err
				}
				ok("Removed %s", ref)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear the entire cache")
	return cmd
}

func clearAllCache() error {
	entries, err := cacheMgr.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ok("Cache is already empty")
		return nil
	}
	size := totalSize(entries)
	fmt.Printf("This will remove %d cached artifacts (%s)\n", len(entries), util.HumanBytes(size))
	if !confirm(color.YellowString("Clear the cache?")) {
		warn("Cancelled.")
		return nil
	}
	if err := cacheMgr.Clear(); err != nil {
		return err
	}
	ok("Cleared %d artifacts (%s)", len(entries), util.HumanBytes(size))
	return nil
}

func totalSize(entries []cache.Entry) int64 {
	var n int64
	for _, e := range entries {
		n += e.Size
	}
	return n
}
