package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// publishedCounter counts the collections served at a base path.
type publishedCounter interface {
	PublishedCount(ctx context.Context, basePath string) (int, error)
}

// collectionCounts counts collections at each distinct base path, at most
// limit requests at a time. Paths whose count fails are left out.
func collectionCounts(ctx context.Context, c publishedCounter, basePaths []string, limit int, l *log.Logger) map[string]int {
	var mu sync.Mutex
	counts := make(map[string]int, len(basePaths))
	seen := make(map[string]bool, len(basePaths))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, bp := range basePaths {
		bp := bp
		if bp == "" || seen[bp] {
			continue
		}
		seen[bp] = true
		g.Go(func() error {
			n, err := c.PublishedCount(gctx, bp)
			if err != nil {
				if l != nil {
					l.Debug("counting collections failed", "base_path", bp, "err", err)
				}
				return nil
			}
			mu.Lock()
			counts[bp] = n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return counts
}

func newDistributionsCmd() *cobra.Command {
	var (
		nameFilter string
		withCounts bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:     "distributions",
		Aliases: []string{"repos"},
		Short:   "List repositories and the distributions serving them",
		Long: `List ansible repositories with their pipeline label and the
distributions that serve them. The base path marked * is the one hubctl
uses for that repository.

Examples:
  hubctl distributions
  hubctl distributions --name stag
  hubctl distributions --counts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			params := url.Values{"limit": {strconv.Itoa(cfg.Distributions.PageSize)}}
			if nameFilter != "" {
				params.Set("name__icontains", nameFilter)
			}
			repos, err := hc.ListRepositories(ctx, params)
			if err != nil {
				return err
			}
			hrefs := make([]string, len(repos.Results))
			for i, r := range repos.Results {
				hrefs[i] = r.PulpHref
			}
			table, err := newResolver().Resolve(ctx, hrefs)
			if err != nil {
				return fmt.Errorf("error loading distributions: %w", err)
			}

			type repoOut struct {
				Repository    string   `json:"repository"`
				Pipeline      string   `json:"pipeline,omitempty"`
				BasePath      string   `json:"base_path,omitempty"`
				Distributions []string `json:"distributions"`
				Collections   *int     `json:"collections,omitempty"`
			}
			out := make([]repoOut, 0, len(repos.Results))
			for _, r := range repos.Results {
				cands := table.Candidates(r.PulpHref)
				o := repoOut{Repository: r.Name, Pipeline: r.Pipeline(), Distributions: []string{}}
				if sel := distro.Select(cands, r); sel != nil {
					o.BasePath = sel.BasePath
				}
				for _, d := range cands {
					o.Distributions = append(o.Distributions, d.BasePath)
				}
				out = append(out, o)
			}
			if withCounts {
				paths := make([]string, len(out))
				for i, o := range out {
					paths[i] = o.BasePath
				}
				counts := collectionCounts(ctx, hc, paths, cfg.Defaults.Concurrency, logger)
				for i := range out {
					if n, ok := counts[out[i].BasePath]; ok {
						out[i].Collections = &n
					}
				}
			}
			if jsonOut {
				return printJSON(out)
			}

			if len(out) == 0 {
				warn("No repositories found.")
				return nil
			}
			header("%-24s %-10s %-12s %s", "REPOSITORY", "PIPELINE", "COLLECTIONS", "DISTRIBUTIONS")
			for _, o := range out {
				pipeline := o.Pipeline
				if pipeline == "" {
					pipeline = "-"
				}
				dists := color.HiBlackString("none")
				if len(o.Distributions) > 0 {
					dists = ""
					for i, bp := range o.Distributions {
						if i > 0 {
							dists += ", "
						}
						if bp == o.BasePath {
							bp = color.GreenString(bp + "*")
						}
						dists += bp
					}
				}
				count := "-"
				if o.Collections != nil {
					count = strconv.Itoa(*o.Collections)
				}
				fmt.Printf("%-24s %-10s %-12s %s\n", o.Repository, pipeline, count, dists)
			}
			fmt.Println()
			fmt.Printf("%d of %d repositories served by a distribution\n", table.Len(), len(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFilter, "name", "", "Only repositories whose name contains this")
	cmd.Flags().BoolVar(&withCounts, "counts", false, "Count the collections each selected distribution serves")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
