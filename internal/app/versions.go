package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/query"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type versionOut struct {
	Namespace    string   `json:"namespace"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Repository   string   `json:"repository"`
	Distribution string   `json:"distribution,omitempty"`
	Status       string   `json:"status,omitempty"`
	Signed       bool     `json:"signed"`
	Deprecated   bool     `json:"deprecated"`
	Tags         []string `json:"tags,omitempty"`
}

func toVersionOut(a distro.Annotated, status string) versionOut {
	v := a.CollectionVersion
	out := versionOut{
		Namespace:  v.Namespace,
		Name:       v.Name,
		Version:    v.Version,
		Repository: a.Repository.Name,
		Status:     status,
		Signed:     a.IsSigned,
		Deprecated: a.IsDeprecated,
	}
	if a.Distribution != nil {
		out.Distribution = a.Distribution.BasePath
	}
	for _, t := range v.Tags {
		out.Tags = append(out.Tags, t.Name)
	}
	return out
}

func newVersionsCmd() *cobra.Command {
	var (
		p       query.Params
		status  string
		filter  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "versions",
		Aliases: []string{"ls"},
		Short:   "List collection versions with their distribution and status",
		Long: `List one page of collection versions. Each row is joined with the
distribution serving its repository.

Examples:
  hubctl versions --status needs_review
  hubctl versions --namespace acme --signed false --sort -version
  hubctl versions --keywords network --page 2 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if status != "" {
				st, err := certify.ParseState(status)
				if err != nil {
					return err
				}
				p.Pipeline = st.Label()
			}
			if !cmd.Flags().Changed("page-size") {
				p.PageSize = cfg.Defaults.PageSize
			}
			if !cmd.Flags().Changed("sort") {
				p.Sort = cfg.Defaults.Sort
			}
			if err := p.Validate(); err != nil {
				return err
			}
			p = p.Normalize()
			quick, err := query.ParseFilter(filter)
			if err != nil {
				return err
			}

			page, err := hc.ListCollectionVersions(ctx, p.Values())
			if err != nil {
				return fmt.Errorf("error loading collections: %w", err)
			}
			rows := page.Data
			if filter != "" {
				rows = quick.Apply(rows)
			}
			if field := strings.TrimPrefix(p.Sort, "-"); field == "version" {
				query.SortVersions(rows, strings.HasPrefix(p.Sort, "-"))
			}

			annotated, err := distro.NewJoiner(newResolver()).Join(ctx, rows)
			if err != nil {
				return fmt.Errorf("error loading distributions: %w", err)
			}

			flags, err := featureFlags(ctx)
			if err != nil {
				return err
			}

			if jsonOut {
				out := make([]versionOut, len(annotated))
				for i, a := range annotated {
					out[i] = toVersionOut(a, certify.StatusText(a.CollectionVersionSearch, flags))
				}
				return printJSON(out)
			}

			if len(annotated) == 0 {
				if p.Filtered() || filter != "" {
					warn("No results found. No results match the filter criteria.")
				} else {
					warn("No collection versions yet.")
				}
				return nil
			}

			header("%-36s %-14s %-12s %-18s %s", "COLLECTION", "VERSION", "REPOSITORY", "DISTRIBUTION", "STATUS")
			for _, a := range annotated {
				o := toVersionOut(a, certify.StatusText(a.CollectionVersionSearch, flags))
				dist := o.Distribution
				if dist == "" {
					dist = color.HiBlackString("-")
				}
				st := stateColor(a.CollectionVersionSearch, o.Status)
				if o.Deprecated {
					st += color.HiBlackString(" (deprecated)")
				}
				fmt.Printf("%-36s %-14s %-12s %-18s %s\n",
					a.CollectionVersion.FQCN(), o.Version, o.Repository, dist, st)
			}
			fmt.Println()
			fmt.Printf("page %d of %d · %d versions\n", p.Page, p.PageCount(page.Meta.Count), page.Meta.Count)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Keywords, "keywords", "", "Free-text search")
	f.StringVar(&p.Namespace, "namespace", "", "Filter by namespace")
	f.StringVar(&p.Name, "name", "", "Filter by collection name")
	f.StringVar(&p.Repository, "repository", "", "Filter by repository name")
	f.StringSliceVar(&p.Tags, "tag", nil, "Filter by tag (repeatable)")
	f.StringVar(&p.Signed, "signed", "", "Filter by signature state (true|false)")
	f.StringVar(&p.Deprecated, "deprecated", "", "Filter by deprecation (true|false)")
	f.BoolVar(&p.HighestOnly, "highest", false, "Only the highest version of each collection")
	f.StringVar(&status, "status", "", "Filter by status (needs_review|approved|rejected)")
	f.StringVar(&filter, "filter", "", "Narrow the fetched page: words match name, version or tag; tag:<name>, signed:true|false")
	f.IntVar(&p.Page, "page", 1, "Page number")
	f.IntVar(&p.PageSize, "page-size", query.DefaultPageSize, "Results per page")
	f.StringVar(&p.Sort, "sort", query.DefaultSort, "Sort field ("+strings.Join(query.SortFields, ", ")+"), prefix - for descending")
	f.BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
