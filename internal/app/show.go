package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/detail"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type contentGetter interface {
	GetVersionContent(ctx context.Context, basePath, namespace, name, version string) (*hub.VersionContent, error)
}

// highestMetadata fetches the metadata of the detail's highest version
// through its distribution.
func highestMetadata(ctx context.Context, g contentGetter, d *detail.Detail) (hub.VersionMetadata, error) {
	v := d.Current.CollectionVersion
	vc, err := g.GetVersionContent(ctx, d.BasePath, v.Namespace, v.Name, v.Version)
	if err != nil {
		return hub.VersionMetadata{}, err
	}
	return vc.Metadata, nil
}

type contentGroup struct {
	Type  string   `json:"type"`
	Names []string `json:"names"`
}

// groupContents buckets user-facing content by type, both sorted.
func groupContents(m hub.VersionMetadata) []contentGroup {
	byType := map[string][]string{}
	for _, c := range m.VisibleContents() {
		byType[c.ContentType] = append(byType[c.ContentType], c.Name)
	}
	out := make([]contentGroup, 0, len(byType))
	for typ, names := range byType {
		sort.Strings(names)
		out = append(out, contentGroup{Type: typ, Names: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

type dependencyOut struct {
	Collection string `json:"collection"`
	Version    string `json:"version"`
}

// sortedDependencies lists dependencies by collection name.
func sortedDependencies(m hub.VersionMetadata) []dependencyOut {
	out := make([]dependencyOut, 0, len(m.Dependencies))
	for fqcn, constraint := range m.Dependencies {
		out = append(out, dependencyOut{Collection: fqcn, Version: constraint})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Collection < out[j].Collection })
	return out
}

func newShowCmd() *cobra.Command {
	var (
		repository string
		force      bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "show <namespace.name>",
		Short: "Show the versions, contents and dependencies of one collection",
		Long: `Show the versions of a collection in one repository, newest first,
with the distribution base path that serves them, followed by the contents
and dependencies of the highest version.

Examples:
  hubctl show acme.tools
  hubctl show acme.tools --repository staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			loader := detail.NewLoader(hc, newResolver(), details)
			d, err := loader.Load(ctx, ref.Key(), repository, force)
			if err != nil {
				return err
			}
			flags, err := featureFlags(ctx)
			if err != nil {
				return err
			}
			meta, metaErr := highestMetadata(ctx, hc, d)
			if metaErr != nil {
				logger.Debug("loading version metadata failed", "collection", d.Key, "err", metaErr)
			}

			if jsonOut {
				out := struct {
					Namespace    string          `json:"namespace"`
					Name         string          `json:"name"`
					BasePath     string          `json:"base_path"`
					Highest      string          `json:"highest"`
					Versions     []versionOut    `json:"versions"`
					Contents     []contentGroup  `json:"contents"`
					Dependencies []dependencyOut `json:"dependencies"`
				}{
					Namespace:    ref.Namespace,
					Name:         ref.Name,
					BasePath:     d.BasePath,
					Highest:      d.Current.CollectionVersion.Version,
					Contents:     groupContents(meta),
					Dependencies: sortedDependencies(meta),
				}
				for _, v := range d.Versions {
					o := toVersionOut(annotate(v), certify.StatusText(v, flags))
					o.Distribution = d.BasePath
					out.Versions = append(out.Versions, o)
				}
				return printJSON(out)
			}

			cur := d.Current
			header("%s", d.Key)
			fmt.Printf("  %-14s %s\n", "highest:", cur.CollectionVersion.Version)
			fmt.Printf("  %-14s %s\n", "repository:", cur.Repository.Name)
			fmt.Printf("  %-14s %s\n", "distribution:", d.BasePath)
			if cur.CollectionVersion.Description != "" {
				fmt.Printf("  %-14s %s\n", "description:", cur.CollectionVersion.Description)
			}
			if cur.IsDeprecated {
				fmt.Printf("  %-14s %s\n", "deprecated:", color.YellowString("yes"))
			}
			fmt.Println()
			header("  %-14s %-12s %-10s %s", "VERSION", "CREATED", "SIGNED", "STATUS")
			for _, v := range d.Versions {
				signed := "no"
				if v.IsSigned {
					signed = color.GreenString("yes")
				}
				created := "-"
				if !v.CollectionVersion.PulpCreated.IsZero() {
					created = v.CollectionVersion.PulpCreated.Format("2006-01-02")
				}
				fmt.Printf("  %-14s %-12s %-10s %s\n", v.CollectionVersion.Version, created, signed,
					stateColor(v, certify.StatusText(v, flags)))
			}

			if metaErr != nil {
				fmt.Println()
				warn("Could not load contents of %s: %s", d.Current.CollectionVersion, describe(metaErr))
				return nil
			}
			fmt.Println()
			header("  CONTENTS")
			groups := groupContents(meta)
			if len(groups) == 0 {
				fmt.Println("  " + color.HiBlackString("none"))
			}
			for _, g := range groups {
				fmt.Printf("  %-14s %s\n", g.Type, strings.Join(g.Names, ", "))
			}
			fmt.Println()
			header("  DEPENDENCIES")
			deps := sortedDependencies(meta)
			if len(deps) == 0 {
				fmt.Println("  " + color.HiBlackString("Collection does not have any dependencies."))
			}
			for _, dep := range deps {
				fmt.Printf("  %-36s %s\n", dep.Collection, dep.Version)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "", "Repository name (default: any)")
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cached detail")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
