// Package distro resolves which distribution serves a repository and joins
// collection-version search results with their distributions.
package distro

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/hub"
)

// DefaultPageSize bounds the single distribution query. Repositories with
// more matching distributions than this are not paginated.
const DefaultPageSize = 999

// Lister is the slice of the hub client the resolver needs.
type Lister interface {
	ListDistributions(ctx context.Context, params url.Values) (*hub.PulpPage[hub.Distribution], error)
}

// Resolver maps repository hrefs to the distributions that serve them.
type Resolver struct {
	lister   Lister
	pageSize int
}

// NewResolver creates a Resolver. A pageSize <= 0 uses DefaultPageSize.
func NewResolver(l Lister, pageSize int) *Resolver {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Resolver{lister: l, pageSize: pageSize}
}

// Table is the result of one Resolve call.
type Table struct {
	byRepo map[string][]hub.Distribution
}

// Lookup returns the last distribution seen for repoHref, or nil.
func (t Table) Lookup(repoHref string) *hub.Distribution {
	c := t.byRepo[repoHref]
	if len(c) == 0 {
		return nil
	}
	d := c[len(c)-1]
	return &d
}

// Candidates returns every distribution for repoHref in the order the hub
// returned them.
func (t Table) Candidates(repoHref string) []hub.Distribution {
	return t.byRepo[repoHref]
}

// Len returns the number of repositories with at least one distribution.
func (t Table) Len() int { return len(t.byRepo) }

// Resolve issues one distribution query for the deduplicated hrefs. On
// failure no table is returned; callers degrade to an empty Table.
func (r *Resolver) Resolve(ctx context.Context, repoHrefs []string) (Table, error) {
	hrefs := dedupe(repoHrefs)

	params := url.Values{"page_size": {strconv.Itoa(r.pageSize)}}
	if len(hrefs) > 0 {
		params.Set("repository__in", strings.Join(hrefs, ","))
	}

	page, err := r.lister.ListDistributions(ctx, params)
	if err != nil {
		if hub.KindOf(err) == "" {
			err = hub.NetworkError("listing distributions", err)
		}
		return Table{}, err
	}

	t := Table{byRepo: make(map[string][]hub.Distribution, len(hrefs))}
	for _, d := range page.Results {
		t.byRepo[d.Repository] = append(t.byRepo[d.Repository], d)
	}
	return t, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// BasePathFor resolves the base path serving repo with a single query.
func (r *Resolver) BasePathFor(ctx context.Context, repo hub.Repository) (string, error) {
	t, err := r.Resolve(ctx, []string{repo.PulpHref})
	if err != nil {
		return "", err
	}
	return BasePath(t.Candidates(repo.PulpHref), repo), nil
}
