package distro

import (
	"context"

	"github.com/blackwell-systems/hubctl/internal/hub"
)

// Annotated is a search row joined with the distribution serving its
// repository. Distribution is nil when no distribution serves it.
type Annotated struct {
	hub.CollectionVersionSearch
	Distribution *hub.Distribution `json:"distribution"`
}

// Joiner annotates search rows with distributions.
type Joiner struct {
	resolver *Resolver
}

// NewJoiner creates a Joiner backed by r.
func NewJoiner(r *Resolver) *Joiner {
	return &Joiner{resolver: r}
}

// Join annotates rows in order. An empty input returns without querying the
// hub. A resolver failure is returned as-is and no rows are annotated.
func (j *Joiner) Join(ctx context.Context, rows []hub.CollectionVersionSearch) ([]Annotated, error) {
	if len(rows) == 0 {
		return []Annotated{}, nil
	}

	hrefs := make([]string, 0, len(rows))
	for _, r := range rows {
		hrefs = append(hrefs, r.Repository.PulpHref)
	}

	table, err := j.resolver.Resolve(ctx, hrefs)
	if err != nil {
		return nil, err
	}
	return Annotate(rows, table), nil
}

// Annotate joins rows against an already resolved table.
func Annotate(rows []hub.CollectionVersionSearch, table Table) []Annotated {
	out := make([]Annotated, len(rows))
	for i, r := range rows {
		out[i] = Annotated{
			CollectionVersionSearch: r,
			Distribution:            Select(table.Candidates(r.Repository.PulpHref), r.Repository),
		}
	}
	return out
}

// Select picks the distribution for repo among candidates: the one named
// like the repository, else the first. Returns nil for no candidates.
func Select(candidates []hub.Distribution, repo hub.Repository) *hub.Distribution {
	if len(candidates) == 0 {
		return nil
	}
	for i := range candidates {
		if candidates[i].Name == repo.Name {
			d := candidates[i]
			return &d
		}
	}
	d := candidates[0]
	return &d
}

// BasePath returns the base path of the distribution selected for repo, or
// the repository name when no distribution serves it.
func BasePath(candidates []hub.Distribution, repo hub.Repository) string {
	if d := Select(candidates, repo); d != nil {
		return d.BasePath
	}
	return repo.Name
}
