package hub

import (
	"context"
	"net/http"
	"net/url"
)

// ListDistributions lists ansible distributions. Typical filters are
// "repository" (a single href) and "repository__in" (comma-separated hrefs).
func (c *Client) ListDistributions(ctx context.Context, params url.Values) (*PulpPage[Distribution], error) {
	u := withQuery(c.pulpURL("distributions", "ansible", "ansible"), params)
	var page PulpPage[Distribution]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListRepositories lists ansible repositories, e.g. by "name" or
// "name__icontains".
func (c *Client) ListRepositories(ctx context.Context, params url.Values) (*PulpPage[Repository], error) {
	u := withQuery(c.pulpURL("repositories", "ansible", "ansible"), params)
	var page PulpPage[Repository]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RepositoryByName returns the repository with exactly the given name.
// Returns ErrNotFound if absent.
func (c *Client) RepositoryByName(ctx context.Context, name string) (*Repository, error) {
	page, err := c.ListRepositories(ctx, url.Values{"name": {name}})
	if err != nil {
		return nil, err
	}
	for i := range page.Results {
		if page.Results[i].Name == name {
			return &page.Results[i], nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Message: "repository " + name + " not found"}
}
