package hub

import (
	"context"
	"net/http"
	"net/url"
)

// ListRoles lists the hub's RBAC roles. Only galaxy.* roles are returned; a
// "sort" param is translated to Pulp's "ordering".
func (c *Client) ListRoles(ctx context.Context, params url.Values) (*PulpPage[Role], error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("name__startswith", "galaxy.")
	if s := q.Get("sort"); s != "" {
		q.Set("ordering", s)
		q.Del("sort")
	}

	u := withQuery(c.pulpURL("roles"), q)
	var page PulpPage[Role]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
