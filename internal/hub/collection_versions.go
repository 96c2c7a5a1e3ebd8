package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListCollectionVersions queries the cross-repository collection-version
// search endpoint.
func (c *Client) ListCollectionVersions(ctx context.Context, params url.Values) (*Page[CollectionVersionSearch], error) {
	u := withQuery(c.url("v3", "plugin", "ansible", "search", "collection-versions"), params)
	var page Page[CollectionVersionSearch]
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// MoveOptions tune a move request.
type MoveOptions struct {
	// Sign asks the hub to sign the version while moving it. No signing
	// happens client side.
	Sign bool
}

// MoveCollectionVersion moves a version from one repository to another. The
// hub performs the move asynchronously and returns the spawned task IDs.
func (c *Client) MoveCollectionVersion(ctx context.Context, namespace, name, version, fromRepo, toRepo string, opts MoveOptions) (*MoveResult, error) {
	u := c.url("v3", "collections", namespace, name, "versions", version, "move", fromRepo, toRepo)
	body := map[string]interface{}{}
	if opts.Sign {
		body["sign"] = true
	}
	var res MoveResult
	if err := c.doJSON(ctx, http.MethodPost, u, body, &res); err != nil {
		return nil, fmt.Errorf("move %s.%s:%s %s -> %s: %w", namespace, name, version, fromRepo, toRepo, err)
	}
	return &res, nil
}
