package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func (c *Client) contentURL(basePath string, parts ...string) string {
	return c.url(append([]string{"v3", "plugin", "ansible", "content", basePath, "collections", "index"}, parts...)...)
}

// GetVersionContent fetches one collection version through the distribution
// at basePath. The response carries the tarball download URL and checksum.
func (c *Client) GetVersionContent(ctx context.Context, basePath, namespace, name, version string) (*VersionContent, error) {
	u := c.contentURL(basePath, namespace, name, "versions", version)
	var vc VersionContent
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &vc); err != nil {
		return nil, err
	}
	return &vc, nil
}

// PublishedCount returns the number of collections served at basePath.
func (c *Client) PublishedCount(ctx context.Context, basePath string) (int, error) {
	var page Page[json.RawMessage]
	if err := c.doJSON(ctx, http.MethodGet, c.contentURL(basePath), nil, &page); err != nil {
		return 0, err
	}
	return page.Meta.Count, nil
}

// SetDeprecation marks every version of a collection in the distribution at
// basePath as deprecated (or not).
func (c *Client) SetDeprecation(ctx context.Context, basePath, namespace, name string, deprecated bool) (*TaskRef, error) {
	u := c.contentURL(basePath, namespace, name)
	var ref TaskRef
	if err := c.doJSON(ctx, http.MethodPatch, u, map[string]bool{"deprecated": deprecated}, &ref); err != nil {
		return nil, fmt.Errorf("deprecate %s.%s: %w", namespace, name, err)
	}
	return &ref, nil
}

// DeleteCollectionVersion removes one version from the distribution's
// repository.
func (c *Client) DeleteCollectionVersion(ctx context.Context, basePath, namespace, name, version string) (*TaskRef, error) {
	u := c.contentURL(basePath, namespace, name, "versions", version)
	var ref TaskRef
	if err := c.doJSON(ctx, http.MethodDelete, u, nil, &ref); err != nil {
		return nil, fmt.Errorf("delete %s.%s:%s: %w", namespace, name, version, err)
	}
	return &ref, nil
}

// DeleteCollection removes every version of a collection.
func (c *Client) DeleteCollection(ctx context.Context, basePath, namespace, name string) (*TaskRef, error) {
	u := c.contentURL(basePath, namespace, name)
	var ref TaskRef
	if err := c.doJSON(ctx, http.MethodDelete, u, nil, &ref); err != nil {
		return nil, fmt.Errorf("delete %s.%s: %w", namespace, name, err)
	}
	return &ref, nil
}

// DownloadArtifact streams the tarball at downloadURL.
// Caller is responsible for closing the returned ReadCloser.
func (c *Client) DownloadArtifact(ctx context.Context, downloadURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download artifact: %w", err)
	}
	return resp.Body, nil
}

func jsonDecode(r io.Reader, out interface{}) error {
	return json.NewDecoder(r).Decode(out)
}
