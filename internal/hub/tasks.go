package hub

import (
	"context"
	"net/http"
)

// GetTask fetches a task by its UUID or full href.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	u := c.pulpURL("tasks", ParsePulpID(id))
	var t Task
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FeatureFlags fetches the hub feature flags.
func (c *Client) FeatureFlags(ctx context.Context) (*FeatureFlags, error) {
	var f FeatureFlags
	if err := c.doJSON(ctx, http.MethodGet, c.url(uiPrefix, "feature-flags"), nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
