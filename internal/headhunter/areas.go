package headhunter

import (
	"context"

	"github.com/jonathan/talent-search/internal/types"
)

// Areas returns the full region tree. The endpoint is public.
func (c *Client) Areas(ctx context.Context) ([]types.AreaNode, error) {
	var nodes []types.AreaNode
	err := c.getJSON(ctx, request{
		endpoint: "areas",
		path:     "/areas",
		timeout:  c.opts.LookupTimeout,
	}, &nodes)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}
