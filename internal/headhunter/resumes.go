package headhunter

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/types"
)

// SearchResumes calls GET /resumes with the given query parameters.
// The caller supplies text, page, per_page and any filters already encoded.
func (c *Client) SearchResumes(ctx context.Context, params url.Values) (*types.ResumePage, error) {
	c.logger.Debug("searching resumes", zap.String("url", c.RequestURL("/resumes", params)))

	var page types.ResumePage
	err := c.getJSON(ctx, request{
		endpoint: "resumes",
		path:     "/resumes",
		params:   params,
		auth:     true,
		timeout:  c.opts.SearchTimeout,
	}, &page)
	if err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []types.Resume{}
	}
	return &page, nil
}
