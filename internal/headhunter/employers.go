package headhunter

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-search/internal/types"
)

// maxManagerFetches bounds concurrent per-manager vacancy listings.
const maxManagerFetches = 4

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	err := c.getJSON(ctx, request{
		endpoint: "me",
		path:     "/me",
		auth:     true,
		timeout:  c.opts.LookupTimeout,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Managers lists the employer's managers.
func (c *Client) Managers(ctx context.Context, employerID string) ([]types.Manager, error) {
	var resp struct {
		Items []types.Manager `json:"items"`
	}
	err := c.getJSON(ctx, request{
		endpoint: "managers",
		path:     fmt.Sprintf("/employers/%s/managers", url.PathEscape(employerID)),
		auth:     true,
		timeout:  c.opts.LookupTimeout,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Items == nil {
		resp.Items = []types.Manager{}
	}
	return resp.Items, nil
}

// ManagerVacancies lists the first page (up to 50) of one manager's active vacancies.
func (c *Client) ManagerVacancies(ctx context.Context, employerID, managerID string) ([]types.Vacancy, error) {
	params := url.Values{}
	params.Set("page", "0")
	params.Set("per_page", "50")
	params.Set("manager_id", managerID)

	var resp struct {
		Items []types.Vacancy `json:"items"`
	}
	err := c.getJSON(ctx, request{
		endpoint: "active_vacancies",
		path:     fmt.Sprintf("/employers/%s/vacancies/active", url.PathEscape(employerID)),
		params:   params,
		auth:     true,
		timeout:  c.opts.LookupTimeout,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ActiveVacancies collects the active vacancies of every manager of the employer.
// Managers are queried concurrently; the result keeps manager order. A failing
// manager is logged and skipped. Only a failure to list managers is returned.
func (c *Client) ActiveVacancies(ctx context.Context, employerID string) ([]types.Vacancy, error) {
	managers, err := c.Managers(ctx, employerID)
	if err != nil {
		return nil, err
	}

	perManager := make([][]types.Vacancy, len(managers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxManagerFetches)
	for i, m := range managers {
		g.Go(func() error {
			items, err := c.ManagerVacancies(gctx, employerID, m.ID)
			if err != nil {
				c.logger.Warn("failed to list manager vacancies",
					zap.String("manager_id", m.ID),
					zap.Error(err))
				return nil
			}
			perManager[i] = items
			return nil
		})
	}
	_ = g.Wait()

	all := []types.Vacancy{}
	for _, items := range perManager {
		all = append(all, items...)
	}
	return all, nil
}
