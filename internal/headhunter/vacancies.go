package headhunter

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/types"
)

// Vacancy fetches a single vacancy with its HTML description.
// The endpoint is public; transient failures are retried per Options.VacancyRetry.
func (c *Client) Vacancy(ctx context.Context, id string) (*types.Vacancy, error) {
	var vacancy types.Vacancy
	err := retry(ctx, c.opts.VacancyRetry, func(attempt int) error {
		var v types.Vacancy
		err := c.getJSON(ctx, request{
			endpoint: "vacancy",
			path:     fmt.Sprintf("/vacancies/%s", url.PathEscape(id)),
			timeout:  c.opts.LookupTimeout,
		}, &v)
		if err != nil {
			c.logger.Warn("vacancy fetch failed",
				zap.String("vacancy_id", id),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		vacancy = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vacancy, nil
}
