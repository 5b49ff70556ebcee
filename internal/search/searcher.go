// Package search runs résumé searches against the API: a primary attempt with
// the full query and, on an empty first page, one relaxed retry.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/metrics"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

// PlaceholderScore is attached to every result of the two-stage search.
// It carries no ranking signal.
const PlaceholderScore = 10

const (
	attemptPrimary  = "primary"
	attemptFallback = "fallback"
)

// ResumeAPI is the résumé-search endpoint.
type ResumeAPI interface {
	SearchResumes(ctx context.Context, params url.Values) (*types.ResumePage, error)
}

// TokenSource supplies the API credential; an empty string means none.
type TokenSource interface {
	Token() string
}

// requestFormatter is implemented by API clients that can render a readable request URL.
type requestFormatter interface {
	RequestURL(path string, params url.Values) string
}

// Config wires a Searcher.
type Config struct {
	API      ResumeAPI
	Token    TokenSource
	Reporter Reporter
	Logger   *zap.Logger
}

// Searcher runs searches. It holds no per-search state and is safe for concurrent use.
type Searcher struct {
	api      ResumeAPI
	token    TokenSource
	reporter Reporter
	logger   *zap.Logger
}

// New creates a Searcher. API is required.
func New(cfg Config) (*Searcher, error) {
	if cfg.API == nil {
		return nil, errors.New("search: API is required")
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	token := cfg.Token
	if token == nil {
		if ts, ok := cfg.API.(TokenSource); ok {
			token = ts
		}
	}
	return &Searcher{
		api:      cfg.API,
		token:    token,
		reporter: reporter,
		logger:   logger.OrNop(cfg.Logger),
	}, nil
}

// Outcome is the envelope plus how it was produced.
type Outcome struct {
	Envelope *types.ResultEnvelope `json:"result"`
	Plan     query.Plan            `json:"plan"`
	Query    string                `json:"query"`   // query of the attempt that produced Envelope
	Relaxed  bool                  `json:"relaxed"` // true when the fallback produced Envelope
	Attempts int                   `json:"attempts"`
}

// Search runs the two-stage search and returns the result envelope.
// On a configuration, empty-query or transport error it returns an empty
// envelope together with the error.
func (s *Searcher) Search(ctx context.Context, kw types.KeywordSet, f types.SearchFilters, page int) (*types.ResultEnvelope, error) {
	out, err := s.Run(ctx, kw, f, page, nil)
	return out.Envelope, err
}

// Run is Search with the full outcome. A non-nil reporter receives this
// invocation's narration in addition to the configured one.
func (s *Searcher) Run(ctx context.Context, kw types.KeywordSet, f types.SearchFilters, page int, extra Reporter) (*Outcome, error) {
	r := s.reporterWith(extra)
	if page < 0 {
		page = 0
	}
	out := &Outcome{Envelope: types.EmptyEnvelope()}

	r.Report(Status{Stage: StageStart, Message: fmt.Sprintf("Searching résumés (page %d)", page+1)})

	if !s.hasToken() {
		return out, s.fail(r, "Access token is not configured", ErrMissingCredential)
	}

	out.Plan = query.PlanFor(kw, f.Constraints())
	if out.Plan.Ideal == "" {
		return out, s.fail(r, "No valid search criteria: every keyword was empty", ErrEmptyQuery)
	}

	primary, err := s.attempt(ctx, r, attemptPrimary, out.Plan.Ideal, f, page)
	out.Attempts++
	if err != nil {
		return out, s.fail(r, "Search request failed", err)
	}
	out.Query = out.Plan.Ideal

	if primary.Found > 0 || page > 0 {
		out.Envelope = envelope(primary)
		r.Report(Status{
			Stage:   StageSuccess,
			Message: fmt.Sprintf("Found %d résumés", primary.Found),
			Query:   out.Query,
			Found:   primary.Found,
		})
		return out, nil
	}

	if out.Plan.Relaxed == "" {
		out.Envelope = envelope(primary)
		r.Report(Status{Stage: StageEmpty, Message: "No candidates found", Query: out.Query})
		return out, nil
	}

	metrics.SearchFallbacksTotal.Inc()
	r.Report(Status{
		Stage:   StageFallback,
		Message: "No exact matches, retrying with must-have terms only",
		Query:   out.Plan.Relaxed,
		Relaxed: true,
	})

	relaxed, err := s.attempt(ctx, r, attemptFallback, out.Plan.Relaxed, f, 0)
	out.Attempts++
	if err != nil {
		return out, s.fail(r, "Relaxed search request failed", err)
	}
	out.Query = out.Plan.Relaxed
	out.Relaxed = true
	out.Envelope = envelope(relaxed)

	if relaxed.Found == 0 {
		r.Report(Status{
			Stage:   StageEmpty,
			Message: "No candidates even under relaxed criteria",
			Query:   out.Query,
			Relaxed: true,
		})
		return out, nil
	}

	r.Report(Status{
		Stage:   StageSuccess,
		Message: fmt.Sprintf("Found %d résumés under relaxed criteria", relaxed.Found),
		Query:   out.Query,
		Found:   relaxed.Found,
		Relaxed: true,
	})
	return out, nil
}

// attempt issues one search call with the clean filters, page and text.
func (s *Searcher) attempt(ctx context.Context, r Reporter, name, text string, f types.SearchFilters, page int) (*types.ResumePage, error) {
	params := f.Params(page, text)

	if rf, ok := s.api.(requestFormatter); ok {
		s.logger.Debug("search attempt",
			zap.String("attempt", name),
			zap.String("url", rf.RequestURL("/resumes", params)))
	}
	r.Report(Status{Stage: StageAttempt, Message: fmt.Sprintf("Running %s search", name), Query: text})

	start := time.Now()
	result, err := s.api.SearchResumes(ctx, params)
	metrics.SearchAttemptDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchAttemptsTotal.WithLabelValues(name, "error").Inc()
		return nil, &AttemptError{Attempt: name, Query: text, Cause: err}
	}

	outcome := "found"
	if result.Found == 0 {
		outcome = "empty"
	}
	metrics.SearchAttemptsTotal.WithLabelValues(name, outcome).Inc()
	return result, nil
}

func (s *Searcher) fail(r Reporter, message string, err error) error {
	s.logger.Warn(message, zap.Error(err))
	r.Report(Status{Stage: StageFailure, Message: fmt.Sprintf("%s: %v", message, err), Err: err})
	return err
}

func (s *Searcher) hasToken() bool {
	return s.token != nil && s.token.Token() != ""
}

func (s *Searcher) reporterWith(extra Reporter) Reporter {
	if extra == nil {
		return s.reporter
	}
	return ReporterFunc(func(st Status) {
		s.reporter.Report(st)
		extra.Report(st)
	})
}

// envelope wraps every record with the placeholder score.
func envelope(page *types.ResumePage) *types.ResultEnvelope {
	items := make([]types.ScoredResume, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, types.ScoredResume{Data: item, Score: PlaceholderScore})
	}
	return &types.ResultEnvelope{Found: page.Found, Items: items}
}
