package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

// LegacyMainWeight is the weight of the single strategy SearchLegacy runs.
const LegacyMainWeight = 10

// Strategy is one weighted query of a multi-strategy search.
type Strategy struct {
	Name   string `json:"name"`
	Query  string `json:"query"`
	Weight int    `json:"weight"`
}

// StrategyResult holds the records one strategy returned.
type StrategyResult struct {
	Strategy Strategy
	Items    []types.Resume
}

// SearchLegacy compiles the four-role keywords for mode and runs them as a
// single weighted strategy through RunStrategies.
func (s *Searcher) SearchLegacy(ctx context.Context, kw types.LegacyKeywordSet, mode query.Mode, f types.SearchFilters, page int) (*types.ResultEnvelope, error) {
	if mode == "" {
		mode = query.DefaultMode
	}
	r := s.reporter
	r.Report(Status{Stage: StageStart, Message: fmt.Sprintf("Searching résumés in %s mode", mode)})

	if !s.hasToken() {
		return types.EmptyEnvelope(), s.fail(r, "Access token is not configured", ErrMissingCredential)
	}

	text := query.BuildLegacy(kw, mode, f.Constraints())
	if text == "" {
		return types.EmptyEnvelope(), s.fail(r, "No valid search criteria: every keyword was empty", ErrEmptyQuery)
	}

	return s.RunStrategies(ctx, []Strategy{{
		Name:   fmt.Sprintf("Main Search (%s)", mode),
		Query:  text,
		Weight: LegacyMainWeight,
	}}, f, page)
}

// RunStrategies runs the strategies one after another and merges their results.
// A failing strategy is reported as a warning and contributes nothing.
func (s *Searcher) RunStrategies(ctx context.Context, strategies []Strategy, f types.SearchFilters, page int) (*types.ResultEnvelope, error) {
	r := s.reporter
	if !s.hasToken() {
		return types.EmptyEnvelope(), s.fail(r, "Access token is not configured", ErrMissingCredential)
	}
	if page < 0 {
		page = 0
	}

	results := make([]StrategyResult, 0, len(strategies))
	for _, strategy := range strategies {
		if strategy.Query == "" {
			continue
		}
		resp, err := s.attempt(ctx, r, strategy.Name, strategy.Query, f, page)
		if err != nil {
			r.Report(Status{
				Stage:   StageWarning,
				Message: fmt.Sprintf("Strategy %q failed: %v", strategy.Name, err),
				Query:   strategy.Query,
				Err:     err,
			})
			continue
		}
		results = append(results, StrategyResult{Strategy: strategy, Items: resp.Items})
	}

	merged := Merge(results)
	if merged.Found == 0 {
		r.Report(Status{Stage: StageEmpty, Message: "No candidates found"})
	} else {
		r.Report(Status{Stage: StageSuccess, Message: fmt.Sprintf("Found %d résumés", merged.Found), Found: merged.Found})
	}
	return merged, nil
}

// Merge de-duplicates records by id, scoring each with the sum of the weights
// of the strategies that returned it. Items are ordered by score, highest
// first, ties keeping first-seen order; found is the number of unique records.
// Records without an id are never merged.
func Merge(results []StrategyResult) *types.ResultEnvelope {
	items := []types.ScoredResume{}
	index := make(map[string]int)

	for _, result := range results {
		for _, resume := range result.Items {
			if resume.ID != "" {
				if i, ok := index[resume.ID]; ok {
					items[i].Score += result.Strategy.Weight
					continue
				}
				index[resume.ID] = len(items)
			}
			items = append(items, types.ScoredResume{Data: resume, Score: result.Strategy.Weight})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return &types.ResultEnvelope{Found: len(items), Items: items}
}
