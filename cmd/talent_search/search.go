package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/areas"
	"github.com/jonathan/talent-search/internal/observability"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

var (
	searchKeywords keywordFlags
	searchFilters  filterFlags
	searchPage     int
	searchVacancy  string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search résumés",
	Long: `Search résumés by keywords, or by the keywords extracted from a vacancy (--vacancy).
The first page falls back to the relaxed query when the ideal query finds nothing.`,
	Example: `  talent_search search --must Go,Kafka --optional Docker,Kubernetes --area 160
  talent_search search --vacancy 123456 --title "Backend developer" --bank
  talent_search search --legacy --mode broad --must Python --tech Airflow --exclude 1C`,
	RunE: runSearch,
}

func init() {
	searchKeywords.register(searchCmd)
	searchFilters.register(searchCmd)
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "Zero-based result page")
	searchCmd.Flags().StringVar(&searchVacancy, "vacancy", "", "Extract keywords from this vacancy id")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the raw outcome as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if searchPage < 0 {
		return fmt.Errorf("--page must be >= 0, got %d", searchPage)
	}
	if searchVacancy == "" && noCriteria(&searchKeywords, &searchFilters) {
		return errors.New("provide keywords (--must, --optional, ...), --title, --bank or --vacancy")
	}

	out := cmd.OutOrStdout()
	a, err := newApp(observability.NewCLIReporter(out, verbose && !searchJSON))
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	filters, err := searchFilters.filters(a.cfg.PerPage)
	if err != nil {
		return err
	}
	if filters.Area, err = resolveAreas(ctx, a, filters.Area); err != nil {
		return err
	}

	printer := observability.NewPrinter(out)

	if searchKeywords.legacy {
		return runLegacySearch(ctx, a, printer, out, filters)
	}

	kw := searchKeywords.set()
	if searchVacancy != "" {
		kw, err = vacancyKeywords(ctx, a, searchVacancy)
		if err != nil {
			return err
		}
		if !searchJSON {
			printer.PrintKeywords(&kw)
		}
	}

	outcome, err := a.searcher.Run(ctx, kw, filters, searchPage, nil)
	if err != nil {
		return err
	}
	if searchJSON {
		return writeJSON(out, outcome)
	}
	printer.PrintQueryPlan(outcome.Plan)
	printer.PrintResults(outcome.Envelope, searchPage, filters.EffectivePerPage())
	return nil
}

func runLegacySearch(ctx context.Context, a *app, printer *observability.Printer, out io.Writer, filters types.SearchFilters) error {
	mode, err := query.ParseMode(searchKeywords.mode)
	if err != nil {
		return err
	}

	kw := searchKeywords.legacySet()
	if searchVacancy != "" {
		kw, err = vacancyLegacyKeywords(ctx, a, searchVacancy)
		if err != nil {
			return err
		}
		if !searchJSON {
			printer.PrintLegacyKeywords(&kw)
		}
	}

	env, err := a.searcher.SearchLegacy(ctx, kw, mode, filters, searchPage)
	if err != nil {
		return err
	}
	if searchJSON {
		return writeJSON(out, env)
	}
	printer.PrintResults(env, searchPage, filters.EffectivePerPage())
	return nil
}

// resolveAreas turns area names into ids. The region dictionary is only
// loaded when some value is not already an id.
func resolveAreas(ctx context.Context, a *app, values []string) ([]string, error) {
	if !slices.ContainsFunc(values, isAreaName) {
		return values, nil
	}
	// Get logs the failure and returns the fallback list.
	list, _ := a.areaDirectory().Get(ctx)
	return areas.ResolveIDs(list, values)
}

func isAreaName(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && strings.Trim(v, "0123456789") != ""
}

func vacancyKeywords(ctx context.Context, a *app, id string) (types.KeywordSet, error) {
	memo, err := a.keywordMemo(ctx)
	if err != nil {
		return types.KeywordSet{}, err
	}
	v, key, err := a.fetchVacancy(ctx, id)
	if err != nil {
		return types.KeywordSet{}, err
	}
	kw, err := memo.Keywords(ctx, key, v.Name, v.Description)
	if err != nil {
		return types.KeywordSet{}, fmt.Errorf("failed to extract keywords: %w", err)
	}
	return *kw, nil
}

func vacancyLegacyKeywords(ctx context.Context, a *app, id string) (types.LegacyKeywordSet, error) {
	memo, err := a.keywordMemo(ctx)
	if err != nil {
		return types.LegacyKeywordSet{}, err
	}
	v, key, err := a.fetchVacancy(ctx, id)
	if err != nil {
		return types.LegacyKeywordSet{}, err
	}
	kw, err := memo.LegacyKeywords(ctx, key, v.Name, v.Description)
	if err != nil {
		return types.LegacyKeywordSet{}, fmt.Errorf("failed to extract keywords: %w", err)
	}
	return *kw, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
