package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/areas"
	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/observability"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

var (
	queryKeywords keywordFlags
	queryFilters  filterFlags
	queryParams   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Compile keywords into a search query without searching",
	Example: `  talent_search query --must "Go,Kafka" --optional "Docker" --title "Backend developer"
  talent_search query --legacy --mode strict --must Python --tech Airflow,Spark --exclude 1C --params`,
	RunE: runQuery,
}

func init() {
	queryKeywords.register(queryCmd)
	queryFilters.register(queryCmd)
	queryCmd.Flags().BoolVar(&queryParams, "params", false, "Also print the encoded request parameters")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	if noCriteria(&queryKeywords, &queryFilters) {
		return errors.New("provide at least one of --must, --optional, --tech, --domain, --title, --bank")
	}
	filters, err := queryFilters.filters(types.DefaultPerPage)
	if err != nil {
		return err
	}
	// Offline: names resolve against the built-in area list only.
	if filters.Area, err = areas.ResolveIDs(areas.Fallback(), filters.Area); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	text, err := compileQuery(queryKeywords, filters)
	if err != nil {
		return err
	}

	if queryKeywords.legacy {
		_, _ = fmt.Fprintln(out, text)
	} else {
		observability.NewPrinter(out).PrintQueryPlan(query.PlanFor(queryKeywords.set(), filters.Constraints()))
	}

	if queryParams {
		cfg := config.Defaults()
		_, _ = fmt.Fprintf(out, "%s/resumes?%s\n", cfg.APIBaseURL, filters.Params(0, text).Encode())
	}
	return nil
}

// compileQuery returns the query text the first search attempt would send.
func compileQuery(k keywordFlags, filters types.SearchFilters) (string, error) {
	c := filters.Constraints()
	if !k.legacy {
		return query.PlanFor(k.set(), c).Ideal, nil
	}
	mode, err := query.ParseMode(k.mode)
	if err != nil {
		return "", err
	}
	return query.BuildLegacy(k.legacySet(), mode, c), nil
}
