package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/observability"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

var (
	keywordsVacancy string
	keywordsName    string
	keywordsFile    string
	keywordsLegacy  bool
	keywordsJSON    bool
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Extract search keywords from a vacancy",
	Long: `Extract search keywords with the configured LLM, either from a vacancy id (--vacancy)
or from a name and an HTML/text description file (--name, --in). Results are memoized
and, with DATABASE_URL set, persisted.`,
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().StringVar(&keywordsVacancy, "vacancy", "", "Vacancy id")
	keywordsCmd.Flags().StringVar(&keywordsName, "name", "", "Vacancy name (with --in)")
	keywordsCmd.Flags().StringVarP(&keywordsFile, "in", "i", "", "Path to the vacancy description (HTML or text)")
	keywordsCmd.Flags().BoolVar(&keywordsLegacy, "legacy", false, "Extract the four-role legacy structure")
	keywordsCmd.Flags().BoolVar(&keywordsJSON, "json", false, "Print the keywords as JSON")
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	useVacancy := keywordsVacancy != ""
	useFile := keywordsFile != "" || keywordsName != ""
	if useVacancy && useFile {
		return errors.New("cannot use --vacancy with --name/--in")
	}
	if !useVacancy && (keywordsFile == "" || keywordsName == "") {
		return errors.New("must provide either --vacancy or both --name and --in")
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	memo, err := a.keywordMemo(ctx)
	if err != nil {
		return err
	}

	var (
		key         keywords.Key
		name        string
		description string
	)
	if useVacancy {
		v, k, err := a.fetchVacancy(ctx, keywordsVacancy)
		if err != nil {
			return err
		}
		key, name, description = k, v.Name, v.Description
	} else {
		content, err := os.ReadFile(keywordsFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		name, description = keywordsName, string(content)
		key = keywords.KeyFor("", name, description)
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	none := types.Constraints{}

	if keywordsLegacy {
		kw, err := memo.LegacyKeywords(ctx, key, name, description)
		if err != nil {
			return fmt.Errorf("failed to extract keywords: %w", err)
		}
		if keywordsJSON {
			return writeJSON(out, kw)
		}
		printer.PrintLegacyKeywords(kw)
		_, _ = fmt.Fprintln(out, query.BuildLegacy(*kw, query.DefaultMode, none))
		_, _ = fmt.Fprintln(out, searchHint(kw.ToKeywordSet()))
		return nil
	}

	kw, err := memo.Keywords(ctx, key, name, description)
	if err != nil {
		return fmt.Errorf("failed to extract keywords: %w", err)
	}
	if keywordsJSON {
		return writeJSON(out, kw)
	}
	printer.PrintKeywords(kw)
	printer.PrintQueryPlan(query.PlanFor(*kw, none))
	_, _ = fmt.Fprintln(out, searchHint(*kw))
	return nil
}

// searchHint returns a search command line for the keyword set, so that an
// extraction can be edited and rerun by hand.
func searchHint(kw types.KeywordSet) string {
	var b strings.Builder
	b.WriteString("talent_search search")
	if len(kw.MustHave) > 0 {
		fmt.Fprintf(&b, " --must %q", keywords.JoinList(kw.MustHave))
	}
	if len(kw.Optional) > 0 {
		fmt.Fprintf(&b, " --optional %q", keywords.JoinList(kw.Optional))
	}
	return b.String()
}
