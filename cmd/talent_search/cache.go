package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/keywords"
)

var (
	cacheListLimit int
	cacheListJSON  bool
	cacheOlderThan time.Duration
	cacheVacancy   string
	cacheName      string
	cacheFile      string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the persistent keyword cache",
	Long: `Inspect and maintain the keyword extractions persisted in PostgreSQL.
Every subcommand requires DATABASE_URL.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent cached extractions",
	RunE:  runCacheList,
}

var cachePurgeCmd = &cobra.Command{
	Use:     "purge",
	Short:   "Remove cached extractions older than --older-than",
	Example: `  talent_search cache purge --older-than 720h`,
	RunE:    runCachePurge,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Forget the extractions of one vacancy so the next run re-extracts",
	Example: `  talent_search cache delete --vacancy 123456
  talent_search cache delete --name "Go developer" --in job.html`,
	RunE: runCacheDelete,
}

func init() {
	cacheListCmd.Flags().IntVar(&cacheListLimit, "limit", 50, "Maximum number of entries")
	cacheListCmd.Flags().BoolVar(&cacheListJSON, "json", false, "Print the entries as JSON")

	cachePurgeCmd.Flags().DurationVar(&cacheOlderThan, "older-than", keywordCacheTTL, "Minimum age of the removed entries")

	cacheDeleteCmd.Flags().StringVar(&cacheVacancy, "vacancy", "", "Vacancy id")
	cacheDeleteCmd.Flags().StringVar(&cacheName, "name", "", "Vacancy name (with --in)")
	cacheDeleteCmd.Flags().StringVarP(&cacheFile, "in", "i", "", "Path to the vacancy description the entry was extracted from")

	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd, cacheDeleteCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	if cacheListLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", cacheListLimit)
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	cache, err := a.keywordCache(ctx)
	if err != nil {
		return err
	}
	entries, err := cache.List(ctx, cacheListLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cacheListJSON {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "Keyword cache is empty")
		return nil
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "%s  %s  %s\n", e.CreatedAt.Format(time.RFC3339), e.Key, e.Payload)
	}
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	if cacheOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %s", cacheOlderThan)
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	cache, err := a.keywordCache(ctx)
	if err != nil {
		return err
	}
	n, err := cache.Purge(ctx, cacheOlderThan)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached extraction(s) older than %s\n", n, cacheOlderThan)
	return nil
}

func runCacheDelete(cmd *cobra.Command, _ []string) error {
	key, err := cacheKey(cacheVacancy, cacheName, cacheFile)
	if err != nil {
		return err
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	cache, err := a.keywordCache(ctx)
	if err != nil {
		return err
	}
	memo := keywords.NewMemo(unavailableSource{err: errors.New("extraction is not used by cache delete")}, cache, a.log)
	if err := memo.Forget(ctx, key); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Forgot cached extractions for %s\n", key)
	return nil
}

// cacheKey derives the memo key the keywords command used for the same input.
func cacheKey(vacancy, name, file string) (keywords.Key, error) {
	if vacancy != "" {
		if name != "" || file != "" {
			return "", errors.New("cannot use --vacancy with --name/--in")
		}
		return keywords.VacancyKey(vacancy), nil
	}
	if name == "" || file == "" {
		return "", errors.New("must provide either --vacancy or both --name and --in")
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return keywords.KeyFor("", name, string(content)), nil
}
