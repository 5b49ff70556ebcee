// Package main provides the talent_search CLI: résumé search, query
// compilation, keyword extraction and the HTTP and MCP servers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "talent_search",
	Short: "Search hh.ru résumés from vacancy keywords",
	Long: "talent_search compiles vacancy keywords into boolean search queries, runs them against the hh.ru " +
		"résumé search with a relaxed first-page fallback, and serves the same operations over HTTP and MCP.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every search attempt")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
