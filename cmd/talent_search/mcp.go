package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the search tools over MCP on stdio",
	Long:  `Start an MCP server on stdin/stdout exposing build_query, search_resumes and extract_keywords. Logs go to stderr.`,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
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

	srv, err := mcp.NewServer(mcp.Deps{
		Searcher:  a.searcher,
		Vacancies: a.hh,
		Keywords:  memo,
		Logger:    a.log,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return srv.Serve(ctx)
}
