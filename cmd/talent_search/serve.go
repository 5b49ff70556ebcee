package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes query compilation, résumé search, vacancies, areas and keyword extraction.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp(nil)
	if err != nil {
		return err
	}

	memo, err := a.keywordMemo(context.Background())
	if err != nil {
		a.close()
		return err
	}

	srv, err := server.New(server.Config{
		Port:       servePort,
		EmployerID: a.cfg.EmployerID,
	}, server.Deps{
		Vacancies: a.hh,
		Areas:     a.areaDirectory(),
		Keywords:  memo,
		Searcher:  a.searcher,
		Logger:    a.log,
		OnClose:   []func(){a.close},
	})
	if err != nil {
		a.close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
