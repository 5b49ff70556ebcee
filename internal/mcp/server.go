// Package mcp exposes query compilation and résumé search as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "talent-search"
	// ServerVersion is the current server version
	ServerVersion = "1.5.0"
)

// Searcher runs résumé searches.
type Searcher interface {
	Run(ctx context.Context, kw types.KeywordSet, f types.SearchFilters, page int, extra search.Reporter) (*search.Outcome, error)
}

// VacancySource fetches one vacancy.
type VacancySource interface {
	Vacancy(ctx context.Context, id string) (*types.Vacancy, error)
}

// KeywordSource returns memoized keyword sets.
type KeywordSource interface {
	Keywords(ctx context.Context, key keywords.Key, name, descriptionHTML string) (*types.KeywordSet, error)
	LegacyKeywords(ctx context.Context, key keywords.Key, name, descriptionHTML string) (*types.LegacyKeywordSet, error)
}

// Deps are the collaborators behind the tools. Vacancies and Keywords are
// optional; extract_keywords is registered only when both are set.
type Deps struct {
	Searcher  Searcher
	Vacancies VacancySource
	Keywords  KeywordSource
	Logger    *zap.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	searcher  Searcher
	vacancies VacancySource
	keywords  KeywordSource
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(deps Deps) (*Server, error) {
	if deps.Searcher == nil {
		return nil, errors.New("mcp: searcher is required")
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		searcher:  deps.Searcher,
		vacancies: deps.Vacancies,
		keywords:  deps.Keywords,
		logger:    logger.OrNop(deps.Logger),
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(_ context.Context) error {
	s.logger.Info("MCP server listening on stdio", zap.Strings("tools", s.ToolNames()))
	return server.ServeStdio(s.mcp)
}

// ToolNames lists the registered tools in registration order.
func (s *Server) ToolNames() []string {
	names := []string{buildQueryToolName, searchResumesToolName}
	if s.extractionEnabled() {
		names = append(names, extractKeywordsToolName)
	}
	return names
}

func (s *Server) extractionEnabled() bool {
	return s.vacancies != nil && s.keywords != nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(buildQueryTool(), s.handleBuildQuery)
	s.mcp.AddTool(searchResumesTool(), s.handleSearchResumes)
	if s.extractionEnabled() {
		s.mcp.AddTool(extractKeywordsTool(), s.handleExtractKeywords)
	}
}
