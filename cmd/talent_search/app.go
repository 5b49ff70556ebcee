package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/areas"
	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/db"
	"github.com/jonathan/talent-search/internal/headhunter"
	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/llm"
	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/types"
)

// keywordCacheTTL bounds how long a persisted extraction is reused.
const keywordCacheTTL = 30 * 24 * time.Hour

// app holds the collaborators shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	hh       *headhunter.Client
	searcher *search.Searcher
	database *db.DB
	closers  []func()
}

// newApp loads the configuration and builds the API client and searcher.
// reporter may be nil.
func newApp(reporter search.Reporter) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	hh := headhunter.New(&headhunter.Options{
		BaseURL:       cfg.APIBaseURL,
		UserAgent:     cfg.UserAgent,
		SearchTimeout: cfg.SearchTimeout.Std(),
		LookupTimeout: cfg.LookupTimeout.Std(),
	}, tokenSource(cfg), log)

	searcher, err := search.New(search.Config{
		API:      hh,
		Token:    hh,
		Reporter: reporter,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		hh:       hh,
		searcher: searcher,
		closers:  []func(){func() { _ = log.Sync() }},
	}, nil
}

// tokenSource reads ACCESS_TOKEN on every call unless the token only comes
// from the config file.
func tokenSource(cfg *config.Config) headhunter.TokenSource {
	if os.Getenv(config.EnvAccessToken) == "" && cfg.AccessToken != "" {
		return headhunter.StaticToken(cfg.AccessToken)
	}
	return headhunter.EnvToken(config.EnvAccessToken)
}

// areaDirectory returns the lazily loaded region dictionary.
func (a *app) areaDirectory() *areas.Directory {
	return areas.NewDirectory(a.hh, a.cfg.CountryAreaID, a.log)
}

// keywordMemo builds the LLM extractor behind a memo. Without an API key the
// memo still answers, with llm.ErrMissingAPIKey on every miss. DATABASE_URL
// adds the persistent keyword cache.
func (a *app) keywordMemo(ctx context.Context) (*keywords.Memo, error) {
	var source keywords.Source
	client, err := a.llmClient(ctx)
	switch {
	case err == nil:
		a.closers = append(a.closers, func() { _ = client.Close() })
		source = keywords.NewExtractor(client, a.log)
	case errors.Is(err, llm.ErrMissingAPIKey):
		a.log.Warn("keyword extraction disabled", zap.String("provider", a.cfg.LLMProvider), zap.Error(err))
		source = unavailableSource{err: err}
	default:
		return nil, err
	}

	var store keywords.Store
	if a.cfg.DatabaseURL != "" {
		cache, err := a.keywordCache(ctx)
		if err != nil {
			return nil, err
		}
		store = cache
	}

	return keywords.NewMemo(source, store, a.log), nil
}

// errNoDatabase is returned by commands that need DATABASE_URL.
var errNoDatabase = errors.New("DATABASE_URL is not set")

// keywordCache connects to the database on first use and returns its keyword cache.
func (a *app) keywordCache(ctx context.Context) (*db.KeywordCache, error) {
	if a.database == nil {
		if a.cfg.DatabaseURL == "" {
			return nil, errNoDatabase
		}
		database, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		if err := database.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.database = database
	}
	return a.database.KeywordCache(keywordCacheTTL), nil
}

func (a *app) llmClient(ctx context.Context) (llm.Client, error) {
	provider, err := llm.ParseProvider(a.cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	llmCfg := llm.ConfigFor(provider)
	if provider == llm.ProviderOpenAI {
		llmCfg.BaseURL = a.cfg.OpenAIBaseURL
	}
	return llm.NewClient(ctx, llmCfg, a.cfg.LLMAPIKey())
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// fetchVacancy loads a vacancy and its keyword key.
func (a *app) fetchVacancy(ctx context.Context, id string) (*types.Vacancy, keywords.Key, error) {
	v, err := a.hh.Vacancy(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load vacancy %s: %w", id, err)
	}
	return v, keywords.VacancyKey(v.ID), nil
}

// unavailableSource stands in for the extractor when no LLM key is configured.
type unavailableSource struct {
	err error
}

func (u unavailableSource) Extract(context.Context, string, string) (*types.KeywordSet, error) {
	return nil, u.err
}

func (u unavailableSource) ExtractLegacy(context.Context, string, string) (*types.LegacyKeywordSet, error) {
	return nil, u.err
}
