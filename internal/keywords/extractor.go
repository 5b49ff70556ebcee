package keywords

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/llm"
	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/metrics"
	"github.com/jonathan/talent-search/internal/prompts"
	"github.com/jonathan/talent-search/internal/schemas"
	"github.com/jonathan/talent-search/internal/types"
)

const promptFile = "keywords.json"

// Source produces keyword sets for a vacancy.
type Source interface {
	Extract(ctx context.Context, name, descriptionHTML string) (*types.KeywordSet, error)
	ExtractLegacy(ctx context.Context, name, descriptionHTML string) (*types.LegacyKeywordSet, error)
}

// Extractor asks an LLM for the keywords of a vacancy.
type Extractor struct {
	client llm.Client
	tier   llm.ModelTier
	logger *zap.Logger
}

// NewExtractor creates an extractor backed by client.
func NewExtractor(client llm.Client, log *zap.Logger) *Extractor {
	return &Extractor{
		client: client,
		tier:   llm.TierLite,
		logger: logger.OrNop(log),
	}
}

// Extract returns the {must_have, optional} keywords of a vacancy.
func (e *Extractor) Extract(ctx context.Context, name, descriptionHTML string) (*types.KeywordSet, error) {
	raw, err := e.generate(ctx, "extract-keywords", name, descriptionHTML)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateKeywordSet(raw); err != nil {
		e.recordMalformed(raw, err)
		return nil, &ParseError{Message: "response does not match keyword schema", Cause: err}
	}

	var kw types.KeywordSet
	if err := json.Unmarshal([]byte(raw), &kw); err != nil {
		e.recordMalformed(raw, err)
		return nil, &ParseError{Message: "failed to decode keywords", Cause: err}
	}

	metrics.KeywordExtractionsTotal.WithLabelValues(string(e.client.Provider()), "success").Inc()
	kw = kw.Normalize()
	return &kw, nil
}

// ExtractLegacy returns the four-role keywords of a vacancy.
func (e *Extractor) ExtractLegacy(ctx context.Context, name, descriptionHTML string) (*types.LegacyKeywordSet, error) {
	raw, err := e.generate(ctx, "extract-keywords-legacy", name, descriptionHTML)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateLegacyKeywordSet(raw); err != nil {
		e.recordMalformed(raw, err)
		return nil, &ParseError{Message: "response does not match legacy keyword schema", Cause: err}
	}

	var kw types.LegacyKeywordSet
	if err := json.Unmarshal([]byte(raw), &kw); err != nil {
		e.recordMalformed(raw, err)
		return nil, &ParseError{Message: "failed to decode keywords", Cause: err}
	}

	metrics.KeywordExtractionsTotal.WithLabelValues(string(e.client.Provider()), "success").Inc()
	kw = kw.Normalize()
	return &kw, nil
}

func (e *Extractor) generate(ctx context.Context, promptKey, name, descriptionHTML string) (string, error) {
	prompt, err := prompts.Render(promptFile, promptKey, map[string]string{
		"VacancyName": name,
		"VacancyText": DescriptionText(descriptionHTML),
	})
	if err != nil {
		return "", &APICallError{Message: "failed to load prompt", Cause: err}
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		metrics.KeywordExtractionsTotal.WithLabelValues(string(e.client.Provider()), "api_error").Inc()
		return "", &APICallError{Message: "failed to generate keywords", Cause: err}
	}
	return raw, nil
}

func (e *Extractor) recordMalformed(raw string, err error) {
	metrics.KeywordExtractionsTotal.WithLabelValues(string(e.client.Provider()), "malformed").Inc()
	e.logger.Warn("malformed keyword response",
		zap.String("model", e.client.GetModel(e.tier)),
		zap.Int("response_bytes", len(raw)),
		zap.Error(err))
}
