package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleBuildQuery handles the build_query tool invocation
func (s *Server) handleBuildQuery(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	c := types.Constraints{
		JobTitle: strings.TrimSpace(getStringDefault(args, "user_job_title", "")),
		BankOnly: getBoolDefault(args, "bank_only", false),
	}

	if isLegacy(args) {
		mode, err := query.ParseMode(getStringDefault(args, "mode", ""))
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
				"param":   "mode",
				"reason":  err.Error(),
				"allowed": []string{string(query.ModeStrict), string(query.ModeMedium), string(query.ModeBroad)},
			})
		}
		kw := types.LegacyKeywordSet{
			MustHave:         getStrings(args, "must_have"),
			Technologies:     getStrings(args, "technologies"),
			Domain:           getStrings(args, "domain"),
			NegativeKeywords: getStrings(args, "negative_keywords"),
		}.Normalize()
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"mode":  mode,
			"query": query.BuildLegacy(kw, mode, c),
		})), nil
	}

	kw := types.KeywordSet{
		MustHave: getStrings(args, "must_have"),
		Optional: getStrings(args, "optional"),
	}.Normalize()
	plan := query.PlanFor(kw, c)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ideal":   plan.Ideal,
		"relaxed": plan.Relaxed,
	})), nil
}

// handleSearchResumes handles the search_resumes tool invocation
func (s *Server) handleSearchResumes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filters, err := getFilters(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid filters", map[string]interface{}{
			"param":  "filters",
			"reason": err.Error(),
		})
	}
	if title, ok := args["user_job_title"].(string); ok {
		filters.UserJobTitle = title
	}
	if bank, ok := args["bank_only"].(bool); ok {
		filters.BankOnly = bank
	}

	page := getIntDefault(args, "page", 0)
	if page < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "page must not be negative", map[string]interface{}{
			"param": "page",
			"value": page,
		})
	}

	kw := types.KeywordSet{
		MustHave: getStrings(args, "must_have"),
		Optional: getStrings(args, "optional"),
	}.Normalize()
	if kw.IsEmpty() && filters.Constraints() == (types.Constraints{}) {
		return nil, newMCPError(ErrorCodeInvalidParams, "provide must_have, optional, user_job_title or bank_only", nil)
	}

	recorder := &search.Recorder{}
	out, err := s.searcher.Run(ctx, kw, filters, page, recorder)
	if err != nil {
		s.logger.Info("search_resumes failed", zap.Error(err))
		return mcp.NewToolResultError(formatJSON(map[string]interface{}{
			"error":    err.Error(),
			"found":    0,
			"statuses": messages(recorder.Statuses),
		})), nil
	}

	perPage := filters.EffectivePerPage()
	totalPages := types.TotalPages(out.Envelope.Found, perPage)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":       out.Query,
		"relaxed":     out.Relaxed,
		"found":       out.Envelope.Found,
		"page":        page,
		"total_pages": totalPages,
		"has_next":    types.HasNext(page, totalPages),
		"items":       summaries(out.Envelope),
		"statuses":    messages(recorder.Statuses),
	})), nil
}

// handleExtractKeywords handles the extract_keywords tool invocation
func (s *Server) handleExtractKeywords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id := strings.TrimSpace(getStringDefault(args, "vacancy_id", ""))
	if id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "vacancy_id parameter is required", map[string]interface{}{
			"param":  "vacancy_id",
			"reason": "missing or empty",
		})
	}

	v, err := s.vacancies.Vacancy(ctx, id)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load vacancy", map[string]interface{}{
			"error": err.Error(),
		})
	}

	key := keywords.VacancyKey(v.ID)
	response := map[string]interface{}{"vacancy_id": v.ID, "name": v.Name}
	if getBoolDefault(args, "legacy", false) {
		kw, err := s.keywords.LegacyKeywords(ctx, key, v.Name, v.Description)
		if err != nil {
			return extractionFailed(err)
		}
		response["legacy_keywords"] = kw
	} else {
		kw, err := s.keywords.Keywords(ctx, key, v.Name, v.Description)
		if err != nil {
			return extractionFailed(err)
		}
		response["keywords"] = kw
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func extractionFailed(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, keywords.ErrMalformedKeywords) {
		return mcp.NewToolResultError("the model returned no usable keywords: " + err.Error()), nil
	}
	return nil, newMCPError(ErrorCodeInternalError, "keyword extraction failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// resumeSummary is the compact form of a résumé returned to the model.
type resumeSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Age          *int   `json:"age,omitempty"`
	Company      string `json:"last_company,omitempty"`
	Position     string `json:"last_position,omitempty"`
	AlternateURL string `json:"url,omitempty"`
}

func summaries(env *types.ResultEnvelope) []resumeSummary {
	out := make([]resumeSummary, 0, len(env.Items))
	for _, item := range env.Items {
		sum := item.Data.Summary()
		company, position := sum.LastJob()
		out = append(out, resumeSummary{
			ID:           sum.ID,
			Title:        sum.Title,
			Age:          sum.Age,
			Company:      company,
			Position:     position,
			AlternateURL: sum.AlternateURL,
		})
	}
	return out
}

func messages(statuses []search.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, st.Message)
	}
	return out
}

// isLegacy reports whether any four-role-only argument is present.
func isLegacy(args map[string]interface{}) bool {
	for _, key := range []string{"technologies", "domain", "negative_keywords"} {
		if _, ok := args[key]; ok {
			return true
		}
	}
	return false
}

// getFilters decodes the optional filters object through the same JSON
// shape the HTTP API accepts.
func getFilters(args map[string]interface{}) (types.SearchFilters, error) {
	var f types.SearchFilters
	raw, ok := args["filters"]
	if !ok || raw == nil {
		return f, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, err
	}
	return f, f.Validate()
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStrings extracts a string list; a single string is split on commas.
func getStrings(args map[string]interface{}, key string) []string {
	switch v := args[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return keywords.ParseList(v)
	default:
		return nil
	}
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
