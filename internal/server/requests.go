package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/types"
)

// maxBodyBytes bounds request bodies; vacancy descriptions are the largest payload.
const maxBodyBytes = 1 << 20

var validate = validator.New()

// QueryRequest compiles keywords without searching. Exactly one of
// Keywords and LegacyKeywords must be set.
type QueryRequest struct {
	Keywords       *types.KeywordSet       `json:"keywords"`
	LegacyKeywords *types.LegacyKeywordSet `json:"legacy_keywords"`
	Mode           string                  `json:"mode"`
	Filters        types.SearchFilters     `json:"filters"`
}

// QueryResponse is the compiled query and the API parameters it would be sent with.
type QueryResponse struct {
	Plan   *query.Plan `json:"plan,omitempty"`
	Mode   query.Mode  `json:"mode,omitempty"`
	Query  string      `json:"query"`
	Params url.Values  `json:"params"`
}

// SearchRequest runs the two-stage search.
type SearchRequest struct {
	Keywords types.KeywordSet    `json:"keywords"`
	Filters  types.SearchFilters `json:"filters"`
	Page     int                 `json:"page" validate:"gte=0,lte=199"`
}

// LegacySearchRequest runs the single-strategy search over the four-role structure.
type LegacySearchRequest struct {
	Keywords types.LegacyKeywordSet `json:"keywords"`
	Mode     string                 `json:"mode"`
	Filters  types.SearchFilters    `json:"filters"`
	Page     int                    `json:"page" validate:"gte=0,lte=199"`
}

// KeywordsRequest extracts keywords from free text.
type KeywordsRequest struct {
	Name        string `json:"name" validate:"required,max=500"`
	Description string `json:"description" validate:"required"`
	Legacy      bool   `json:"legacy"`
}

// Pagination is the caller's view of the page controls.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

func newPagination(found, page, perPage int) Pagination {
	total := types.TotalPages(found, perPage)
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalPages: total,
		HasPrev:    types.HasPrev(page),
		HasNext:    types.HasNext(page, total),
	}
}

// SearchResponse is the outcome of POST /search and the result event of the stream.
type SearchResponse struct {
	RequestID string `json:"request_id"`
	*search.Outcome
	Pagination Pagination      `json:"pagination"`
	Statuses   []search.Status `json:"statuses,omitempty"`
}

// LegacySearchResponse is the outcome of POST /search/legacy.
type LegacySearchResponse struct {
	RequestID  string                `json:"request_id"`
	Mode       query.Mode            `json:"mode"`
	Query      string                `json:"query"`
	Result     *types.ResultEnvelope `json:"result"`
	Pagination Pagination            `json:"pagination"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string                `json:"error"`
	Code      string                `json:"code,omitempty"`
	RequestID string                `json:"request_id,omitempty"`
	Result    *types.ResultEnvelope `json:"result,omitempty"`
	Statuses  []search.Status       `json:"statuses,omitempty"`
}

// AreasResponse lists the region dictionary.
type AreasResponse struct {
	Areas        []types.Area `json:"areas"`
	DefaultIndex int          `json:"default_index"`
	Fallback     bool         `json:"fallback"`
}

// VacanciesResponse splits the employer's active vacancies by manager.
type VacanciesResponse struct {
	UserID string          `json:"user_id"`
	Mine   []types.Vacancy `json:"mine"`
	Others []types.Vacancy `json:"others"`
}

// VacancyResponse is one vacancy with its description as plain text.
type VacancyResponse struct {
	Vacancy         *types.Vacancy `json:"vacancy"`
	DescriptionText string         `json:"description_text"`
}

// KeywordsResponse carries the extracted keywords and a preview of the query they compile to.
type KeywordsResponse struct {
	VacancyID      string                  `json:"vacancy_id,omitempty"`
	Name           string                  `json:"name"`
	Keywords       *types.KeywordSet       `json:"keywords,omitempty"`
	LegacyKeywords *types.LegacyKeywordSet `json:"legacy_keywords,omitempty"`
	Plan           *query.Plan             `json:"plan,omitempty"`
	Query          string                  `json:"query,omitempty"`
}

// decodeRequest reads a JSON body into dst and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is required"}
		}
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	return validateRequest(dst)
}

// validateRequest runs the struct tags and reports the first failing field.
func validateRequest(v any) error {
	err := validate.Struct(v)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := "failed on " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return &ErrValidation{Field: fe.Namespace(), Message: msg}
	}
	return err
}
