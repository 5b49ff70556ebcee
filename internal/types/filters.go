package types

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StringList is a list of strings that also accepts a single JSON string or number,
// matching the search endpoint's "one or more" parameters (e.g. area: "160" or ["159","160"]).
type StringList []string

// UnmarshalJSON accepts a string, a number, null or an array of strings/numbers.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(StringList, 0, len(raw))
		for _, item := range raw {
			s, err := scalarString(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*l = out
		return nil
	}

	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*l = StringList{s}
	return nil
}

func scalarString(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("expected string or number, got %s", string(data))
}

// Constraints are the user-entered hard constraints that shape the text query
// instead of being sent as structured API parameters.
type Constraints struct {
	JobTitle string `json:"user_job_title,omitempty"`
	BankOnly bool   `json:"bank_only,omitempty"`
}

// SearchFilters is the filter map a caller submits with a search.
// UserJobTitle and BankOnly are reserved pseudo-filters: they are read through
// Constraints and never encoded into the API parameters.
type SearchFilters struct {
	Area            StringList `json:"area,omitempty"`
	Employment      StringList `json:"employment,omitempty"`
	Experience      StringList `json:"experience,omitempty" validate:"dive,oneof=noExperience between1And3 between3And6 moreThan6"`
	EducationLevels StringList `json:"education_levels,omitempty" validate:"dive,oneof=higher bachelor master special_secondary secondary unfinished_higher candidate doctor"`
	Language        StringList `json:"language,omitempty"`
	JobSearchStatus StringList `json:"job_search_status,omitempty" validate:"dive,oneof=active_search looking_for_offers has_job_offer not_looking_for_job accepted_job_offer"`
	PerPage         int        `json:"per_page,omitempty" validate:"gte=0,lte=100"`

	UserJobTitle string `json:"user_job_title,omitempty"`
	BankOnly     bool   `json:"bank_only,omitempty"`
}

// DefaultPerPage is used when a filter set leaves per_page unset.
const DefaultPerPage = 20

// Validate validates the SearchFilters using the validator.
func (f *SearchFilters) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// Constraints extracts the reserved pseudo-filters.
func (f SearchFilters) Constraints() Constraints {
	return Constraints{
		JobTitle: strings.TrimSpace(f.UserJobTitle),
		BankOnly: f.BankOnly,
	}
}

// EffectivePerPage returns PerPage, or DefaultPerPage when unset.
func (f SearchFilters) EffectivePerPage() int {
	if f.PerPage <= 0 {
		return DefaultPerPage
	}
	return f.PerPage
}

// Params encodes the clean filter set plus page and text into API query parameters.
// Empty lists are omitted; blank list items are skipped.
func (f SearchFilters) Params(page int, text string) url.Values {
	params := url.Values{}
	addList(params, "area", f.Area)
	addList(params, "employment", f.Employment)
	addList(params, "experience", f.Experience)
	addList(params, "education_levels", f.EducationLevels)
	addList(params, "language", f.Language)
	addList(params, "job_search_status", f.JobSearchStatus)
	params.Set("per_page", strconv.Itoa(f.EffectivePerPage()))
	params.Set("page", strconv.Itoa(page))
	params.Set("text", text)
	return params
}

func addList(params url.Values, key string, values StringList) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			params.Add(key, v)
		}
	}
}
