package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Resume is an opaque résumé record as returned by the search endpoint.
// The raw JSON is preserved byte-for-byte; only the identifier is decoded eagerly.
type Resume struct {
	ID  string
	Raw json.RawMessage
}

// UnmarshalJSON keeps the raw record and extracts its id (string or number).
func (r *Resume) UnmarshalJSON(data []byte) error {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	id := ""
	if len(head.ID) > 0 && !bytes.Equal(head.ID, []byte("null")) {
		s, err := scalarString(head.ID)
		if err != nil {
			return fmt.Errorf("resume id: %w", err)
		}
		id = s
	}
	r.ID = id
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the record back out unchanged.
func (r Resume) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		if r.ID == "" {
			return []byte("{}"), nil
		}
		return json.Marshal(map[string]string{"id": r.ID})
	}
	return r.Raw, nil
}

// ResumeSummary holds the fields a result list displays.
type ResumeSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Age          *int   `json:"age"`
	AlternateURL string `json:"alternate_url"`
	Experience   []struct {
		Company  string `json:"company"`
		Position string `json:"position"`
	} `json:"experience"`
	Snippet struct {
		Requirement    string `json:"requirement"`
		Responsibility string `json:"responsibility"`
	} `json:"snippet"`
}

// Summary decodes the display fields of the record. Missing fields stay zero.
func (r Resume) Summary() ResumeSummary {
	var s ResumeSummary
	if len(r.Raw) > 0 {
		_ = json.Unmarshal(r.Raw, &s)
	}
	s.ID = r.ID
	return s
}

// LastJob returns the company and position of the first listed experience entry.
func (s ResumeSummary) LastJob() (company, position string) {
	if len(s.Experience) == 0 {
		return "", ""
	}
	return s.Experience[0].Company, s.Experience[0].Position
}

// SnippetHTML returns the requirement snippet, falling back to responsibility.
func (s ResumeSummary) SnippetHTML() string {
	if s.Snippet.Requirement != "" {
		return s.Snippet.Requirement
	}
	return s.Snippet.Responsibility
}

// ResumePage is one page of the search endpoint's response.
type ResumePage struct {
	Found   int      `json:"found"`
	Pages   int      `json:"pages"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	Items   []Resume `json:"items"`
}

// ScoredResume pairs a résumé with its score.
type ScoredResume struct {
	Data  Resume `json:"data"`
	Score int    `json:"score"`
}

// ResultEnvelope is the uniform result returned to callers regardless of
// which retrieval attempt produced it.
type ResultEnvelope struct {
	Found int            `json:"found"`
	Items []ScoredResume `json:"items"`
}

// EmptyEnvelope returns {found: 0, items: []}.
func EmptyEnvelope() *ResultEnvelope {
	return &ResultEnvelope{Found: 0, Items: []ScoredResume{}}
}

// TotalPages returns ceil(found / perPage). A non-positive perPage yields 0.
func TotalPages(found, perPage int) int {
	if found <= 0 || perPage <= 0 {
		return 0
	}
	return (found + perPage - 1) / perPage
}

// HasPrev reports whether a "previous" control should be enabled for page.
func HasPrev(page int) bool {
	return page > 0
}

// HasNext reports whether a "next" control should be enabled for page.
func HasNext(page, totalPages int) bool {
	return page < totalPages-1
}
