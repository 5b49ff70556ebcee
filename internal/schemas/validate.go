// Package schemas checks LLM keyword output against embedded JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed keywords.schema.json
	keywordsSchema string

	//go:embed keywords_legacy.schema.json
	legacyKeywordsSchema string
)

var (
	keywordSet       = compiled("keywords.schema.json", keywordsSchema)
	legacyKeywordSet = compiled("keywords_legacy.schema.json", legacyKeywordsSchema)
)

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is one violation, at a JSON path ("(root)" for the document itself).
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document does not match %s:", e.Schema)
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, " %s: %s;", fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// DocumentError means the document could not be read as JSON, or the schema
// itself failed to compile.
type DocumentError struct {
	Schema string
	Cause  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("cannot check document against %s: %v", e.Schema, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// ValidateKeywordSet checks a {must_have, optional} document.
func ValidateKeywordSet(doc string) error {
	return keywordSet.check(doc)
}

// ValidateLegacyKeywordSet checks a four-role keyword document.
func ValidateLegacyKeywordSet(doc string) error {
	return legacyKeywordSet.check(doc)
}

// schema compiles its source on first use.
type schema struct {
	name string
	load func() (*gojsonschema.Schema, error)
}

func compiled(name, source string) *schema {
	return &schema{
		name: name,
		load: sync.OnceValues(func() (*gojsonschema.Schema, error) {
			return gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		}),
	}
}

func (s *schema) check(doc string) error {
	sch, err := s.load()
	if err != nil {
		return &DocumentError{Schema: s.name, Cause: err}
	}

	result, err := sch.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &DocumentError{Schema: s.name, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: s.name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
