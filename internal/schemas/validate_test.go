package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKeywordSet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"must_have": ["Python"], "optional": ["Airflow", "dbt"]}`, false},
		{"empty lists", `{"must_have": [], "optional": []}`, false},
		{"extra keys tolerated", `{"must_have": [], "optional": [], "note": "x"}`, false},
		{"missing optional", `{"must_have": ["Python"]}`, true},
		{"wrong item type", `{"must_have": [1], "optional": []}`, true},
		{"not an object", `["Python"]`, true},
		{"list given as string", `{"must_have": "Python", "optional": []}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeywordSet(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateKeywordSet_FieldErrors(t *testing.T) {
	err := ValidateKeywordSet(`{"must_have": ["Go"]}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotEmpty(t, validationErr.Errors)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, err.Error(), "optional")
}

func TestValidateKeywordSet_NotJSON(t *testing.T) {
	err := ValidateKeywordSet(`not json`)
	require.Error(t, err)

	var docErr *DocumentError
	assert.ErrorAs(t, err, &docErr)
	assert.Equal(t, "keywords.schema.json", docErr.Schema)
}

func TestValidateLegacyKeywordSet(t *testing.T) {
	assert.NoError(t, ValidateLegacyKeywordSet(`{"must_have": ["Java"], "technologies": ["Spring"], "domain": ["финтех"], "negative_keywords": ["Junior"]}`))
	assert.NoError(t, ValidateLegacyKeywordSet(`{"must_have": [], "technologies": [], "domain": [], "job_titles": ["Backend"], "negative_keywords": []}`))
	assert.Error(t, ValidateLegacyKeywordSet(`{"must_have": [], "optional": []}`))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Schema: "keywords.schema.json",
		Errors: []FieldError{{Field: "(root)", Message: "optional is required"}, {Field: "must_have.0", Message: "Invalid type"}},
	}
	assert.Equal(t, "document does not match keywords.schema.json: (root): optional is required; must_have.0: Invalid type", err.Error())
}
