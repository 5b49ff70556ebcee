package keywords

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-search/internal/llm"
)

// fakeLLM returns a canned response and records the prompt.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Provider() llm.Provider         { return "fake" }
func (f *fakeLLM) Close() error                   { return nil }

func TestExtract_Success(t *testing.T) {
	client := &fakeLLM{response: `{"must_have": [" Python ", "SQL", "python"], "optional": ["Airflow", ""]}`}
	extractor := NewExtractor(client, nil)

	kw, err := extractor.Extract(context.Background(), "Data Engineer", "<p>Нужен <b>Python</b></p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, kw.MustHave)
	assert.Equal(t, []string{"Airflow"}, kw.Optional)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Название: Data Engineer")
	assert.Contains(t, client.prompts[0], "Нужен Python")
	assert.NotContains(t, client.prompts[0], "{{.")
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "sorry, I cannot help"},
		{"missing key", `{"must_have": ["Go"]}`},
		{"wrong type", `{"must_have": "Go", "optional": []}`},
		{"array", `["Go"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewExtractor(&fakeLLM{response: tt.response}, nil)
			_, err := extractor.Extract(context.Background(), "Go Developer", "")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedKeywords)

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestExtract_APIError(t *testing.T) {
	extractor := NewExtractor(&fakeLLM{err: errors.New("quota exceeded")}, nil)

	_, err := extractor.Extract(context.Background(), "Go Developer", "")
	require.Error(t, err)

	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.NotErrorIs(t, err, ErrMalformedKeywords)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExtractLegacy(t *testing.T) {
	client := &fakeLLM{response: `{"must_have": ["Java"], "technologies": ["Spring", "Kafka"], "domain": ["финтех"], "job_titles": ["Backend Developer"], "negative_keywords": ["Junior"]}`}
	extractor := NewExtractor(client, nil)

	kw, err := extractor.ExtractLegacy(context.Background(), "Java Developer", "<p>Java</p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"Java"}, kw.MustHave)
	assert.Equal(t, []string{"Spring", "Kafka"}, kw.Technologies)
	assert.Equal(t, []string{"финтех"}, kw.Domain)
	assert.Equal(t, []string{"Junior"}, kw.NegativeKeywords)
	assert.Contains(t, client.prompts[0], "negative_keywords")
}

func TestExtractLegacy_Malformed(t *testing.T) {
	extractor := NewExtractor(&fakeLLM{response: `{"must_have": [], "optional": []}`}, nil)
	_, err := extractor.ExtractLegacy(context.Background(), "Java Developer", "")
	assert.ErrorIs(t, err, ErrMalformedKeywords)
}
