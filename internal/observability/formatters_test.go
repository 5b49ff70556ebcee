package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

func TestPrintKeywords(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKeywords(&types.KeywordSet{MustHave: []string{"Python", "SQL"}, Optional: []string{"Airflow"}})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED KEYWORDS")
	assert.Contains(t, output, "• Python")
	assert.Contains(t, output, "• Airflow")
}

func TestPrintKeywords_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintKeywords(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_AlignsCyrillic(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("ОБЛАСТИ", "Алматы\n"+strings.Repeat("я", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintQueryPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQueryPlan(query.Plan{Ideal: "(Java) AND (Spring)", Relaxed: "(Java)"})
	assert.Contains(t, buf.String(), "(Java) AND (Spring)")
	assert.Contains(t, buf.String(), "Relaxed")

	buf.Reset()
	p.PrintQueryPlan(query.Plan{})
	assert.Contains(t, buf.String(), "No valid search criteria")
}

func TestPrintResults(t *testing.T) {
	var r types.Resume
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "abc",
		"title": "Data Engineer",
		"age": 31,
		"alternate_url": "https://hh.kz/resume/abc",
		"experience": [{"company": "Kaspi", "position": "DE"}],
		"snippet": {"requirement": "Знание <highlighttext>Python</highlighttext>"}
	}`), &r))

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintResults(&types.ResultEnvelope{Found: 45, Items: []types.ScoredResume{{Data: r, Score: 10}}}, 1, 20)
	output := buf.String()

	assert.Contains(t, output, "Found: 45")
	assert.Contains(t, output, "Page 2 of 3")
	assert.Contains(t, output, "21. Data Engineer, 31")
	assert.Contains(t, output, "DE, Kaspi")
	assert.Contains(t, output, "*Python*")
	assert.Contains(t, output, "prev: --page 0")
	assert.Contains(t, output, "next: --page 2")
}

func TestPrintResults_LastPageHasNoNext(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResults(&types.ResultEnvelope{Found: 40, Items: []types.ScoredResume{}}, 1, 20)
	assert.Contains(t, buf.String(), "prev:")
	assert.NotContains(t, buf.String(), "next:")
}

func TestPrintVacancies(t *testing.T) {
	var buf bytes.Buffer
	mine := []types.Vacancy{{ID: "1", Name: "Go Developer", Area: types.NamedRef{Name: "Алматы"}}}
	NewPrinter(&buf).PrintVacancies(mine, nil)

	assert.Contains(t, buf.String(), "My vacancies (1)")
	assert.Contains(t, buf.String(), "[1] Go Developer (Алматы)")
	assert.Contains(t, buf.String(), "Other company vacancies (0)")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "aaa bbb\nccc\n", wrap("aaa bbb ccc", 7))
}
