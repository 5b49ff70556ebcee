package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/talent-search/internal/search"
)

func TestCLIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCLIReporter(&buf, false)

	r.Report(search.Status{Stage: search.StageAttempt, Message: "Running primary search", Query: "(Go)"})
	assert.Empty(t, buf.String(), "attempts are quiet unless verbose")

	r.Report(search.Status{Stage: search.StageFallback, Message: "Retrying", Query: "(Go)"})
	r.Report(search.Status{Stage: search.StageFailure, Message: "Access token is not configured"})
	assert.Contains(t, buf.String(), "↺ Retrying")
	assert.Contains(t, buf.String(), "❌ Access token is not configured")
}

func TestCLIReporter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	r := NewCLIReporter(&buf, true)
	r.Report(search.Status{Stage: search.StageAttempt, Message: "Running primary search", Query: "(Go) AND (gRPC)"})
	assert.Contains(t, buf.String(), "(Go) AND (gRPC)")
}
