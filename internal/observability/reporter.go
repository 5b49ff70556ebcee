package observability

import (
	"fmt"
	"io"

	"github.com/jonathan/talent-search/internal/search"
)

// CLIReporter prints search narration, one line per status.
type CLIReporter struct {
	out     io.Writer
	verbose bool
}

// NewCLIReporter creates a reporter. Attempt statuses are printed only when verbose.
func NewCLIReporter(out io.Writer, verbose bool) *CLIReporter {
	return &CLIReporter{out: out, verbose: verbose}
}

// Report implements search.Reporter.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (r *CLIReporter) Report(s search.Status) {
	switch s.Stage {
	case search.StageAttempt:
		if r.verbose {
			fmt.Fprintf(r.out, "  → %s\n    %s\n", s.Message, s.Query)
		}
	case search.StageFallback:
		fmt.Fprintf(r.out, "↺ %s\n    %s\n", s.Message, s.Query)
	case search.StageSuccess:
		fmt.Fprintf(r.out, "✅ %s\n", s.Message)
	case search.StageEmpty:
		fmt.Fprintf(r.out, "∅ %s\n", s.Message)
	case search.StageWarning:
		fmt.Fprintf(r.out, "⚠ %s\n", s.Message)
	case search.StageFailure:
		fmt.Fprintf(r.out, "❌ %s\n", s.Message)
	default:
		fmt.Fprintf(r.out, "%s\n", s.Message)
	}
}
