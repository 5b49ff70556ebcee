package search

// Stage names a point in a search invocation at which status is reported.
type Stage string

// Reported stages.
const (
	StageStart    Stage = "start"
	StageAttempt  Stage = "attempt"
	StageFallback Stage = "fallback"
	StageSuccess  Stage = "success"
	StageEmpty    Stage = "empty"
	StageFailure  Stage = "failure"
	StageWarning  Stage = "warning"
)

// Status is one piece of user-facing narration about a running search.
type Status struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Query   string `json:"query,omitempty"`
	Found   int    `json:"found,omitempty"`
	Relaxed bool   `json:"relaxed,omitempty"`
	Err     error  `json:"-"`
}

// Reporter receives status narration. Implementations must not block for long;
// they run on the searching goroutine.
type Reporter interface {
	Report(Status)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Status)

// Report implements Reporter.
func (f ReporterFunc) Report(s Status) {
	f(s)
}

type nopReporter struct{}

func (nopReporter) Report(Status) {}

// Recorder collects statuses in memory.
type Recorder struct {
	Statuses []Status
}

// Report implements Reporter.
func (r *Recorder) Report(s Status) {
	r.Statuses = append(r.Statuses, s)
}

// Stages lists the recorded stages in order.
func (r *Recorder) Stages() []Stage {
	out := make([]Stage, 0, len(r.Statuses))
	for _, s := range r.Statuses {
		out = append(out, s.Stage)
	}
	return out
}
