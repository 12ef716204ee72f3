package progress

import "time"

// Level classifies a status line.
type Level string

const (
	LevelInfo       Level = "INFO"
	LevelWarn       Level = "WARN"
	LevelError      Level = "ERROR"
	LevelCommand    Level = "COMMAND"     // the exact encoder command line
	LevelToolOutput Level = "TOOL_OUTPUT" // raw encoder stdout dumped on failure
)

// Outcome codes carried by Result.Code.
const (
	CodeSuccess   = 0
	CodeCancelled = -1
	// CodeFailure is used when a failure has no meaningful exit code of its own.
	CodeFailure = 1
)

// Update conveys encode progress for a job.
type Update struct {
	JobID    string
	Percent  int // 0..100, non-decreasing within a job
	ETA      time.Duration
	ETAKnown bool
	Label    string // rendered ETA, e.g. "ETA: 01:30" or "ETA: ..."
}

// Log is a human-readable status line associated with a job.
type Log struct {
	JobID   string
	Level   Level
	Message string
}

// Alert is a user-facing error notice, shown more prominently than a Log.
type Alert struct {
	JobID   string
	Title   string
	Message string
}

// Result is emitted exactly once per job when it reaches a terminal state.
type Result struct {
	JobID      string
	Code       int // CodeSuccess, CodeCancelled, or a non-zero failure code
	OutputPath string
	OriginalMB float64 // 0 when unknown
	FinalMB    float64 // 0 unless the job succeeded
	Err        error   // nil on success
}

// Outcome names a terminal result.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

// Outcome maps Code to its terminal classification.
func (r Result) Outcome() Outcome {
	switch r.Code {
	case CodeSuccess:
		return OutcomeSuccess
	case CodeCancelled:
		return OutcomeCancelled
	default:
		return OutcomeFailure
	}
}

// ReductionPercent returns how much smaller the output is than the input.
// ok is false when either size is unknown.
func (r Result) ReductionPercent() (float64, bool) {
	if r.OriginalMB <= 0 || r.FinalMB <= 0 {
		return 0, false
	}
	return 100 - (r.FinalMB / r.OriginalMB * 100), true
}

// Reporter is implemented by UI or any observer interested in job events.
// Implementations must not block for long; the supervisor calls them inline.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Alert(a Alert)
	Result(r Result)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Alert(Alert)   {}
func (Nop) Result(Result) {}

// Multi fans events out to several reporters in order.
type Multi []Reporter

func (m Multi) Update(u Update) {
	for _, r := range m {
		r.Update(u)
	}
}

func (m Multi) Log(l Log) {
	for _, r := range m {
		r.Log(l)
	}
}

func (m Multi) Alert(a Alert) {
	for _, r := range m {
		r.Alert(a)
	}
}

func (m Multi) Result(res Result) {
	for _, r := range m {
		r.Result(res)
	}
}
