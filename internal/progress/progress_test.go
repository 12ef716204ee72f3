package progress

import (
	"math"
	"testing"
)

func TestResult_Outcome(t *testing.T) {
	tests := []struct {
		code int
		want Outcome
	}{
		{code: CodeSuccess, want: OutcomeSuccess},
		{code: CodeCancelled, want: OutcomeCancelled},
		{code: CodeFailure, want: OutcomeFailure},
		{code: 187, want: OutcomeFailure},
	}
	for _, tt := range tests {
		if got := (Result{Code: tt.code}).Outcome(); got != tt.want {
			t.Errorf("Outcome(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestResult_ReductionPercent(t *testing.T) {
	r := Result{OriginalMB: 100, FinalMB: 30}
	got, ok := r.ReductionPercent()
	if !ok {
		t.Fatal("ReductionPercent() ok = false")
	}
	if math.Abs(got-70.0) > 1e-9 {
		t.Errorf("ReductionPercent() = %v, want 70.0", got)
	}

	if _, ok := (Result{OriginalMB: 0, FinalMB: 30}).ReductionPercent(); ok {
		t.Error("unknown original size should not report a reduction")
	}
}

type recorder struct {
	updates []Update
	logs    []Log
	alerts  []Alert
	results []Result
}

func (r *recorder) Update(u Update) { r.updates = append(r.updates, u) }
func (r *recorder) Log(l Log)       { r.logs = append(r.logs, l) }
func (r *recorder) Alert(a Alert)   { r.alerts = append(r.alerts, a) }
func (r *recorder) Result(x Result) { r.results = append(r.results, x) }

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, Nop{}, b}
	m.Update(Update{Percent: 10})
	m.Log(Log{Level: LevelInfo, Message: "hi"})
	m.Alert(Alert{Title: "t"})
	m.Result(Result{Code: CodeSuccess})

	for i, r := range []*recorder{a, b} {
		if len(r.updates) != 1 || len(r.logs) != 1 || len(r.alerts) != 1 || len(r.results) != 1 {
			t.Errorf("reporter %d got %d/%d/%d/%d events", i, len(r.updates), len(r.logs), len(r.alerts), len(r.results))
		}
	}
}
