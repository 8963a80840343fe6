package runner

import (
	"time"

	"github.com/wesleyorama2/caserun/internal/http"
)

// Status is the outcome of one test case
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Assertion is one checked expectation of a case
type Assertion struct {
	Name     string
	Passed   bool
	Expected any
	Actual   any
	Message  string
}

// Result holds the outcome of running one test case
type Result struct {
	CaseID      string
	Description string
	Method      string
	URL         string
	Params      any
	Status      Status
	Assertions  []Assertion
	// Err is set for errored cases
	Err error
	// Reason explains a skipped case
	Reason   string
	Response *http.Response
	Body     any
	Duration time.Duration
}

// FailedAssertions returns the assertions that did not hold
func (r Result) FailedAssertions() []Assertion {
	var failed []Assertion
	for _, a := range r.Assertions {
		if !a.Passed {
			failed = append(failed, a)
		}
	}
	return failed
}

// Summary aggregates the results of a run
type Summary struct {
	Total            int
	Passed           int
	Failed           int
	Skipped          int
	Errored          int
	Assertions       int
	FailedAssertions int
	Duration         time.Duration
	Latency          LatencyStats
}

// OK reports whether no case failed or errored
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errored == 0
}

func (s *Summary) add(r Result) {
	s.Total++
	switch r.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	case StatusErrored:
		s.Errored++
	}
	s.Assertions += len(r.Assertions)
	s.FailedAssertions += len(r.FailedAssertions())
}

// Report is the full outcome of a run
type Report struct {
	Results []Result
	Summary Summary
}
