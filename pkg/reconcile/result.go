package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is what reconciliation did to one artifact.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeOverwritten  Outcome = "overwritten"
	OutcomeDeduplicated Outcome = "deduplicated"
	OutcomeRemoved      Outcome = "removed"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeFailed       Outcome = "failed"
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{OutcomeCreated, OutcomeOverwritten, OutcomeDeduplicated, OutcomeRemoved, OutcomeUnchanged, OutcomeFailed}

// Result is the convergence result for one artifact.
type Result struct {
	Key       string  `json:"key" yaml:"key"`
	Canonical string  `json:"canonical" yaml:"canonical"`
	Required  bool    `json:"required" yaml:"required"`
	Outcome   Outcome `json:"outcome" yaml:"outcome"`

	// Removed holds the root-relative redundant paths deleted (or, in a dry
	// run, that would be deleted).
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`

	// Source is set when the canonical copy was written: "default",
	// "mirror:<path>" or "promoted:<path>".
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	ExpectedDigest string `json:"expected_digest,omitempty" yaml:"expected_digest,omitempty"`
	ActualDigest   string `json:"actual_digest,omitempty" yaml:"actual_digest,omitempty"`

	// Warnings are recoverable problems, such as redundant copies that could not be deleted.
	Warnings []error `json:"-" yaml:"-"`

	// Err is set when the outcome is failed.
	Err error `json:"-" yaml:"-"`
}

// Label renders the outcome with the removal count, e.g. "deduplicated(2)".
func (r Result) Label() string {
	if r.Outcome == OutcomeDeduplicated || r.Outcome == OutcomeRemoved {
		return fmt.Sprintf("%s(%d)", r.Outcome, len(r.Removed))
	}
	return string(r.Outcome)
}

// Report aggregates results in registration order.
type Report struct {
	Root      string        `json:"root" yaml:"root"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`
	Results   []Result      `json:"results" yaml:"results"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// NewReport creates an empty report.
func NewReport(root string, dryRun bool) *Report {
	return &Report{
		Root:      root,
		DryRun:    dryRun,
		Results:   []Result{},
		StartTime: time.Now(),
	}
}

// Finalize records the duration.
func (r *Report) Finalize() {
	r.Duration = time.Since(r.StartTime)
}

// Counts returns the number of results per outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// Removed returns the total number of redundant copies removed.
func (r *Report) Removed() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Removed)
	}
	return n
}

// Failures returns every failed result.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// RequiredFailures returns failed results of required artifacts.
func (r *Report) RequiredFailures() []Result {
	var out []Result
	for _, res := range r.Failures() {
		if res.Required {
			out = append(out, res)
		}
	}
	return out
}

// HasFailures reports whether any artifact failed.
func (r *Report) HasFailures() bool {
	return len(r.Failures()) > 0
}

// Warnings returns every recoverable problem across results.
func (r *Report) Warnings() []error {
	var out []error
	for _, res := range r.Results {
		out = append(out, res.Warnings...)
	}
	return out
}

// Changed reports whether any artifact was written or deduplicated.
func (r *Report) Changed() bool {
	for _, res := range r.Results {
		if res.Outcome != OutcomeUnchanged && res.Outcome != OutcomeFailed {
			return true
		}
	}
	return false
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	counts := r.Counts()
	parts := make([]string, 0, len(Outcomes))
	for _, o := range Outcomes {
		if counts[o] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[o], o))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no artifacts")
	}
	prefix := "Reconciled"
	if r.DryRun {
		prefix = "Dry run"
	}
	return fmt.Sprintf("%s %d artifacts: %s", prefix, len(r.Results), strings.Join(parts, ", "))
}
