package closer

import (
	"fmt"
	"strings"
)

// FailedClose records a close attempt that did not succeed.
type FailedClose struct {
	Number int
	Err    error
}

// Report summarizes one close run.
type Report struct {
	RunID      string
	PullNumber int
	Closed     []int
	Failed     []FailedClose
}

// Summary renders the report for the invoking CI log.
func (r Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PR #%d: closed %d issue(s), %d failure(s)", r.PullNumber, len(r.Closed), len(r.Failed))
	for _, number := range r.Closed {
		fmt.Fprintf(&sb, "\n  closed #%d", number)
	}
	for _, failed := range r.Failed {
		fmt.Fprintf(&sb, "\n  failed #%d: %v", failed.Number, failed.Err)
	}
	return sb.String()
}
