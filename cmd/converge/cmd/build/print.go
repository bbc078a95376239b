package build

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentstation/converge/internal/cmd/output"
	pkgbuild "github.com/agentstation/converge/pkg/build"
)

func reportTable(report *pkgbuild.RunReport) output.Data {
	data := output.Data{
		Title:   "Build",
		Headers: []string{"Step", "Detail"},
		Footer:  fmt.Sprintf("%s in %s (exit %d)", report.State, report.Duration.Round(time.Millisecond), report.ExitCode),
	}

	states := make([]string, 0, len(report.States))
	for _, s := range report.States {
		states = append(states, string(s))
	}
	data.Rows = append(data.Rows, []string{"states", strings.Join(states, " -> ")})

	if report.Reconcile != nil {
		data.Rows = append(data.Rows, []string{"reconcile", report.Reconcile.Summary()})
		for _, res := range report.Reconcile.Results {
			data.Rows = append(data.Rows, []string{"  " + res.Key, res.Label()})
		}
	}
	if report.Bundle != nil {
		data.Rows = append(data.Rows, []string{"bundle", fmt.Sprintf("%d copied, %d written, %d skipped",
			report.Bundle.Copied, len(report.Bundle.Written), len(report.Bundle.Skipped))})
	}
	return data
}

// printSummary writes warnings and the fatal error to w, which is stderr in normal use.
func printSummary(w io.Writer, report *pkgbuild.RunReport) {
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if report.Err != nil {
		fmt.Fprintf(w, "Build failed with exit status %d\n", report.ExitCode)
	}
}
