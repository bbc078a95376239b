package reconcile

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/converge/internal/cmd/output"
	pkgreconcile "github.com/agentstation/converge/pkg/reconcile"
)

func reportTable(report *pkgreconcile.Report) output.Data {
	data := output.Data{
		Headers: []string{"Artifact", "Canonical", "Outcome", "Source", "Removed"},
		Rows:    make([][]string, 0, len(report.Results)),
		Footer:  report.Summary(),
	}
	for _, res := range report.Results {
		data.Rows = append(data.Rows, []string{
			res.Key,
			res.Canonical,
			res.Label(),
			res.Source,
			strings.Join(res.Removed, ", "),
		})
	}
	return data
}

// printSummary writes warnings and failures to w, which is stderr in normal use.
func printSummary(w io.Writer, report *pkgreconcile.Report) {
	for _, warning := range report.Warnings() {
		fmt.Fprintf(w, "warning: %v\n", warning)
	}
	for _, res := range report.Failures() {
		level := "warning"
		if res.Required {
			level = "error"
		}
		fmt.Fprintf(w, "%s: %v\n", level, res.Err)
	}
	if report.DryRun && report.Changed() {
		fmt.Fprintf(w, "Dry run: %d redundant copies would be removed, nothing was written\n", report.Removed())
	}
}
