package assemble

import (
	"fmt"
	"io"

	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/bundle"
)

func resultTable(result *bundle.Result, publish string) output.Data {
	data := output.Data{
		Headers: []string{"File", "Action"},
		Footer:  fmt.Sprintf("%s: %d copied, %d written, %d skipped", publish, result.Copied, len(result.Written), len(result.Skipped)),
	}
	for _, name := range result.Written {
		data.Rows = append(data.Rows, []string{name, "written"})
	}
	for _, name := range result.Skipped {
		data.Rows = append(data.Rows, []string{name, "kept"})
	}
	return data
}

func printSummary(w io.Writer, result *bundle.Result) {
	for _, err := range result.Errors {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}
