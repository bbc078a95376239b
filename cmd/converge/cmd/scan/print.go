package scan

import (
	"fmt"
	"time"

	"github.com/agentstation/converge/internal/cmd/output"
)

func matchTable(matches []Match) output.Data {
	data := output.Data{
		Headers: []string{"Artifact", "Path", "Kind", "Modified", "Canonical"},
		Rows:    make([][]string, 0, len(matches)),
		Footer:  fmt.Sprintf("%d entries", len(matches)),
	}
	for _, m := range matches {
		kind := "file"
		if m.IsDir {
			kind = "dir"
		}
		canonical := ""
		if m.Canonical {
			canonical = "yes"
		}
		data.Rows = append(data.Rows, []string{m.Artifact, m.Rel, kind, m.ModTime.Format(time.DateTime), canonical})
	}
	return data
}
