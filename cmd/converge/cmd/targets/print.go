package targets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/target"
)

func listTable(presets []*target.Target) output.Data {
	data := output.Data{
		Headers: []string{"Name", "Description", "Static", "Artifacts", "Build"},
		Rows:    make([][]string, 0, len(presets)),
	}
	for _, t := range presets {
		data.Rows = append(data.Rows, []string{
			t.Name,
			t.Description,
			strconv.FormatBool(t.StaticExport),
			strconv.Itoa(len(t.Artifacts)),
			t.Build,
		})
	}
	return data
}

func showTable(t *target.Target) output.Data {
	data := output.Data{
		Title:   fmt.Sprintf("%s (%s)", t.Name, t.Origin),
		Headers: []string{"Artifact", "Canonical", "Alternates", "Policy", "Kind", "Required"},
		Rows:    make([][]string, 0, len(t.Artifacts)),
		Footer:  t.Description,
	}
	for _, a := range t.Artifacts {
		data.Rows = append(data.Rows, []string{
			a.Key,
			a.Canonical,
			strings.Join(a.Alternates, ", "),
			string(a.Policy),
			string(a.Kind),
			strconv.FormatBool(a.Required),
		})
	}
	return data
}
