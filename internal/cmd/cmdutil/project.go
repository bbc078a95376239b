// Package cmdutil provides helpers shared by converge commands.
package cmdutil

import (
	"io"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/scan"
	"github.com/agentstation/converge/pkg/target"
)

// Project resolves the configured target and opens the project tree with
// the effective ignore set.
func Project(app application.Application) (*target.Target, *scan.Tree, error) {
	t, err := app.Target()
	if err != nil {
		return nil, nil, err
	}
	tree, err := scan.NewTree(app.Root(), t.IgnoreSet(app.Ignore(), app.ReplaceIgnore())...)
	if err != nil {
		return nil, nil, err
	}
	app.Logger().Debug().
		Str("target", t.Name).
		Str("origin", t.Origin).
		Str("root", tree.Root).
		Strs("ignore", tree.Ignore).
		Msg("Resolved project")
	return t, tree, nil
}

// Render writes v in the application's output format. Table and markdown
// output is built from table; json and yaml encode v directly.
func Render(w io.Writer, app application.Application, v any, table func() output.Data) error {
	format := output.DetectFormat(app.OutputFormat())
	if f, err := output.ParseFormat(string(format)); err == nil && f != "" {
		format = f
	}
	if table != nil && (format == output.FormatTable || format == output.FormatMarkdown) {
		return output.NewFormatter(format).Format(w, table())
	}
	return output.NewFormatter(format).Format(w, v)
}
