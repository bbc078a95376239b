// Package assemble implements the assemble command.
package assemble

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/internal/cmd/cmdutil"
	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/bundle"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
)

// Flags holds assemble-specific flags.
type Flags struct {
	Source  string
	Publish string
}

// NewCommand creates the assemble command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "assemble",
		GroupID: "core",
		Short:   "Assemble the static bundle without building",
		Args:    cobra.NoArgs,
		Long: `Assemble merges the target's static source directory into its publish
directory and writes the routing fallback, headers and host manifest files.

Files already present in the publish directory are never overwritten, so
running it after a build keeps everything the build produced.`,
		Example: `  converge assemble -t netlify
  converge assemble -t static --source assets --publish public_html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Source, "source", "", "static source directory (default from target)")
	cmd.Flags().StringVar(&flags.Publish, "publish", "", "publish directory (default from target)")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	logger := app.Logger()

	t, tree, err := cmdutil.Project(app)
	if err != nil {
		return err
	}

	source, publish := t.Bundle.Source, t.Bundle.Publish
	if flags.Source != "" {
		source = flags.Source
	}
	if flags.Publish != "" {
		publish = flags.Publish
	}
	if publish == "" {
		return errors.NewValidationError("publish", "", "target "+t.Name+" has no publish directory; pass --publish")
	}

	sourceDir := ""
	if source != "" {
		sourceDir = tree.Abs(source)
	}

	ctx := logging.WithTarget(logging.WithLogger(cmd.Context(), logger), t.Name)
	result, err := bundle.New(t.Bundle.Config).Assemble(ctx, sourceDir, tree.Abs(publish))
	if err != nil {
		return err
	}

	if err := cmdutil.Render(cmd.OutOrStdout(), app, result, func() output.Data { return resultTable(result, publish) }); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), result)
	return nil
}
