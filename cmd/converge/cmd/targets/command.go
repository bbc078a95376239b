// Package targets implements the targets command and its subcommands.
package targets

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/internal/cmd/cmdutil"
	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/target"
)

// NewCommand creates the targets command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "targets",
		GroupID: "management",
		Short:   "List and inspect deployment targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newShowCommand(app))

	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the embedded target presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := target.Presets()
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd.OutOrStdout(), app, presets, func() output.Data { return listTable(presets) })
		},
	}
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show [preset|file]",
		Short: "Show a target definition",
		Long: `Show prints a target definition and its artifacts. Without an argument it
shows the configured target.`,
		Example: `  converge targets show netlify
  converge targets show ./deploy/target.yaml -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				t   *target.Target
				err error
			)
			if len(args) == 1 {
				t, err = target.Resolve(args[0])
			} else {
				t, err = app.Target()
			}
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd.OutOrStdout(), app, t, func() output.Data { return showTable(t) })
		},
	}
}
