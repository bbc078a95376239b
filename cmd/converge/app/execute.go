package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
)

// Execute runs the converge CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Converge a project tree to a deployment target",
		Version: a.version,
		Long: `converge prepares a web application's project tree for deployment.

It finds every configuration artifact the target needs (deployment manifest,
schema definition, routing rules, environment file), deletes stray copies,
puts exactly one copy at the canonical path with deterministic content,
runs the target's install and build commands and, for static targets,
assembles the publish directory.

Running it twice on an unchanged tree performs no further changes.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./.converge.yaml or $HOME/.converge.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, markdown")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringP("root", "C", ".", "project root directory")
	flags.StringP("target", "t", constants.DefaultTarget, "target preset name or target file")
	flags.StringSlice("ignore", nil, "extra directory names or globs never scanned (node_modules and .git are always ignored)")
	flags.Bool("replace-ignore", false, "drop the target's own ignore entries, keeping node_modules, .git and --ignore")

	rootCmd.SetVersionTemplate(constants.AppName + " {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// .env files belong to the project root, so a new root or config file
	// means loading them again
	if cmd.Flags().Changed("config") || cmd.Flags().Changed("root") {
		root := ""
		if cmd.Flags().Changed("root") {
			root = mustGetString(cmd, "root")
		}
		a.config.unloadEnvFiles()
		config, err := LoadConfig(mustGetString(cmd, "config"), root)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(cmd.Flags())

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	if a.config.ConfigFile != "" {
		a.logger.Debug().Str("file", a.config.ConfigFile).Msg("Using config file")
	}

	return nil
}

// ExitOnError prints err and exits with the code it carries:
// 2 for required artifact failures, the child's code for a failed build,
// and 1 otherwise.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(errors.ExitCode(err))
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
