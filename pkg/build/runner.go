package build

import (
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
)

// Runner executes an opaque shell command in dir. A command that ran and
// exited non-zero returns its exit code and a nil error; err is reserved for
// commands that could not be run at all.
type Runner interface {
	Run(ctx context.Context, dir, command string) (exitCode int, err error)
}

// ExecRunner runs commands through a shell and streams their output, line by
// line, to the context logger: stdout at info, stderr at warn.
type ExecRunner struct {
	// Shell defaults to "sh".
	Shell string

	// Env is appended to the current process environment, as KEY=value pairs.
	Env []string
}

// Run implements Runner. The command is not bound to ctx: once started it
// runs to completion.
func (r *ExecRunner) Run(ctx context.Context, dir, command string) (int, error) {
	logger := logging.FromContext(ctx)
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	stdout := logging.NewLineWriter(logger, zerolog.InfoLevel, "stdout")
	stderr := logging.NewLineWriter(logger, zerolog.WarnLevel, "stderr")

	cmd := exec.Command(shell, "-c", command) //nolint:gosec // command comes from the target definition
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), r.Env...)

	logger.Debug().Str("command", command).Str("dir", dir).Msg("Running command")
	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
