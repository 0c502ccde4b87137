// Package deploy runs the fixed deployment sequence: install Python
// dependencies, then collect static assets, with schema migration available
// but disabled unless configured. Steps run strictly in order and, by
// default, a failing step does not stop the ones after it.
package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"chakancha/internal/logging"
)

// Command is one external process to run.
type Command struct {
	Binary     string
	Arguments  []string
	WorkingDir string
	Timeout    time.Duration
}

// CommandString renders the command the way a shell user would type it.
func (c Command) CommandString() string {
	s := c.Binary
	for _, arg := range c.Arguments {
		s += " " + arg
	}
	return s
}

// StepResult captures the outcome of one executed step.
type StepResult struct {
	Name     string
	Command  Command
	Skipped  bool
	ExitCode int
	Output   string
	Err      error
	Duration time.Duration
}

// Failed reports whether the step ran and did not exit zero.
func (r StepResult) Failed() bool {
	return !r.Skipped && (r.Err != nil || r.ExitCode != 0)
}

// Executor runs a single command to completion.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (exitCode int, output string, err error)
}

// DirectExecutor runs commands directly on the host with os/exec.
type DirectExecutor struct{}

// Execute runs the command and returns its exit code and combined output.
// A non-zero exit is not an error; err is reserved for failures to run the
// process at all (missing binary, bad working directory, timeout).
func (e *DirectExecutor) Execute(ctx context.Context, cmd Command) (int, string, error) {
	timer := logging.StartTimer(logging.CategoryDeploy, "deploy.Execute")
	defer timer.Stop()

	logging.Deploy("Executing: %s", cmd.CommandString())

	execCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.WorkingDir
	execCmd.Env = os.Environ()

	var buf bytes.Buffer
	execCmd.Stdout = &buf
	execCmd.Stderr = &buf

	err := execCmd.Run()
	output := buf.String()

	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return -1, output, fmt.Errorf("timeout after %s: %s", cmd.Timeout, cmd.CommandString())
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			logging.DeployDebug("Command exited non-zero: %s -> %d", cmd.Binary, exitErr.ExitCode())
			return exitErr.ExitCode(), output, nil
		}
		return -1, output, fmt.Errorf("failed to run %s: %w", cmd.Binary, err)
	}
	return 0, output, nil
}
