package deploy

import (
	"context"
	"time"

	"chakancha/internal/config"
	"chakancha/internal/logging"
)

// Runner executes the deployment steps in their fixed order.
type Runner struct {
	cfg      config.DeployConfig
	timeout  time.Duration
	executor Executor
	strict   bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor swaps the executor. Tests use a fake.
func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.executor = e }
}

// WithStrict makes a failing step abort the steps after it. The default
// keeps going and reports the last executed step's exit status, matching
// how a plain shell script without errexit behaves.
func WithStrict(strict bool) Option {
	return func(r *Runner) { r.strict = strict }
}

// NewRunner builds a Runner from the deploy configuration.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg.Deploy,
		timeout:  cfg.GetStepTimeout(),
		executor: &DirectExecutor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of a full deployment run.
type Result struct {
	Steps []StepResult
	// ExitCode is the exit status of the last step that actually ran.
	// Zero if every step was skipped.
	ExitCode int
	// Aborted is set in strict mode when a failure stopped the sequence.
	Aborted bool
}

// Failed reports whether the run as a whole should be treated as a failure.
func (r Result) Failed() bool {
	return r.ExitCode != 0 || r.Aborted
}

// steps returns the three deployment steps in order. Migration is always
// present in the sequence but marked skipped unless enabled in config, the
// same way a commented-out line stays visible in a script.
func (r *Runner) steps() []struct {
	name string
	cmd  Command
	skip bool
} {
	return []struct {
		name string
		cmd  Command
		skip bool
	}{
		{
			name: "install-requirements",
			cmd: Command{
				Binary:     r.cfg.Pip,
				Arguments:  []string{"install", "-r", r.cfg.ManifestPath},
				WorkingDir: r.cfg.WorkingDir,
				Timeout:    r.timeout,
			},
		},
		{
			name: "collectstatic",
			cmd: Command{
				Binary:     r.cfg.Python,
				Arguments:  []string{r.cfg.ManagePath, "collectstatic", "--noinput"},
				WorkingDir: r.cfg.WorkingDir,
				Timeout:    r.timeout,
			},
		},
		{
			name: "migrate",
			cmd: Command{
				Binary:     r.cfg.Python,
				Arguments:  []string{r.cfg.ManagePath, "migrate", "--noinput"},
				WorkingDir: r.cfg.WorkingDir,
				Timeout:    r.timeout,
			},
			skip: !r.cfg.RunMigrations,
		},
	}
}

// Run executes the deployment sequence. In the default mode every step runs
// regardless of earlier failures and the result's exit code is the last
// executed step's. In strict mode the first failure aborts the remainder.
func (r *Runner) Run(ctx context.Context) Result {
	timer := logging.StartTimer(logging.CategoryDeploy, "deploy.Run")
	defer timer.Stop()

	var result Result
	for _, step := range r.steps() {
		if step.skip {
			logging.Deploy("Step %s disabled, skipping", step.name)
			result.Steps = append(result.Steps, StepResult{
				Name:    step.name,
				Command: step.cmd,
				Skipped: true,
			})
			continue
		}

		start := time.Now()
		exitCode, output, err := r.executor.Execute(ctx, step.cmd)
		sr := StepResult{
			Name:     step.name,
			Command:  step.cmd,
			ExitCode: exitCode,
			Output:   output,
			Err:      err,
			Duration: time.Since(start),
		}
		result.Steps = append(result.Steps, sr)
		result.ExitCode = exitCode

		if sr.Failed() {
			logging.DeployError("Step %s failed (exit %d): %v", step.name, exitCode, err)
			if r.strict {
				result.Aborted = true
				break
			}
			// Keep going. Later steps run and the final exit status
			// reflects the last one executed.
			continue
		}
		logging.Deploy("Step %s completed in %s", step.name, sr.Duration.Round(time.Millisecond))
	}
	return result
}
