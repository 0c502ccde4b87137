package deploy

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chakancha/internal/config"
)

// fakeExecutor records executed commands and returns scripted exit codes
// keyed by the command's second word (the subcommand or flag position).
type fakeExecutor struct {
	executed  []Command
	exitCodes map[string]int
	errs      map[string]error
}

func (f *fakeExecutor) Execute(_ context.Context, cmd Command) (int, string, error) {
	f.executed = append(f.executed, cmd)
	key := cmd.Arguments[0]
	if key != "install" {
		key = cmd.Arguments[1] // manage.py <subcommand>
	}
	if err, ok := f.errs[key]; ok {
		return -1, "", err
	}
	return f.exitCodes[key], fmt.Sprintf("output of %s", key), nil
}

func newRunner(t *testing.T, fake *fakeExecutor, opts ...Option) *Runner {
	t.Helper()
	cfg := config.DefaultConfig()
	opts = append([]Option{WithExecutor(fake)}, opts...)
	return NewRunner(cfg, opts...)
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	fake := &fakeExecutor{exitCodes: map[string]int{}}
	r := newRunner(t, fake)

	result := r.Run(context.Background())

	require.Len(t, fake.executed, 2, "migrate is disabled by default")
	assert.Equal(t, "install", fake.executed[0].Arguments[0])
	assert.Equal(t, "collectstatic", fake.executed[1].Arguments[1])
	assert.Equal(t, 0, result.ExitCode)
	assert.False(t, result.Failed())

	require.Len(t, result.Steps, 3)
	assert.Equal(t, "install-requirements", result.Steps[0].Name)
	assert.Equal(t, "collectstatic", result.Steps[1].Name)
	assert.Equal(t, "migrate", result.Steps[2].Name)
	assert.True(t, result.Steps[2].Skipped)
}

func TestRunContinuesAfterFailure(t *testing.T) {
	// A failing install must not stop collectstatic from running.
	fake := &fakeExecutor{exitCodes: map[string]int{"install": 1}}
	r := newRunner(t, fake)

	result := r.Run(context.Background())

	require.Len(t, fake.executed, 2)
	assert.True(t, result.Steps[0].Failed())
	assert.False(t, result.Steps[1].Failed())
}

func TestRunExitCodeIsLastExecutedStep(t *testing.T) {
	t.Run("earlier failure masked by later success", func(t *testing.T) {
		fake := &fakeExecutor{exitCodes: map[string]int{"install": 1}}
		result := newRunner(t, fake).Run(context.Background())
		assert.Equal(t, 0, result.ExitCode)
		assert.False(t, result.Failed())
	})

	t.Run("last step failure surfaces", func(t *testing.T) {
		fake := &fakeExecutor{exitCodes: map[string]int{"collectstatic": 2}}
		result := newRunner(t, fake).Run(context.Background())
		assert.Equal(t, 2, result.ExitCode)
		assert.True(t, result.Failed())
	})
}

func TestRunMigrateDisabledByDefault(t *testing.T) {
	fake := &fakeExecutor{exitCodes: map[string]int{}}
	result := newRunner(t, fake).Run(context.Background())

	for _, cmd := range fake.executed {
		assert.NotContains(t, cmd.Arguments, "migrate")
	}
	// The skipped step still appears in the sequence.
	assert.True(t, result.Steps[2].Skipped)
	assert.Equal(t, "migrate", result.Steps[2].Command.Arguments[1])
}

func TestRunMigrateEnabledByConfig(t *testing.T) {
	fake := &fakeExecutor{exitCodes: map[string]int{}}
	cfg := config.DefaultConfig()
	cfg.Deploy.RunMigrations = true
	r := NewRunner(cfg, WithExecutor(fake))

	result := r.Run(context.Background())

	require.Len(t, fake.executed, 3)
	assert.Equal(t, "migrate", fake.executed[2].Arguments[1])
	assert.Equal(t, "--noinput", fake.executed[2].Arguments[2])
	assert.False(t, result.Steps[2].Skipped)
}

func TestRunStrictAbortsOnFailure(t *testing.T) {
	fake := &fakeExecutor{exitCodes: map[string]int{"install": 1}}
	r := newRunner(t, fake, WithStrict(true))

	result := r.Run(context.Background())

	require.Len(t, fake.executed, 1, "strict mode stops after the failure")
	assert.True(t, result.Aborted)
	assert.True(t, result.Failed())
	assert.Equal(t, 1, result.ExitCode)
}

func TestRunExecutorError(t *testing.T) {
	// A binary that cannot even start still lets later steps run in the
	// default mode.
	fake := &fakeExecutor{
		exitCodes: map[string]int{},
		errs:      map[string]error{"install": fmt.Errorf("executable not found")},
	}
	result := newRunner(t, fake).Run(context.Background())

	require.Len(t, fake.executed, 2)
	assert.True(t, result.Steps[0].Failed())
	assert.Error(t, result.Steps[0].Err)
	assert.Equal(t, 0, result.ExitCode, "collectstatic succeeded last")
}

func TestDirectExecutorRunsProcess(t *testing.T) {
	e := &DirectExecutor{}

	exitCode, output, err := e.Execute(context.Background(), Command{
		Binary:    "sh",
		Arguments: []string{"-c", "echo hello; exit 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, exitCode)
	assert.Contains(t, output, "hello")
}

func TestDirectExecutorMissingBinary(t *testing.T) {
	e := &DirectExecutor{}

	_, _, err := e.Execute(context.Background(), Command{
		Binary: "definitely-not-a-real-binary-xyz",
	})
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	cmd := Command{Binary: "pip", Arguments: []string{"install", "-r", "requirements.txt"}}
	assert.Equal(t, "pip install -r requirements.txt", cmd.CommandString())
}
