package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chakancha/internal/deploy"
	"chakancha/internal/logging"
)

var deployStrict bool

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run the storefront deployment sequence",
	Long: `Runs the fixed deployment steps in order:

  1. pip install -r requirements.txt
  2. python manage.py collectstatic --noinput
  3. python manage.py migrate --noinput   (disabled unless deploy.run_migrations)

Steps run strictly in sequence. By default a failing step does not stop the
ones after it and the process exits with the last executed step's status,
the way a plain shell script behaves. With --strict the first failure aborts
the remaining steps.

Paths and interpreters come from the deploy section of the config file;
command-line arguments never change which steps run.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployStrict, "strict", false,
		"Abort remaining steps when one fails")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	runner := deploy.NewRunner(cfg, deploy.WithStrict(deployStrict))
	result := runner.Run(cmd.Context())

	for _, step := range result.Steps {
		switch {
		case step.Skipped:
			fmt.Printf("- %-22s skipped (disabled)\n", step.Name)
		case step.Failed():
			fmt.Printf("x %-22s exit %d (%s)\n", step.Name, step.ExitCode, step.Duration.Round(time.Millisecond))
			if step.Err != nil {
				fmt.Printf("    %v\n", step.Err)
			}
			if out := strings.TrimSpace(step.Output); out != "" {
				fmt.Println(indent(out, "    "))
			}
		default:
			fmt.Printf("* %-22s ok (%s)\n", step.Name, step.Duration.Round(time.Millisecond))
		}
	}

	if result.Aborted {
		fmt.Println("\nDeployment aborted: a step failed in strict mode.")
	}
	if result.ExitCode != 0 {
		// The process exit status mirrors the last executed step's.
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
		os.Exit(result.ExitCode)
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
