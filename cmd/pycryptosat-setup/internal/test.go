package internal

import (
	"errors"
	"os/exec"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the package's test entry point",
	Long: `Test imports the "tests" module from the project directory with the target
interpreter and calls its run() function. The exit code of the tests is
returned unchanged.`,
	Args: cobra.NoArgs,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	dist, err := setupDistribution(cmd.Context())
	if err != nil {
		return err
	}
	if err := dist.Run(cmd.Context(), "test"); err != nil {
		if isExit(err) {
			return &exitError{err: err}
		}
		return err
	}
	return nil
}

func isExit(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
