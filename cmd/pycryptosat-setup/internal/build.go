package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanFirst bool

var buildCmd = &cobra.Command{
	Use:     "build_ext",
	Aliases: []string{"build"},
	Short:   "Compile and link the extension module",
	Args:    cobra.NoArgs,
	RunE:    runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&cleanFirst, "clean", false, "Remove previous build artifacts first")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	dist, err := setupDistribution(cmd.Context())
	if err != nil {
		return err
	}
	dist.Config.CleanFirst = dist.Config.CleanFirst || cleanFirst

	if err := dist.Run(cmd.Context(), "build_ext"); err != nil {
		return fmt.Errorf("failed to build: %w", err)
	}
	return nil
}
