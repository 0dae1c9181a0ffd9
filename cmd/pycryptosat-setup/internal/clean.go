package internal

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove object files and the built module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dist, err := setupDistribution(cmd.Context())
		if err != nil {
			return err
		}
		return dist.Run(cmd.Context(), "clean")
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
