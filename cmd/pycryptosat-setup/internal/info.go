package internal

import (
	"github.com/spf13/cobra"
)

var (
	infoFormat string
	infoLong   bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the package metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dist, err := setupDistribution(cmd.Context())
		if err != nil {
			return err
		}
		md := dist.Metadata()
		if !infoLong {
			md.LongDescription = ""
		}
		return writeOutput(cmd.OutOrStdout(), md, infoFormat)
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "yaml", "Output format (yaml or json)")
	infoCmd.Flags().BoolVar(&infoLong, "long", false, "Include the long description")
	rootCmd.AddCommand(infoCmd)
}
