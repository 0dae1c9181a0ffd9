package internal

import (
	"encoding/json"
	"fmt"
	"io"

	pyext "github.com/contriboss/python-extension-go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configFormat string
	configKeys   []string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the processed build configuration",
	Long: `Config prints the build configuration after the denylisted flags have been
removed, the platform compiler overrides applied and the environment merged.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configFormat, "format", "f", "yaml", "Output format (yaml or json)")
	configCmd.Flags().StringSliceVarP(&configKeys, "key", "k", nil, "Only print these variables")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	dist, err := setupDistribution(cmd.Context())
	if err != nil {
		return err
	}
	return writeVars(cmd.OutOrStdout(), selectVars(dist.Config.Vars, configKeys), configFormat)
}

// selectVars returns the subset of vars named by keys, or all of vars.
// Absent keys are skipped.
func selectVars(vars pyext.ConfigVars, keys []string) pyext.ConfigVars {
	if len(keys) == 0 {
		return vars
	}
	out := pyext.ConfigVars{}
	for _, key := range keys {
		if value, ok := vars.Lookup(key); ok {
			out[key] = value
		}
	}
	return out
}

// writeOutput encodes v as YAML or indented JSON.
func writeOutput(w io.Writer, v any, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}

func writeVars(w io.Writer, vars pyext.ConfigVars, format string) error {
	return writeOutput(w, map[string]string(vars), format)
}
