package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pyext "github.com/contriboss/python-extension-go"
	"github.com/contriboss/python-extension-go/pycryptosat"
	"github.com/spf13/cobra"
)

var (
	projectDir string
	pythonPath string
	buildDir   string
	destPath   string
	parallel   int
	verbose    bool
	portable   bool
	debugBuild bool
	noWrapv    bool
)

// detector replaces the host interpreter lookup in tests.
var detector pyext.PlatformDetector

var rootCmd = &cobra.Command{
	Use:   "pycryptosat-setup",
	Short: "Build the pycryptosat extension module",
	Long: `pycryptosat-setup compiles the CryptoMiniSat sources into a Python extension
module, using the compiler configuration of the target interpreter with the
unwanted inherited flags removed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&projectDir, "project", "C", ".", "Project directory")
	flags.StringVar(&pythonPath, "python", "", "Python interpreter whose build configuration is used")
	flags.StringVar(&buildDir, "build-dir", "", "Build directory (default \"build\")")
	flags.StringVar(&destPath, "dest", "", "Copy the built module into this directory")
	flags.IntVarP(&parallel, "jobs", "j", 0, "Number of parallel compile jobs")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose build output")
	flags.BoolVar(&portable, "portable", false, "Do not tune for the build host's CPU")
	flags.BoolVar(&debugBuild, "debug", false, "Keep assertions in the solver (changes module behaviour)")
	flags.BoolVar(&noWrapv, "no-wrapv", false, "Leave signed overflow undefined (changes module behaviour)")
}

// Execute runs the root command and returns the process exit code. A failing
// test entry point's exit code is passed through unchanged.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return pyext.ExitCode(err)
}

// exitError marks errors whose output has already been shown by a child
// process.
type exitError struct{ err error }

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// flagPolicy applies the behaviour flags to the default policy.
func flagPolicy() pyext.FlagPolicy {
	policy := pyext.DefaultFlagPolicy()
	if portable {
		policy = policy.Portable()
	}
	if debugBuild {
		policy = policy.Debug()
	}
	if noWrapv {
		policy = policy.WithoutWraparound()
	}
	return policy
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildConfig merges command-line flags with pyext.toml.
func buildConfig() (*pyext.BuildConfig, error) {
	fc, err := pyext.LoadFileConfig(projectDir)
	if err != nil {
		return nil, err
	}

	config := &pyext.BuildConfig{
		ProjectDir: projectDir,
		PythonPath: pythonPath,
		BuildDir:   buildDir,
		DestPath:   destPath,
		Parallel:   parallel,
		Verbose:    verbose,
		Logger:     newLogger(),
	}
	fc.Apply(config)
	return config, nil
}

// setupDistribution assembles the pycryptosat distribution for a command.
func setupDistribution(ctx context.Context) (*pyext.Distribution, error) {
	config, err := buildConfig()
	if err != nil {
		return nil, err
	}
	policy := flagPolicy()
	for _, flag := range pyext.DefaultFlagPolicy().CompileArgs() {
		if pyext.BehaviorAffecting(flag) && !contains(policy.CompileArgs(), flag) {
			config.Logger.Warn("behaviour-affecting compile flag removed", slog.String("flag", flag))
		}
	}

	return pyext.Setup(ctx, pycryptosat.PackageWithPolicy(policy), config, &pyext.SetupOptions{
		Detector: detector,
	})
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
