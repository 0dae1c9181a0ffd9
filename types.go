package pyext

import (
	"context"
	"log/slog"
)

// BuildResult contains the output and status of a build operation.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Output lines captured from the toolchain (stdout/stderr)
//   - Extensions list of built module files relative to the build directory
//   - Error information if the build failed
type BuildResult struct {
	Extension  string   // Name of the extension module that was built
	Success    bool     // True if build completed successfully
	Output     []string // Lines of output from the compiler and linker
	Extensions []string // Paths to built extension files
	Installed  []string // Paths the built files were copied to
	Error      error    // Error if build failed, nil otherwise
}

// BuildConfig contains configuration for the build process.
//
// Source paths:
//   - ProjectDir: Root of the package (where setup data and sources live)
//   - BuildDir: Directory for object files and the linked module
//   - DestPath: Destination directory for the built module (in-place install)
//
// Host interpreter:
//   - PythonPath: interpreter whose sysconfig variables are inherited
//   - Vars: the processed configuration, filled by Setup
//
// Build behaviour:
//   - Verbose: record every command line in the result output
//   - CleanFirst: remove the build directory before compiling
//   - Parallel: number of concurrent compile jobs (0 or 1 = sequential)
type BuildConfig struct {
	// Source paths
	ProjectDir string // Root directory of the package
	BuildDir   string // Build directory, relative to ProjectDir unless absolute
	DestPath   string // Destination for built extensions

	// Host interpreter
	PythonPath string     // Path to the Python executable
	Vars       ConfigVars // Processed build configuration map

	// Extra denylist entries stripped in addition to DefaultDenylist
	ExtraDenylist []string

	// Env is merged into the environment of every toolchain process.
	Env map[string]string

	// Build options
	Verbose    bool // Enable verbose output
	CleanFirst bool // Remove build artifacts before building
	Parallel   int  // Number of parallel compile jobs

	// Failure handling
	StopOnFailure bool // Stop after the first failed extension build

	Logger *slog.Logger
}

func (c *BuildConfig) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// CommonBuildSteps defines the 3-step build pattern used by builders.
//
//  1. Configure: check tools and inputs
//  2. Build: compile and link the extension
//  3. Find: locate the linked module files
type CommonBuildSteps struct {
	// ConfigureFunc prepares the build (tool checks, source checks)
	ConfigureFunc func(ctx context.Context, config *BuildConfig, ext *Extension, result *BuildResult) error

	// BuildFunc compiles the extension
	BuildFunc func(ctx context.Context, config *BuildConfig, ext *Extension, result *BuildResult) error

	// FindFunc locates the built extension files after build completes
	FindFunc func(config *BuildConfig, ext *Extension) ([]string, error)
}
