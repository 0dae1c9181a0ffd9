package pyext

import "context"

// Builder defines the interface that all extension builders must implement.
//
// # Builder Lifecycle
//
//  1. CanBuild() - Factory calls this to find the right builder for an extension
//  2. Build() - Factory calls this to compile the extension
//  3. Clean() - Optional cleanup of build artifacts
//
// Builder implementations should be stateless. The processed configuration
// travels in BuildConfig.Vars, never in the builder.
type Builder interface {
	// Name returns the human-readable name of this builder.
	Name() string

	// CanBuild reports whether this builder handles ext.
	CanBuild(ext *Extension) bool

	// Build compiles the extension and returns the result.
	//
	// Returns:
	//   - BuildResult with Success=true and Extensions list on success
	//   - BuildResult with Success=false and Error on failure
	Build(ctx context.Context, config *BuildConfig, ext *Extension) (*BuildResult, error)

	// Clean removes build artifacts for ext.
	Clean(ctx context.Context, config *BuildConfig, ext *Extension) error
}
