package pyext

import (
	"context"
	"fmt"
	"log/slog"
)

// BuilderFactory manages the registration and selection of extension builders.
//
// # Builder Selection
//
// When building an extension, the factory calls CanBuild() on each
// registered builder in order and uses the first one that returns true.
//
// BuilderFactory is NOT safe for concurrent registration.
// Register all builders before use.
type BuilderFactory struct {
	builders []Builder
}

// NewBuilderFactory creates a factory with the native C/C++ builder registered.
func NewBuilderFactory() *BuilderFactory {
	factory := &BuilderFactory{}
	factory.Register(&NativeBuilder{})
	return factory
}

// Register adds a new builder to the factory.
//
// Builders are checked in the order they are registered.
func (f *BuilderFactory) Register(builder Builder) {
	f.builders = append(f.builders, builder)
}

// BuilderFor returns the first builder that can handle ext.
func (f *BuilderFactory) BuilderFor(ext *Extension) (Builder, error) {
	for _, builder := range f.builders {
		if builder.CanBuild(ext) {
			return builder, nil
		}
	}

	return nil, fmt.Errorf("%w for extension %s (language %q)", ErrNoBuilder, ext.Name, ext.Language)
}

// ListBuilders returns a copy of all registered builders.
func (f *BuilderFactory) ListBuilders() []Builder {
	return append([]Builder{}, f.builders...)
}

// BuildAllExtensions builds all extensions in sequence.
//
// This method processes each extension in order:
//  1. Check for context cancellation
//  2. Validate the descriptor and find the appropriate builder
//  3. Check the builder's tools if it implements ToolChecker
//  4. Build the extension
//  5. Install the built module into config.DestPath
//  6. Stop on first failure if config.StopOnFailure is true
//
// Even if an error is returned, the results slice contains partial results
// for the extensions that were processed. The first error is returned.
func (f *BuilderFactory) BuildAllExtensions(ctx context.Context, config *BuildConfig, extensions []*Extension) ([]*BuildResult, error) {
	if len(extensions) == 0 {
		return nil, nil
	}

	log := config.logger()
	var results []*BuildResult
	var firstError error

	fail := func(ext *Extension, err error) {
		if firstError == nil {
			firstError = err
		}
		results = append(results, &BuildResult{
			Extension: ext.Name,
			Success:   false,
			Error:     err,
		})
	}

	for _, ext := range extensions {
		if ctxErr := ctx.Err(); ctxErr != nil {
			fail(ext, ctxErr)
			break
		}

		if err := ext.Validate(); err != nil {
			fail(ext, err)
			if config.StopOnFailure {
				break
			}
			continue
		}

		builder, err := f.BuilderFor(ext)
		if err != nil {
			fail(ext, err)
			if config.StopOnFailure {
				break
			}
			continue
		}

		if checker, ok := builder.(ToolChecker); ok {
			if err := checker.CheckTools(config, ext); err != nil {
				fail(ext, fmt.Errorf("build tools missing: %w", err))
				if config.StopOnFailure {
					break
				}
				continue
			}
		}

		log.Info("building extension", slog.String("extension", ext.Name), slog.String("builder", builder.Name()))

		result, err := builder.Build(ctx, config, ext)
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			if result == nil {
				result = &BuildResult{Extension: ext.Name, Success: false, Error: err}
			}
		}

		if result.Success {
			installed, installErr := installExtensions(config, result.Extensions)
			if installErr != nil {
				result.Success = false
				result.Error = installErr
				if firstError == nil {
					firstError = installErr
				}
			}
			result.Installed = installed
		}

		results = append(results, result)

		if !result.Success && config.StopOnFailure {
			break
		}
	}

	return results, firstError
}

// CleanAllExtensions runs Clean for every extension with a matching builder.
func (f *BuilderFactory) CleanAllExtensions(ctx context.Context, config *BuildConfig, extensions []*Extension) error {
	for _, ext := range extensions {
		builder, err := f.BuilderFor(ext)
		if err != nil {
			return err
		}
		if err := builder.Clean(ctx, config, ext); err != nil {
			return fmt.Errorf("clean %s: %w", ext.Name, err)
		}
	}
	return nil
}
