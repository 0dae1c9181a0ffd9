package pyext

import "context"

// runCommonBuild executes the standard 3-step build process.
//
//  1. Configure: check tools and that every source exists
//  2. Build: compile each unit and link the module
//  3. Find: locate the linked module
//
// If any step fails, processing stops and the error is returned
// with Success=false. The BuildResult.Output field is populated by the step
// functions as they execute.
func runCommonBuild(ctx context.Context, config *BuildConfig, ext *Extension, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Extension: ext.Name,
		Success:   false,
		Output:    []string{},
	}

	// Step 1: Configure/prepare the build
	if err := steps.ConfigureFunc(ctx, config, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 2: Build/compile the extension
	if err := steps.BuildFunc(ctx, config, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 3: Find the built extension files
	extensions, err := steps.FindFunc(config, ext)
	if err != nil {
		result.Error = err
		return result, err
	}

	result.Extensions = extensions
	result.Success = true
	return result, nil
}
