package pyext

import (
	"fmt"
	"os/exec"
	"strings"
)

// ToolChecker is an optional interface for builders that require external tools.
//
// Check tools before building:
//
//	if checker, ok := builder.(ToolChecker); ok {
//	    if err := checker.CheckTools(config, ext); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools needed to build ext.
	RequiredTools(config *BuildConfig, ext *Extension) []ToolRequirement

	// CheckTools returns nil if all required tools are found, or an error
	// describing which tools are missing. Optional tools never cause errors.
	CheckTools(config *BuildConfig, ext *Extension) error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name: "g++",
//	    Alternatives: []string{"clang++", "c++"},
//	    Purpose: "C++ compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "gcc", "g++").
	Name string

	// Alternatives can satisfy the requirement if Name is missing.
	Alternatives []string

	// Optional tools are checked but never fail the build.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// execLookPath is overridden in tests.
var execLookPath = exec.LookPath

// CheckToolAvailable checks if a tool is available in the system PATH.
// Absolute and relative paths are checked directly by exec.LookPath.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available.
//
// Single missing tool:
//
//	g++ not found in PATH (required for: C++ compiler)
//
// Multiple missing tools:
//
//	missing required tools: gcc (C compiler), g++ (C++ compiler)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
}
