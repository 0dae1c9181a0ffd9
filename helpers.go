package pyext

import (
	"fmt"
	"strings"
)

// MatchesExtension checks if a filename has any of the given extensions.
// The check is case-insensitive and works with or without the leading dot.
func MatchesExtension(filename string, extensions ...string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// BuildError creates a standardized build error with output context.
//
// With error and output:
//
//	Compile build failed: exit status 1
//
//	Build output:
//	g++ -c src/solver.cpp -o build/temp/src/solver.o
//	src/solver.cpp:12: error: ...
//
// The toolchain output is carried verbatim.
func BuildError(builder string, output []string, err error) error {
	outputStr := strings.Join(output, "\n")

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s build failed: %v", builder, err)
	} else {
		prefix = fmt.Sprintf("%s build failed", builder)
	}

	if outputStr != "" {
		return &ToolchainError{Step: builder, Output: output, Err: err, msg: fmt.Sprintf("%s\n\nBuild output:\n%s", prefix, outputStr)}
	}

	return &ToolchainError{Step: builder, Err: err, msg: prefix}
}

// ToolchainError is returned when a compiler or linker process fails.
type ToolchainError struct {
	Step   string
	Output []string
	Err    error
	msg    string
}

func (e *ToolchainError) Error() string { return e.msg }

func (e *ToolchainError) Unwrap() error { return e.Err }
