package pyext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// Command is a build subcommand registered with a Distribution.
//
// InitializeOptions and FinalizeOptions are called, in that order, before
// Run. Commands without options implement them as no-ops.
type Command interface {
	Name() string
	InitializeOptions()
	FinalizeOptions() error
	Run(ctx context.Context) error
}

// TestEntry is a zero-argument test routine.
type TestEntry func(ctx context.Context) error

// TestResolver locates the test entry point named by module.
type TestResolver interface {
	Resolve(module string) (TestEntry, error)
}

// ImportError reports a test entry point that could not be located.
type ImportError struct {
	Module string
	Reason string
}

func (e *ImportError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("import error: no module named %q", e.Module)
	}
	return fmt.Sprintf("import error: module %q: %s", e.Module, e.Reason)
}

// Is lets errors.Is(err, ErrImport) match.
func (e *ImportError) Is(target error) bool {
	return target == ErrImport
}

const (
	testCommandName   = "test"
	defaultTestModule = "tests"
)

// TestCommand is the "test" subcommand. It takes no options; Run resolves the
// entry point and calls it. Errors from the entry point are returned as is.
type TestCommand struct {
	Module   string // defaults to "tests"
	Resolver TestResolver
}

// Name returns "test".
func (c *TestCommand) Name() string { return testCommandName }

// InitializeOptions does nothing; the command has no options.
func (c *TestCommand) InitializeOptions() {}

// FinalizeOptions does nothing; the command has no options.
func (c *TestCommand) FinalizeOptions() error { return nil }

// Run resolves the test entry point and delegates to it.
func (c *TestCommand) Run(ctx context.Context) error {
	module := c.Module
	if module == "" {
		module = defaultTestModule
	}
	if c.Resolver == nil {
		return &ImportError{Module: module, Reason: "no resolver configured"}
	}

	entry, err := c.Resolver.Resolve(module)
	if err != nil {
		return err
	}
	return entry(ctx)
}

// EntryTable resolves entry points registered in-process by module name.
type EntryTable map[string]TestEntry

// Resolve returns the entry registered for module.
func (t EntryTable) Resolve(module string) (TestEntry, error) {
	entry, ok := t[module]
	if !ok || entry == nil {
		return nil, &ImportError{Module: module}
	}
	return entry, nil
}

// Modules returns the registered module names in sorted order.
func (t EntryTable) Modules() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InterpreterResolver runs "import <module>; <module>.run()" with a Python
// interpreter in Dir. The module must exist in Dir as <module>.py or
// <module>/__init__.py.
type InterpreterResolver struct {
	Python string
	Dir    string
	Env    map[string]string
	Stdout io.Writer
	Stderr io.Writer
}

// Resolve checks the module exists and returns an entry that runs it.
func (r *InterpreterResolver) Resolve(module string) (TestEntry, error) {
	if !moduleExists(r.Dir, module) {
		return nil, &ImportError{Module: module}
	}

	python := r.Python
	if python == "" {
		python = defaultPython
	}
	script := fmt.Sprintf("import %s as tp; tp.run()", module)

	return func(ctx context.Context) error {
		cmd := execCommandContext(ctx, python, "-c", script)
		cmd.Dir = r.Dir
		cmd.Stdout = writerOr(r.Stdout, os.Stdout)
		cmd.Stderr = writerOr(r.Stderr, os.Stderr)
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		for key, value := range r.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
		}
		return cmd.Run()
	}, nil
}

func moduleExists(dir, module string) bool {
	for _, candidate := range []string{
		filepath.Join(dir, module+".py"),
		filepath.Join(dir, module, "__init__.py"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

// ExitCode returns the process exit code carried by err: 0 for nil, the
// child's code for a failed subprocess, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
