package pyext

import "errors"

var (
	// ErrMissingSource is returned when a listed source file does not exist.
	ErrMissingSource = errors.New("source file not found")

	// ErrImport is returned when a test entry point cannot be resolved.
	ErrImport = errors.New("import error")

	// ErrUnknownCommand is returned by Distribution.Run for unregistered names.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNoBuilder is returned when no registered builder handles an extension.
	ErrNoBuilder = errors.New("no builder found")
)
