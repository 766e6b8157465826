package main

import "fmt"

// ExitError carries a process exit code out of a cobra RunE.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

const (
	exitInvalid = 1
	exitUsage   = 2
)
