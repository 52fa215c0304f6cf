package cli

import "fmt"

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitf wraps err with a message and exit code 1.
func exitf(err error, format string, args ...any) *ExitError {
	return &ExitError{Code: 1, Err: fmt.Errorf(format+": %w", append(args, err)...)}
}
