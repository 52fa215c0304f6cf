package script

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLoader is returned for a handler file with an unregistered extension.
	ErrNoLoader = errors.New("no loader for handler extension")

	// ErrNoExport is returned when a JavaScript module exports no function.
	ErrNoExport = errors.New("module does not export a handler function")

	// ErrPanic wraps a Go panic raised while loading or running a handler.
	ErrPanic = errors.New("handler panicked")

	// ErrPendingPromise is returned when a handler's promise has not settled
	// by the time the call returns.
	ErrPendingPromise = errors.New("handler returned a promise that did not settle")

	// ErrRejected is returned when a handler's promise is rejected.
	ErrRejected = errors.New("handler promise rejected")

	// ErrUnsupportedRequire is returned for require() of anything but a
	// relative path.
	ErrUnsupportedRequire = errors.New("only relative require paths are supported")
)

// Phase is the stage at which a handler failed.
type Phase string

// Handler phases.
const (
	PhaseLoad Phase = "load"
	PhaseRun  Phase = "run"
)

// HandlerError reports a failure of one handler file.
type HandlerError struct {
	File  string
	Phase Phase
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.File, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
