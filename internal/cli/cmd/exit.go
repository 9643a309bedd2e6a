package cmd

import "fmt"

const (
	ExitCodeUnknown = 1
	ExitCodeConfig  = 2
	ExitCodeAuth    = 3
	ExitCodeInput   = 4
	ExitCodeAPI     = 5
)

// ExitError carries the process exit code alongside the underlying error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("command failed with exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func WrapExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// printedError marks an error whose message and help text were already
// written to stderr; main exits with the wrapped code without printing it
// a second time.
type printedError struct {
	err error
}

func (e *printedError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *printedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func (e *printedError) AlreadyPrinted() bool {
	return true
}
