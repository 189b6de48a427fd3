package nemu

import (
	"errors"
	"fmt"
)

var (
	// ErrNativeUnavailable is returned when external_renderer_ipc cannot be loaded.
	ErrNativeUnavailable = errors.New("nemu: external_renderer_ipc unavailable")

	// ErrEmulatorNotRunning is returned by connect when the instance is not started.
	ErrEmulatorNotRunning = errors.New("nemu: emulator is not running")

	// ErrConnectionRefused means nemu_connect returned a zero handle.
	ErrConnectionRefused = errors.New("nemu: connection refused")

	// ErrDisplayTimeout means no display id was obtained within the polling budget.
	ErrDisplayTimeout = errors.New("nemu: display id acquisition timed out")

	// ErrNativeCall matches every *NativeCallError.
	ErrNativeCall = errors.New("nemu: native call failed")

	// ErrManagementQuery matches every *ManagementQueryError.
	ErrManagementQuery = errors.New("nemu: management query failed")

	// ErrMalformedOutput means MuMuManager exited cleanly but printed nothing usable.
	ErrMalformedOutput = fmt.Errorf("%w: malformed output", ErrManagementQuery)

	// ErrArgument rejects malformed gesture or input parameters. Never retried.
	ErrArgument = errors.New("nemu: invalid argument")

	// ErrStopped is returned by an interruptible Clock when the owner is shutting
	// down. It is never retried and never swallowed.
	ErrStopped = errors.New("nemu: stopped")
)

// NativeCallError carries the non-zero status of a nemu_* call.
type NativeCallError struct {
	Op     string
	Status int
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("nemu: %s returned %d", e.Op, e.Status)
}

func (e *NativeCallError) Unwrap() error {
	return ErrNativeCall
}

// ManagementQueryError describes a failed MuMuManager invocation.
type ManagementQueryError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *ManagementQueryError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("nemu: MuMuManager %v failed (exit code %d): %v: %s", e.Args, e.ExitCode, e.Err, e.Output)
	}
	return fmt.Sprintf("nemu: MuMuManager %v failed (exit code %d): %v", e.Args, e.ExitCode, e.Err)
}

func (e *ManagementQueryError) Is(target error) bool {
	return target == ErrManagementQuery
}

func (e *ManagementQueryError) Unwrap() error {
	return e.Err
}

func argumentError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}
