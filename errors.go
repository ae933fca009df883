package jobflow

import "errors"

var (
	// ErrInvalidArgument is returned synchronously when a caller-supplied
	// argument fails validation before any database I/O is attempted.
	ErrInvalidArgument = errors.New("jobflow: invalid argument")

	// ErrNotFound is returned when Complete or Cancel affected zero rows.
	ErrNotFound = errors.New("jobflow: job not found")

	// ErrAlreadyStopped is returned by Subscribe and Monitor once Stop has
	// been called on the Queue.
	ErrAlreadyStopped = errors.New("jobflow: queue already stopped")
)
