package jobflow

import (
	"fmt"
	"os"
	"time"
)

// LogEvent captures information about a logging event, following the
// teacher's LogEvent shape in logEvent.go, extended with job-queue fields.
type LogEvent struct {
	// Message is a human-readable description of the event.
	Message string

	// JobID is the Job ID, if available.
	JobID string

	// JobName is the job's queue/channel name, if available.
	JobName string

	// WorkerID identifies the worker goroutine that produced the event, if any.
	WorkerID string

	// Err is any error associated with the event.
	Err error

	// Duration is how long the job or operation took, if relevant.
	Duration *time.Duration
}

func defaultInfoLog(ev LogEvent) {
	msg := fmt.Sprintf("[jobflow:INFO] %s", ev.Message)
	if ev.Err != nil {
		msg += fmt.Sprintf(" | error: %v", ev.Err)
	}
	_, _ = fmt.Fprintln(os.Stdout, msg)
}

func defaultErrorLog(ev LogEvent) {
	msg := fmt.Sprintf("[jobflow:ERROR] %s", ev.Message)
	if ev.Err != nil {
		msg += fmt.Sprintf(" | error: %v", ev.Err)
	}
	_, _ = fmt.Fprintln(os.Stderr, msg)
}
