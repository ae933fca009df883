package jobflow

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the settings and collaborators needed to construct a Queue.
// Executor and Schema are required; everything else has a documented default.
type Config struct {
	// Executor is the opaque handle the Queue issues plan text against. It
	// must be safe for concurrent use; NewMySQLExecutor adapts a *sql.DB.
	Executor SQLExecutor

	// Schema is the database schema (or database name, in MySQL terms) that
	// owns the jobs table. Plans are rebuilt once per Schema at New.
	Schema string

	// IDFactory generates job ids. Defaults to UUIDv4Factory().
	IDFactory IDFactory

	// ExpireCheckInterval is how often Monitor re-runs the expire sweep.
	// Defaults to 1 minute.
	ExpireCheckInterval time.Duration

	// NewJobCheckInterval is the default poll interval workers use when a
	// Subscribe call does not override it. Defaults to 2 seconds.
	NewJobCheckInterval time.Duration

	// Tracer, if set, wraps Publish/Fetch/Complete/Cancel/Monitor sweeps in
	// spans. A nil Tracer is replaced by otel.Tracer("jobflow") from the global
	// tracer provider, which is a no-op unless the application registers one.
	Tracer trace.Tracer

	// InfoLog is called for informational events. Defaults to printing to stdout.
	InfoLog func(ev LogEvent)

	// ErrorLog is called for error events. Defaults to printing to stderr.
	ErrorLog func(ev LogEvent)
}

const (
	defaultExpireCheckInterval = time.Minute
	defaultNewJobCheckInterval = 2 * time.Second

	minPollInterval = 50 * time.Millisecond
	maxPollInterval = time.Hour
)

func (c *Config) setDefaults() {
	if c.IDFactory == nil {
		c.IDFactory = UUIDv4Factory()
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer("jobflow")
	}
	if c.ExpireCheckInterval <= 0 {
		c.ExpireCheckInterval = defaultExpireCheckInterval
	}
	if c.NewJobCheckInterval <= 0 {
		c.NewJobCheckInterval = defaultNewJobCheckInterval
	}
	if c.InfoLog == nil {
		c.InfoLog = defaultInfoLog
	}
	if c.ErrorLog == nil {
		c.ErrorLog = defaultErrorLog
	}
}

func (c *Config) logInfo(ev LogEvent) {
	c.InfoLog(ev)
}

func (c *Config) logError(ev LogEvent) {
	c.ErrorLog(ev)
}
