package jobflow

import "time"

// PublishOption configures a single Publish call.
type PublishOption func(*publishOptions)

// WithStartIn delays a job's eligibility by d.
func WithStartIn(d time.Duration) PublishOption {
	return func(o *publishOptions) { o.startIn = d }
}

// WithExpireIn overrides the default 15-minute visibility window.
func WithExpireIn(d time.Duration) PublishOption {
	return func(o *publishOptions) { o.expireIn = d }
}

// WithRetryLimit sets how many times the job may be retried after expiring.
func WithRetryLimit(n int) PublishOption {
	return func(o *publishOptions) { o.retryLimit = n }
}

// WithSingletonKey enforces at-most-one non-terminal job sharing (name, key).
func WithSingletonKey(key string) PublishOption {
	return func(o *publishOptions) { o.singletonKey = key }
}

// WithSingletonSeconds sets the throttling bucket width directly.
func WithSingletonSeconds(n int64) PublishOption {
	return func(o *publishOptions) { o.singletonSeconds = n }
}

// WithSingletonMinutes sets the throttling bucket width in minutes.
func WithSingletonMinutes(n int64) PublishOption {
	return func(o *publishOptions) { o.singletonSeconds = n * 60 }
}

// WithSingletonHours sets the throttling bucket width in hours.
func WithSingletonHours(n int64) PublishOption {
	return func(o *publishOptions) { o.singletonSeconds = n * 3600 }
}

// WithSingletonDays sets the throttling bucket width in days.
func WithSingletonDays(n int64) PublishOption {
	return func(o *publishOptions) { o.singletonSeconds = n * 86400 }
}

// WithSingletonNextSlot, when the current bucket is occupied, places the
// duplicate publish in the next bucket instead of suppressing it.
func WithSingletonNextSlot() PublishOption {
	return func(o *publishOptions) { o.singletonNextSlot = true }
}

// SubscribeOption configures a Subscribe call.
type SubscribeOption func(*subscribeOptions)

// WithTeamSize sets how many worker goroutines poll for this subscription.
func WithTeamSize(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.teamSize = n }
}

// WithNewJobCheckInterval sets the poll interval directly.
func WithNewJobCheckInterval(d time.Duration) SubscribeOption {
	return func(o *subscribeOptions) { o.newJobCheckInterval = d }
}

// WithNewJobCheckIntervalSeconds sets the poll interval in whole seconds.
func WithNewJobCheckIntervalSeconds(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.newJobCheckInterval = time.Duration(n) * time.Second }
}
