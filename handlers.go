package jobflow

import "context"

// JobHandler processes one dispatched Job. Returning a non-nil error routes
// it to the Error event; it does not retry or complete the job — the
// handler calls handle.Complete or handle.Cancel itself.
type JobHandler func(ctx context.Context, job Job, handle *JobHandle) error
