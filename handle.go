package jobflow

import "context"

// JobHandle is bound to one dispatched Job and is the only way a Subscribe
// handler can complete or cancel it, so a handler can never accidentally
// close over the wrong id.
type JobHandle struct {
	id    string
	queue *Queue
}

// ID returns the id of the job this handle was bound to.
func (h *JobHandle) ID() string {
	return h.id
}

// Complete marks the bound job completed. Calling it twice returns ErrNotFound.
func (h *JobHandle) Complete(ctx context.Context) error {
	return h.queue.Complete(ctx, h.id)
}

// Cancel marks the bound job cancelled.
func (h *JobHandle) Cancel(ctx context.Context) error {
	return h.queue.Cancel(ctx, h.id)
}
