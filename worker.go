package jobflow

import (
	"context"
	"time"
)

// worker is one long-lived polling loop. It holds three injected
// capabilities (fetch, respond, onError) and one parameter (interval),
// rather than a concrete database dependency, so it can be driven by
// anything that can fetch a job and respond to one.
//
// State machine: idle -> fetching -> {dispatching, idle}; stop is accepted
// from any state and is terminal.
type worker struct {
	interval time.Duration
	fetch    func() (*Job, error)
	respond  func(*Job)
	onError  func(error)
}

// run polls for jobs on interval until ctx is cancelled. It has no error
// result: a failed fetch is reported through onError and the loop continues.
func (w *worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

// pollOnce performs at most one outstanding fetch and hands any claimed job
// to the responder, which is responsible for scheduling the user callback
// so this loop is never blocked by it.
func (w *worker) pollOnce() {
	job, err := w.fetch()
	if err != nil {
		w.onError(err)
		return
	}
	if job == nil {
		return
	}
	w.respond(job)
}
