package jobflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPollOnceDispatchesFetchedJob(t *testing.T) {
	job := &Job{ID: "job-1", Name: "greet"}
	var responded atomic.Int32

	w := &worker{
		fetch: func() (*Job, error) { return job, nil },
		respond: func(j *Job) {
			if j.ID != job.ID {
				t.Errorf("respond got job %q, want %q", j.ID, job.ID)
			}
			responded.Add(1)
		},
		onError: func(error) { t.Error("onError should not be called") },
	}

	w.pollOnce()

	if responded.Load() != 1 {
		t.Fatalf("respond called %d times, want 1", responded.Load())
	}
}

func TestWorkerPollOnceSkipsWhenNoJob(t *testing.T) {
	w := &worker{
		fetch:   func() (*Job, error) { return nil, nil },
		respond: func(*Job) { t.Error("respond should not be called") },
		onError: func(error) { t.Error("onError should not be called") },
	}

	w.pollOnce()
}

func TestWorkerPollOnceRoutesFetchErrorToOnError(t *testing.T) {
	wantErr := errors.New("connection refused")
	var gotErr error

	w := &worker{
		fetch:   func() (*Job, error) { return nil, wantErr },
		respond: func(*Job) { t.Error("respond should not be called") },
		onError: func(err error) { gotErr = err },
	}

	w.pollOnce()

	if !errors.Is(gotErr, wantErr) {
		t.Fatalf("onError got %v, want %v", gotErr, wantErr)
	}
}

func TestWorkerRunStopsOnContextCancel(t *testing.T) {
	var polls atomic.Int32
	w := &worker{
		interval: time.Millisecond,
		fetch: func() (*Job, error) {
			polls.Add(1)
			return nil, nil
		},
		respond: func(*Job) {},
		onError: func(error) {},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker.run did not return after context cancellation")
	}

	if polls.Load() == 0 {
		t.Fatal("expected at least one poll before cancellation")
	}
}
