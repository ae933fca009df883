package jobflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Queue is the top-level coordinator: it owns the config, the executor
// handle, the worker registry and the expiration timer, and exposes
// Publish/Subscribe/Fetch/Complete/Cancel.
type Queue struct {
	cfg   *Config
	plans planSet
	bus   eventBus

	mu            sync.Mutex
	ctx           context.Context
	cancel        context.CancelFunc
	group         *errgroup.Group
	monitorCancel context.CancelFunc

	stopped atomic.Bool
}

// New constructs a Queue. Executor and Schema are required; every other
// Config field has a documented default applied by setDefaults.
func New(cfg Config) (*Queue, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("%w: Executor is required", ErrInvalidArgument)
	}
	if cfg.Schema == "" {
		return nil, fmt.Errorf("%w: Schema is required", ErrInvalidArgument)
	}
	cfg.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	return &Queue{
		cfg:    &cfg,
		plans:  buildPlans(cfg.Schema),
		ctx:    gctx,
		cancel: cancel,
		group:  group,
	}, nil
}

// OnJob registers a listener invoked once per job dispatched to a Subscribe handler.
func (q *Queue) OnJob(fn func(Job)) { q.bus.onJob(fn) }

// OnExpired registers a listener invoked after each non-zero expire sweep.
func (q *Queue) OnExpired(fn func(int)) { q.bus.onExpired(fn) }

// OnError registers a listener invoked on every asynchronous failure:
// callback errors/panics, and Monitor sweep errors.
func (q *Queue) OnError(fn func(error)) { q.bus.onError(fn) }

// Publish validates name and data, normalizes opts, and inserts a new job.
// It returns the new id, or "" with a nil error when a singleton publish
// was suppressed.
func (q *Queue) Publish(ctx context.Context, name string, data any, opts ...PublishOption) (id string, err error) {
	if verr := validateName(name); verr != nil {
		return "", verr
	}
	if verr := checkNotCallable(data); verr != nil {
		return "", verr
	}

	po := defaultPublishOptions()
	for _, opt := range opts {
		opt(&po)
	}
	retryLimit, rerr := validateRetryLimit(po.retryLimit)
	if rerr != nil {
		return "", rerr
	}
	po.retryLimit = retryLimit

	ctx, span := q.startSpan(ctx, "publish", attribute.String("job.name", name))
	defer func() { endSpan(span, err) }()

	id, err = q.doPublish(ctx, name, data, po)
	if err != nil {
		q.cfg.logError(LogEvent{Message: "publish failed", JobName: name, Err: err})
		return "", err
	}
	if id == "" {
		q.cfg.logInfo(LogEvent{Message: "publish suppressed by singleton", JobName: name})
	} else {
		q.cfg.logInfo(LogEvent{Message: "published", JobID: id, JobName: name})
	}
	return id, nil
}

// PublishRequest is the struct form of Publish, for callers that prefer to
// pass one value instead of a variadic option list.
type PublishRequest struct {
	Name    string
	Data    any
	Options []PublishOption
}

// PublishJob is the struct-argument overload of Publish.
func (q *Queue) PublishJob(ctx context.Context, req PublishRequest) (string, error) {
	return q.Publish(ctx, req.Name, req.Data, req.Options...)
}

func (q *Queue) doPublish(ctx context.Context, name string, data any, po publishOptions) (string, error) {
	dataJSON, err := marshalData(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	id := q.cfg.IDFactory()
	startAfter := time.Now().Add(po.startIn)

	var singletonOn *time.Time
	if po.singletonKey != "" && po.singletonSeconds > 0 {
		t := startAfter
		singletonOn = &t
	}

	inserted, err := q.insertJob(ctx, id, name, po.retryLimit, startAfter, po.expireIn, dataJSON,
		po.singletonKey, singletonOn, po.singletonSeconds, po.singletonOffset)
	if err != nil {
		return "", err
	}
	if inserted {
		return id, nil
	}

	// Suppressed by the singleton check. The retry uses
	// singletonOffset := singletonSeconds (relative to now), not
	// 2×singletonSeconds (relative to the occupied slot), and it recurses
	// exactly once.
	if po.singletonNextSlot && !po.retriedNextSlot {
		po.startIn = time.Duration(po.singletonSeconds) * time.Second
		po.singletonOffset = po.singletonSeconds
		po.retriedNextSlot = true
		return q.doPublish(ctx, name, data, po)
	}
	return "", nil
}

// Subscribe spawns TeamSize worker goroutines (default 1) that poll Fetch
// for name and hand eligible jobs to handler. It returns once the workers
// have been launched; it does not block for the queue's lifetime.
func (q *Queue) Subscribe(ctx context.Context, name string, handler JobHandler, opts ...SubscribeOption) error {
	if q.stopped.Load() {
		return ErrAlreadyStopped
	}
	if err := validateName(name); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: handler must not be nil", ErrInvalidArgument)
	}

	so := defaultSubscribeOptions(q.cfg)
	for _, opt := range opts {
		opt(&so)
	}
	teamSize, err := validateTeamSize(so.teamSize)
	if err != nil {
		return err
	}
	interval, err := applyNewJobCheckInterval(so.newJobCheckInterval, 0)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = q.cfg.NewJobCheckInterval
	}

	fetch := func() (*Job, error) { return q.Fetch(ctx, name) }
	respond := q.makeResponder(ctx, handler)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped.Load() {
		return ErrAlreadyStopped
	}
	q.cfg.logInfo(LogEvent{Message: fmt.Sprintf("subscribing with %d worker(s)", teamSize), JobName: name})
	onError := func(err error) {
		q.cfg.logError(LogEvent{Message: "poll failed", JobName: name, Err: err})
		q.bus.emitError(err)
	}
	q.spawnWorkers(teamSize, func() *worker {
		return &worker{
			interval: interval,
			fetch:    fetch,
			respond:  respond,
			onError:  onError,
		}
	})
	return nil
}

// makeResponder emits a Job event, then defers the user handler to its own
// goroutine so a slow handler never stalls the worker's next poll. A
// panicking or erroring handler is routed to the Error event and never
// kills the worker.
func (q *Queue) makeResponder(ctx context.Context, handler JobHandler) func(*Job) {
	return func(j *Job) {
		q.bus.emitJob(*j)
		go func(job Job) {
			defer func() {
				if r := recover(); r != nil {
					q.bus.emitError(fmt.Errorf("jobflow: handler panicked for job %s: %v", job.ID, r))
				}
			}()
			handle := &JobHandle{id: job.ID, queue: q}
			if err := handler(ctx, job, handle); err != nil {
				q.bus.emitError(err)
			}
		}(*j)
	}
}

// Fetch atomically claims and returns one eligible job named name, or nil if
// none is eligible. Tie-breaking between concurrent callers is delegated to
// the store's FOR UPDATE SKIP LOCKED semantics.
func (q *Queue) Fetch(ctx context.Context, name string) (job *Job, err error) {
	if verr := validateName(name); verr != nil {
		return nil, verr
	}

	ctx, span := q.startSpan(ctx, "fetch", attribute.String("job.name", name))
	defer func() { endSpan(span, err) }()

	job, err = q.fetchNextJob(ctx, name)
	return job, err
}

// Complete marks id completed. It fails with ErrNotFound if id is not
// currently active — including on a second call for the same id.
func (q *Queue) Complete(ctx context.Context, id string) (err error) {
	ctx, span := q.startSpan(ctx, "complete", attribute.String("job.id", id))
	defer func() { endSpan(span, err) }()
	return q.finish(ctx, q.plans.completeJob, id)
}

// Cancel marks id cancelled, unless it is already completed or cancelled.
func (q *Queue) Cancel(ctx context.Context, id string) (err error) {
	ctx, span := q.startSpan(ctx, "cancel", attribute.String("job.id", id))
	defer func() { endSpan(span, err) }()
	return q.finish(ctx, q.plans.cancelJob, id)
}

func (q *Queue) finish(ctx context.Context, plan string, id string) error {
	res, err := q.cfg.Executor.ExecContext(ctx, plan, id)
	if err != nil {
		q.cfg.logError(LogEvent{Message: "finish failed", JobID: id, Err: err})
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		q.cfg.logError(LogEvent{Message: "finish failed", JobID: id, Err: err})
		return err
	}
	if n != 1 {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		q.cfg.logError(LogEvent{Message: "finish found no matching job", JobID: id, Err: err})
		return err
	}
	q.cfg.logInfo(LogEvent{Message: "finished", JobID: id})
	return nil
}

// Monitor runs an initial expire sweep, then re-runs it on a recurring timer
// at Config.ExpireCheckInterval. Sweep errors are routed to the Error event
// and never stop the timer.
func (q *Queue) Monitor(ctx context.Context) error {
	if q.stopped.Load() {
		return ErrAlreadyStopped
	}

	q.cfg.logInfo(LogEvent{Message: "expiration monitor starting"})
	q.runExpireSweep(ctx)

	monitorCtx, cancel := context.WithCancel(ctx)
	q.mu.Lock()
	q.monitorCancel = cancel
	q.mu.Unlock()

	go func() {
		ticker := time.NewTicker(q.cfg.ExpireCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				q.runExpireSweep(monitorCtx)
			}
		}
	}()
	return nil
}

func (q *Queue) runExpireSweep(ctx context.Context) {
	ctx, span := q.startSpan(ctx, "expire")
	res, err := q.cfg.Executor.ExecContext(ctx, q.plans.expireJob)
	if err != nil {
		endSpan(span, err)
		wrapped := fmt.Errorf("jobflow: expire sweep: %w", err)
		q.cfg.logError(LogEvent{Message: "expire sweep failed", Err: wrapped})
		q.bus.emitError(wrapped)
		return
	}
	n, err := res.RowsAffected()
	endSpan(span, err)
	if err != nil {
		wrapped := fmt.Errorf("jobflow: expire sweep: %w", err)
		q.cfg.logError(LogEvent{Message: "expire sweep failed", Err: wrapped})
		q.bus.emitError(wrapped)
		return
	}
	if n > 0 {
		q.cfg.logInfo(LogEvent{Message: fmt.Sprintf("expired %d job(s)", n)})
		q.bus.emitExpired(int(n))
	}
}

// Close stops all workers by cancelling their shared context and waits
// (bounded by ctx) for them to exit. The context and worker group are not
// reset, so workers started by a later Subscribe on this Queue exit at once.
// It does not stop the expiration monitor; call Stop for full shutdown.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	cancel := q.cancel
	group := q.group
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if group == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			q.cfg.logError(LogEvent{Message: "workers exited with error", Err: err})
		} else {
			q.cfg.logInfo(LogEvent{Message: "all workers exited cleanly"})
		}
		return err
	case <-ctx.Done():
		q.cfg.logError(LogEvent{Message: "shutdown deadline exceeded waiting for workers", Err: ctx.Err()})
		return ctx.Err()
	}
}

// Stop stops all workers and cancels the pending expiration timer. It is
// idempotent: a second call observes the stopped flag already set and
// returns nil immediately.
func (q *Queue) Stop(ctx context.Context) error {
	if q.stopped.Swap(true) {
		return nil
	}
	q.cfg.logInfo(LogEvent{Message: "shutdown requested, stopping workers"})

	q.mu.Lock()
	monitorCancel := q.monitorCancel
	q.monitorCancel = nil
	q.mu.Unlock()

	if monitorCancel != nil {
		monitorCancel()
	}
	return q.Close(ctx)
}
