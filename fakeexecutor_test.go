package jobflow

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
)

// fakeResult is a hand-rolled sql.Result, used because the standard library
// gives no way to construct one outside database/sql/driver.
type fakeResult struct {
	rowsAffected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// execCall records one ExecContext invocation for assertions.
type execCall struct {
	query string
	args  []any
}

// fakeExecutor is a minimal SQLExecutor test double. It only implements
// ExecContext, which covers Complete, Cancel, the expire sweep, and
// singleton-free publishes. *sql.Tx has no exported constructor, so the two
// BeginTx-backed paths — fetchNextJob's locking claim, and a singleton-keyed
// publish's locking occupied-slot check — are exercised instead by
// integration_test.go against a real MySQL container.
type fakeExecutor struct {
	mu sync.Mutex

	// execFn computes the result for each ExecContext call. Defaults to
	// always reporting one row affected.
	execFn func(query string, args []any) (sql.Result, error)

	calls []execCall
}

func (f *fakeExecutor) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, execCall{query: query, args: args})
	fn := f.execFn
	f.mu.Unlock()

	if fn != nil {
		return fn(query, args)
	}
	return fakeResult{rowsAffected: 1}, nil
}

func (f *fakeExecutor) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, driver.ErrSkip
}

func (f *fakeExecutor) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (f *fakeExecutor) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, driver.ErrSkip
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeExecutor) lastCall() execCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
