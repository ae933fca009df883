package jobflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// fetchNextJob claims one eligible row named name inside a transaction: a
// locking select followed by an update to mark it active, necessary
// because MySQL has no UPDATE ... RETURNING.
func (q *Queue) fetchNextJob(ctx context.Context, name string) (*Job, error) {
	tx, err := q.cfg.Executor.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("jobflow: begin fetch tx: %w", err)
	}

	row := tx.QueryRowContext(ctx, q.plans.fetchNextJob, name)
	job, err := scanJob(row)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("jobflow: fetch job: %w", err)
	}
	job.Name = name

	if _, err := tx.ExecContext(ctx, q.plans.claimJob, job.ID); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("jobflow: claim job %s: %w", job.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("jobflow: commit claim for job %s: %w", job.ID, err)
	}

	now := time.Now()
	job.State = StateActive
	job.StartedAt = &now
	return job, nil
}

// scanJob reads the columns the fetchNextJob plan projects, in the order
// plans.go declares them.
func scanJob(row *sql.Row) (*Job, error) {
	var j Job
	var state string
	var expireInSeconds int64
	var singletonKey sql.NullString

	err := row.Scan(
		&j.ID,
		&j.Name,
		&j.Data,
		&state,
		&j.RetryLimit,
		&j.RetryCount,
		&j.StartAfter,
		&expireInSeconds,
		&singletonKey,
		&j.SingletonOn,
		&j.CreatedAt,
		&j.StartedAt,
		&j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	j.State = State(state)
	j.ExpireIn = time.Duration(expireInSeconds) * time.Second
	j.SingletonKey = singletonKey.String
	return &j, nil
}

// insertArgs builds the positional bind list for plans.insertJob. The
// placeholder count and order must track plans.go's insertJob text exactly.
func insertArgs(id, name string, retryLimit int, startAfter time.Time, expireIn time.Duration, data []byte,
	singletonKey string, singletonOn *time.Time) []any {
	return []any{
		id, name, retryLimit, startAfter, int64(expireIn / time.Second), data, singletonKey, singletonOn,
	}
}

// singletonCheckArgs builds the positional bind list for plans.singletonCheck.
// The placeholder count and order must track plans.go's singletonCheck text
// exactly.
func singletonCheckArgs(name, singletonKey string, singletonSeconds, singletonOffset int64) []any {
	return []any{name, singletonKey, singletonSeconds, singletonOffset, singletonSeconds}
}

// insertJob inserts a new job row, returning false with a nil error when the
// insert was suppressed by an occupied singleton slot. A publish with no
// singleton key runs a plain, untransacted insert. A publish with one opens a
// transaction, takes the singletonCheck lock, and only inserts while still
// holding it: InnoDB's gap lock on the (name, singleton_key) range keeps a
// second, concurrent publish sharing the same key and bucket blocked on the
// same SELECT ... FOR UPDATE until the first transaction commits or rolls
// back, so the two can never both observe the slot as free.
func (q *Queue) insertJob(ctx context.Context, id, name string, retryLimit int, startAfter time.Time,
	expireIn time.Duration, data []byte, singletonKey string, singletonOn *time.Time,
	singletonSeconds, singletonOffset int64) (bool, error) {
	args := insertArgs(id, name, retryLimit, startAfter, expireIn, data, singletonKey, singletonOn)

	if singletonKey == "" {
		res, err := q.cfg.Executor.ExecContext(ctx, q.plans.insertJob, args...)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}

	tx, err := q.cfg.Executor.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("jobflow: begin publish tx: %w", err)
	}

	row := tx.QueryRowContext(ctx, q.plans.singletonCheck, singletonCheckArgs(name, singletonKey, singletonSeconds, singletonOffset)...)
	var occupied int
	switch err := row.Scan(&occupied); {
	case err == nil:
		_ = tx.Rollback()
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		// slot free, fall through to insert while still holding the lock
	default:
		_ = tx.Rollback()
		return false, fmt.Errorf("jobflow: singleton check: %w", err)
	}

	if _, err := tx.ExecContext(ctx, q.plans.insertJob, args...); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("jobflow: insert job %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("jobflow: commit publish for job %s: %w", id, err)
	}
	return true, nil
}

// marshalData serializes a job's payload. A nil value marshals to "null",
// matching encoding/json's ordinary behavior.
func marshalData(data any) ([]byte, error) {
	return json.Marshal(data)
}

// checkNotCallable rejects payloads that are functions or channels. Go's
// json package would otherwise fail to marshal them with a less actionable
// error, so this is caught up front and reported as a caller mistake.
func checkNotCallable(data any) error {
	if data == nil {
		return nil
	}
	switch reflect.TypeOf(data).Kind() {
	case reflect.Func, reflect.Chan:
		return fmt.Errorf("%w: data must not be a function or channel", ErrInvalidArgument)
	}
	return nil
}
