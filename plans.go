package jobflow

import "fmt"

// planSet holds the prepared SQL text for every operation the Queue issues
// against the store, keyed by operation name. It is built once, in New,
// from Config.Schema.
type planSet struct {
	fetchNextJob string
	// claimJob is the second half of the fetchNextJob transaction (mark the
	// locked row active); it exists as its own statement because MySQL has
	// no UPDATE ... RETURNING.
	claimJob  string
	expireJob string
	// singletonCheck and insertJob are the two halves of a publish that
	// carries a singleton key. singletonCheck takes a gap lock on the
	// (name, singleton_key) range via FOR UPDATE so a concurrent publish
	// sharing the same key and bucket blocks on it instead of racing an
	// unlocked read; insertJob only runs once that lock confirms the slot
	// is free. A publish with no singleton key skips singletonCheck
	// entirely and runs insertJob directly outside a transaction.
	singletonCheck string
	insertJob      string
	completeJob    string
	cancelJob      string
}

// buildPlans is a pure function mapping a schema name to the plan set for
// that schema. Plans are opaque prepared SQL text keyed by operation, built
// once per Queue rather than per call.
func buildPlans(schema string) planSet {
	table := fmt.Sprintf("`%s`.`jobs`", schema)

	return planSet{
		fetchNextJob: fmt.Sprintf(`
			SELECT id, name, data, state, retry_limit, retry_count,
			       start_after, expire_in, singleton_key, singleton_on,
			       created_at, started_at, completed_at
			FROM %s
			WHERE name = ?
			  AND state IN ('created', 'retry', 'expired')
			  AND start_after <= NOW()
			ORDER BY start_after
			LIMIT 1
			FOR UPDATE SKIP LOCKED`, table),

		claimJob: fmt.Sprintf(`
			UPDATE %s
			SET state = 'active', started_at = NOW()
			WHERE id = ?`, table),

		expireJob: fmt.Sprintf(`
			UPDATE %s
			SET state = 'expired'
			WHERE state = 'active'
			  AND started_at IS NOT NULL
			  AND NOW() >= started_at + INTERVAL expire_in SECOND`, table),

		// singletonCheck's 5 placeholders are: name, singleton_key,
		// singletonSeconds, singletonOffset, singletonSeconds — the same
		// bucket arithmetic the old combined plan used, now run as its own
		// locking read. See singletonCheckArgs in queries.go. It must run
		// inside a transaction so the FOR UPDATE lock holds until the
		// caller either inserts or rolls back. With singletonSeconds = 0 both
		// bucket expressions are NULL, and the null-safe <=> treats them as
		// equal, so a key with no bucket width matches any non-terminal row.
		singletonCheck: fmt.Sprintf(`
			SELECT 1 FROM %s
			WHERE name = ?
			  AND singleton_key = ?
			  AND state NOT IN ('completed', 'cancelled')
			  AND FLOOR(UNIX_TIMESTAMP(created_at) / ?) <=> FLOOR((UNIX_TIMESTAMP(NOW()) + ?) / ?)
			LIMIT 1
			FOR UPDATE`, table),

		// insertJob's 8 placeholders are the column values, in order: id,
		// name, retry_limit, start_after, expire_in, data, singleton_key,
		// singleton_on. See insertArgs in queries.go. Unconditional: the
		// singleton slot check, when there is one, already ran and held its
		// lock in the same transaction before this executes.
		insertJob: fmt.Sprintf(`
			INSERT INTO %s
			  (id, name, retry_limit, start_after, expire_in, data,
			   singleton_key, singleton_on, state, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'created', NOW())`, table),

		completeJob: fmt.Sprintf(`
			UPDATE %s
			SET state = 'completed', completed_at = NOW()
			WHERE id = ? AND state = 'active'`, table),

		cancelJob: fmt.Sprintf(`
			UPDATE %s
			SET state = 'cancelled', completed_at = NOW()
			WHERE id = ? AND state NOT IN ('completed', 'cancelled')`, table),
	}
}
