package jobflow

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPlansQuotesSchema(t *testing.T) {
	plans := buildPlans("jobflow_demo")

	for name, plan := range map[string]string{
		"fetchNextJob":   plans.fetchNextJob,
		"claimJob":       plans.claimJob,
		"expireJob":      plans.expireJob,
		"singletonCheck": plans.singletonCheck,
		"insertJob":      plans.insertJob,
		"completeJob":    plans.completeJob,
		"cancelJob":      plans.cancelJob,
	} {
		if !strings.Contains(plan, "`jobflow_demo`.`jobs`") {
			t.Errorf("%s: expected schema-qualified table name, got: %s", name, plan)
		}
	}
}

func TestInsertJobPlaceholderCountMatchesInsertArgs(t *testing.T) {
	plans := buildPlans("jobflow_demo")
	placeholders := strings.Count(plans.insertJob, "?")

	args := insertArgs("id-1", "welcome-email", 3, time.Now(), 15*time.Minute,
		[]byte(`{}`), "user-1", nil)

	if placeholders != len(args) {
		t.Fatalf("insertJob has %d placeholders, insertArgs returned %d values", placeholders, len(args))
	}
}

func TestSingletonCheckPlaceholderCountMatchesSingletonCheckArgs(t *testing.T) {
	plans := buildPlans("jobflow_demo")
	placeholders := strings.Count(plans.singletonCheck, "?")

	args := singletonCheckArgs("welcome-email", "user-1", 60, 0)

	if placeholders != len(args) {
		t.Fatalf("singletonCheck has %d placeholders, singletonCheckArgs returned %d values", placeholders, len(args))
	}
}

func TestSingletonCheckLocksWithForUpdate(t *testing.T) {
	plans := buildPlans("jobflow_demo")
	if !strings.Contains(plans.singletonCheck, "FOR UPDATE") {
		t.Fatalf("singletonCheck should lock the occupied-slot read: %s", plans.singletonCheck)
	}
}

func TestFetchNextJobOnlyConsidersEligibleStates(t *testing.T) {
	plans := buildPlans("jobflow_demo")
	if !strings.Contains(plans.fetchNextJob, "'created', 'retry', 'expired'") {
		t.Fatalf("fetchNextJob should restrict to created/retry/expired states: %s", plans.fetchNextJob)
	}
	if !strings.Contains(plans.fetchNextJob, "FOR UPDATE SKIP LOCKED") {
		t.Fatalf("fetchNextJob should lock with FOR UPDATE SKIP LOCKED: %s", plans.fetchNextJob)
	}
}

func TestCancelJobExcludesTerminalStates(t *testing.T) {
	plans := buildPlans("jobflow_demo")
	if !strings.Contains(plans.cancelJob, "NOT IN ('completed', 'cancelled')") {
		t.Fatalf("cancelJob should exclude completed/cancelled rows: %s", plans.cancelJob)
	}
}
