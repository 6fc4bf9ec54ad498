package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTimer_DurationIsMonotonic(t *testing.T) {
	timer := NewTimer()

	time.Sleep(10 * time.Millisecond)
	first := timer.Duration()
	time.Sleep(10 * time.Millisecond)
	second := timer.Duration()

	assert.Greater(t, second, first)
}

// TestTimer_ObservesRaftApplyDuration exercises the timer against the
// package's registered RaftApplyDuration histogram rather than a
// throwaway test histogram.
func TestTimer_ObservesRaftApplyDuration(t *testing.T) {
	before := testutil.CollectAndCount(RaftApplyDuration)

	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration(RaftApplyDuration)

	after := testutil.CollectAndCount(RaftApplyDuration)
	assert.Equal(t, before+1, after)
}

// TestTimer_ObservesFacadeRequestDurationByMethod exercises
// ObserveDurationVec against the package's registered per-method
// FacadeRequestDuration histogram.
func TestTimer_ObservesFacadeRequestDurationByMethod(t *testing.T) {
	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDurationVec(FacadeRequestDuration, "SendMessage")

	count := testutil.CollectAndCount(FacadeRequestDuration, "relay_facade_request_duration_seconds")
	assert.GreaterOrEqual(t, count, 1)
}

func TestTimer_CommitWaitDurationReflectsElapsedTime(t *testing.T) {
	timer := NewTimer()
	time.Sleep(20 * time.Millisecond)
	elapsed := timer.Duration()
	timer.ObserveDuration(FacadeCommitWaitDuration)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, time.Second, "commit-wait timer should not drift wildly in a unit test")
}
