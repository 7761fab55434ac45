package workers

import (
	"testing"
	"time"
)

func TestSuperviseRestartsAfterPanic(t *testing.T) {
	runs := make(chan struct{}, 4)
	Supervise("test-worker", func() {
		runs <- struct{}{}
		panic("boom")
	})

	// The worker must come back after a panic, after the initial backoff.
	for i := 0; i < 2; i++ {
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("worker did not run %d times", i+1)
		}
	}
}

func TestRanSwallowsPanic(t *testing.T) {
	done := false
	ran("test", func() {
		defer func() { done = true }()
		panic("boom")
	})
	if !done {
		t.Fatal("ran should have executed fn to the panic point")
	}
}
