package healthcheck

import (
	"context"
	"sync"
	"time"
)

// mockChecker provides a configurable checker for tests
type mockChecker struct {
	status    Status
	message   string
	delay     time.Duration
	callCount int
	mu        sync.Mutex
}

func newMockChecker(status Status) *mockChecker {
	return &mockChecker{status: status}
}

func (m *mockChecker) withMessage(message string) *mockChecker {
	m.message = message
	return m
}

func (m *mockChecker) withDelay(delay time.Duration) *mockChecker {
	m.delay = delay
	return m
}

func (m *mockChecker) Check(ctx context.Context) Check {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	start := time.Now()
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return Check{
				Status:      StatusUnhealthy,
				Message:     "Context cancelled",
				LastChecked: start,
				Duration:    time.Since(start),
			}
		}
	}

	return Check{
		Status:      m.status,
		Message:     m.message,
		LastChecked: start,
		Duration:    time.Since(start),
	}
}

func (m *mockChecker) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

type recordingRecorder struct {
	mu     sync.Mutex
	checks []Check
}

func (r *recordingRecorder) RecordCheck(check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, check)
}
