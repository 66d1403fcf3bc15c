package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeWarmer struct {
	mu     sync.Mutex
	limits []int
	err    error
}

func (f *fakeWarmer) Warm(_ context.Context, limit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.err
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	if _, err := New("not a cron spec", &fakeWarmer{}, 3); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}

func TestRunOnceWarmsWithConfiguredLimit(t *testing.T) {
	w := &fakeWarmer{}
	s, err := New("*/30 * * * *", w, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.RunOnce()

	w.err = errors.New("partial failure")
	s.RunOnce()

	if len(w.limits) != 2 || w.limits[0] != 5 || w.limits[1] != 5 {
		t.Fatalf("unexpected warm calls: %v", w.limits)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s, err := New("@every 1h", &fakeWarmer{}, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := s.Stop()
	<-ctx.Done()
}
