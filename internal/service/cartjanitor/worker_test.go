package cartjanitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

var _ domain.CartStore = (*stubSweepStore)(nil)

func TestWorker_SweepIdle_Batches(t *testing.T) {
	t.Parallel()

	store := &stubSweepStore{
		deleteResults: []int{2, 2, 1},
	}

	worker := NewWorker(store, WithBatchSize(2))

	deleted, err := worker.SweepIdle(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("SweepIdle failed: %v", err)
	}

	if deleted != 5 {
		t.Fatalf("unexpected deleted total: got=%d want=5", deleted)
	}
	if calls := store.calls(); calls != 3 {
		t.Fatalf("unexpected delete calls: got=%d want=3", calls)
	}
}

func TestWorker_SweepIdle_Error(t *testing.T) {
	t.Parallel()

	store := &stubSweepStore{
		deleteErrors: []error{errors.New("boom")},
	}

	worker := NewWorker(store, WithBatchSize(10))

	deleted, err := worker.SweepIdle(context.Background(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected SweepIdle error")
	}
	if deleted != 0 {
		t.Fatalf("unexpected deleted total: got=%d want=0", deleted)
	}
}

func TestWorker_SweepIdle_UsesRetentionCutoff(t *testing.T) {
	t.Parallel()

	store := &stubSweepStore{
		deleteResults: []int{0},
	}

	worker := NewWorker(store, WithRetention(time.Hour), WithBatchSize(10))

	if _, err := worker.SweepIdle(context.Background(), time.Time{}); err != nil {
		t.Fatalf("SweepIdle failed: %v", err)
	}

	cutoff := store.lastBefore()
	if cutoff.IsZero() {
		t.Fatal("expected cutoff to be derived from retention")
	}
	if time.Since(cutoff) < 55*time.Minute {
		t.Fatalf("expected cutoff about an hour in the past, got %v", cutoff)
	}
}

func TestWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := &stubSweepStore{
		deleteResults: []int{0, 0, 0},
	}

	worker := NewWorker(
		store,
		WithInterval(5*time.Millisecond),
		WithBatchSize(10),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	if calls := store.calls(); calls == 0 {
		t.Fatal("expected sweep to be called at least once")
	}
}

type stubSweepStore struct {
	mu sync.Mutex

	deleteResults []int
	deleteErrors  []error
	callCount     int
	before        time.Time
}

func (s *stubSweepStore) Get(string) (string, error) {
	panic("not implemented")
}

func (s *stubSweepStore) Set(string, string) error {
	panic("not implemented")
}

func (s *stubSweepStore) Remove(string) error {
	panic("not implemented")
}

func (s *stubSweepStore) DeleteIdle(before time.Time, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callCount++
	s.before = before

	if len(s.deleteErrors) > 0 {
		err := s.deleteErrors[0]
		s.deleteErrors = s.deleteErrors[1:]
		return 0, err
	}
	if len(s.deleteResults) > 0 {
		deleted := s.deleteResults[0]
		s.deleteResults = s.deleteResults[1:]
		return deleted, nil
	}
	return 0, nil
}

func (s *stubSweepStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

func (s *stubSweepStore) lastBefore() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.before
}
