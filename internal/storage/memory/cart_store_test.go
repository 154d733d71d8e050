package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestCartStore_SetGet(t *testing.T) {
	store := memory.NewCartStore()

	if err := store.Set("cart:alice", `{"items":[]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, err := store.Get("cart:alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != `{"items":[]}` {
		t.Fatalf("unexpected value: %q", value)
	}
}

func TestCartStore_GetMissing(t *testing.T) {
	store := memory.NewCartStore()

	if _, err := store.Get("cart:missing"); !errors.Is(err, domain.ErrCartSnapshotNotFound) {
		t.Fatalf("expected ErrCartSnapshotNotFound, got %v", err)
	}
}

func TestCartStore_Remove(t *testing.T) {
	store := memory.NewCartStore()

	if err := store.Set("cart:alice", "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Remove("cart:alice"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get("cart:alice"); !errors.Is(err, domain.ErrCartSnapshotNotFound) {
		t.Fatalf("expected ErrCartSnapshotNotFound after Remove, got %v", err)
	}
	// Повторное удаление не является ошибкой.
	if err := store.Remove("cart:alice"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestCartStore_DeleteIdle(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewCartStoreWithClock(func() time.Time { return current })

	if err := store.Set("cart:old", "stale"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if err := store.Set("cart:fresh", "active"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	removed, err := store.DeleteIdle(current.Add(-time.Hour), 100)
	if err != nil {
		t.Fatalf("DeleteIdle: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed snapshot, got %d", removed)
	}

	if _, err := store.Get("cart:old"); !errors.Is(err, domain.ErrCartSnapshotNotFound) {
		t.Fatalf("expected stale snapshot removed, got %v", err)
	}
	if _, err := store.Get("cart:fresh"); err != nil {
		t.Fatalf("fresh snapshot must survive: %v", err)
	}
}

func TestCartStore_DeleteIdleRespectsLimit(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewCartStoreWithClock(func() time.Time { return current })

	for _, key := range []string{"cart:a", "cart:b", "cart:c"} {
		if err := store.Set(key, "stale"); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	removed, err := store.DeleteIdle(current.Add(time.Minute), 2)
	if err != nil {
		t.Fatalf("DeleteIdle: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected limit of 2 removals, got %d", removed)
	}
}
