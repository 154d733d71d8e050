package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartSnapshot хранит значение и отметку последней активности.
type cartSnapshot struct {
	value     string
	updatedAt time.Time
}

// cartStoreInMemory — простая in-memory реализация CartStore.
type cartStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]cartSnapshot
	// now подменяется в тестах для контроля времени.
	now func() time.Time
}

// NewCartStore возвращает in-memory хранилище снимков корзины
// для локальной разработки и тестов.
func NewCartStore() domain.CartStore {
	return &cartStoreInMemory{
		items: make(map[string]cartSnapshot),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewCartStoreWithClock создаёт хранилище с подменяемыми часами (для тестов).
func NewCartStoreWithClock(now func() time.Time) domain.CartStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &cartStoreInMemory{
		items: make(map[string]cartSnapshot),
		now:   now,
	}
}

// Get возвращает снимок или ErrCartSnapshotNotFound, если его нет.
func (s *cartStoreInMemory) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.items[key]
	if !ok {
		return "", domain.ErrCartSnapshotNotFound
	}
	return snapshot.value, nil
}

// Set сохраняет снимок и обновляет отметку активности.
func (s *cartStoreInMemory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = cartSnapshot{value: value, updatedAt: s.now()}
	return nil
}

// Remove удаляет снимок; отсутствие ключа не является ошибкой.
func (s *cartStoreInMemory) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// DeleteIdle удаляет до limit снимков, не менявшихся с before.
func (s *cartStoreInMemory) DeleteIdle(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, snapshot := range s.items {
		if snapshot.updatedAt.After(before) {
			continue
		}
		delete(s.items, key)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}

	return removed, nil
}

var _ domain.CartStore = (*cartStoreInMemory)(nil)
