package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// storageBackends объединяет репозитории выбранного драйвера хранилища.
type storageBackends struct {
	CartStore    domain.CartStore
	OutboxRepo   domain.OutboxRepository
	TimelineRepo domain.TimelineRepository
	// PG не nil только для драйвера postgres; используется для ping и Close.
	PG *postgres.Store
}

// initStorage выбирает и инициализирует хранилище по конфигурации.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageBackends, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &storageBackends{
			CartStore:    memory.NewCartStore(),
			OutboxRepo:   memory.NewOutboxRepository(),
			TimelineRepo: memory.NewTimelineRepository(),
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}

		logger.Info("using postgres storage")
		return &storageBackends{
			CartStore:    postgres.NewCartStore(store),
			OutboxRepo:   postgres.NewOutboxRepository(store),
			TimelineRepo: postgres.NewTimelineRepository(store),
			PG:           store,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Close освобождает ресурсы хранилища.
func (s *storageBackends) Close(logger *log.Entry) {
	if s == nil || s.PG == nil {
		return
	}
	if err := s.PG.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}
