package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitStorage_Memory(t *testing.T) {
	logger := log.WithField("test", "storage")

	cfg := DefaultConfig()
	storage, err := initStorage(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("initStorage failed: %v", err)
	}

	if storage.CartStore == nil {
		t.Error("CartStore should not be nil")
	}
	if storage.OutboxRepo == nil {
		t.Error("OutboxRepo should not be nil")
	}
	if storage.TimelineRepo == nil {
		t.Error("TimelineRepo should not be nil")
	}
	if storage.PG != nil {
		t.Error("memory driver must not open postgres")
	}

	// Close безопасен для memory-бэкенда.
	storage.Close(logger)
}

func TestInitStorage_EmptyDriverFallsBackToMemory(t *testing.T) {
	logger := log.WithField("test", "storage")

	cfg := DefaultConfig()
	cfg.StorageDriver = ""
	storage, err := initStorage(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("initStorage failed: %v", err)
	}
	if storage.PG != nil {
		t.Error("empty driver must not open postgres")
	}
}

func TestInitStorage_UnknownDriver(t *testing.T) {
	logger := log.WithField("test", "storage")

	cfg := DefaultConfig()
	cfg.StorageDriver = "redis"
	if _, err := initStorage(context.Background(), cfg, logger); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}
