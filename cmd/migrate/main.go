package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

const (
	envPostgresDSN = "STOREFRONT_POSTGRES_DSN"

	defaultTimeout = 30 * time.Second
)

func main() {
	var (
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: "+envPostgresDSN+")")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv(envPostgresDSN))
	}
	if dsn == "" {
		fail("%s (or -dsn) is required", envPostgresDSN)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	summary, err := run(ctx, direction, steps, dsn)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(summary)
}

// run применяет команду миграции и возвращает человекочитаемую сводку.
func run(ctx context.Context, direction string, steps int, dsn string) (string, error) {
	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate up failed: %w", err)
		}
		return statusSummary(ctx, store, "migrate up ok")
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate down failed: %w", err)
		}
		return statusSummary(ctx, store, "migrate down ok")
	case "status":
		return statusSummary(ctx, store, "migration status")
	default:
		return "", fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}
}

func statusSummary(ctx context.Context, store *postgres.Store, prefix string) (string, error) {
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("migration status failed: %w", err)
	}
	return fmt.Sprintf("%s: version=%d applied=%d", prefix, version, count), nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
