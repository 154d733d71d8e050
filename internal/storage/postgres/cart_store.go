package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartStore struct {
	db *sql.DB
}

// NewCartStore создаёт PostgreSQL-реализацию CartStore.
func NewCartStore(store *Store) domain.CartStore {
	return &cartStore{db: store.DB()}
}

func (s *cartStore) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM cart_snapshots WHERE key = $1
	`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrCartSnapshotNotFound
		}
		return "", fmt.Errorf("get cart snapshot: %w", err)
	}

	return value, nil
}

func (s *cartStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set cart snapshot: %w", err)
	}

	return nil
}

func (s *cartStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Отсутствие ключа не является ошибкой.
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_snapshots WHERE key = $1
	`, key); err != nil {
		return fmt.Errorf("remove cart snapshot: %w", err)
	}

	return nil
}

func (s *cartStore) DeleteIdle(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = s.db.ExecContext(ctx, `
			DELETE FROM cart_snapshots
			WHERE key IN (
				SELECT key
				FROM cart_snapshots
				WHERE updated_at <= $1
				ORDER BY updated_at ASC
				LIMIT $2
			)
		`, before, limit)
	} else {
		res, err = s.db.ExecContext(ctx, `
			DELETE FROM cart_snapshots
			WHERE updated_at <= $1
		`, before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete idle cart snapshots: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("idle cart snapshots rows affected: %w", err)
	}

	return int(affected), nil
}

var _ domain.CartStore = (*cartStore)(nil)
