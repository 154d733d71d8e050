package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"

	defaultPullLimit = 100
)

// outboxRepository хранит события оформления в таблице checkout_outbox
// до их публикации воркером в брокер.
type outboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository создаёт PostgreSQL-реализацию OutboxRepository.
func NewOutboxRepository(store *Store) domain.OutboxRepository {
	return &outboxRepository{db: store.DB()}
}

func (r *outboxRepository) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// Enqueue записывает событие со статусом pending; пустой ID генерируется.
func (r *outboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	ctx, cancel := r.opContext()
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	const insert = `
		INSERT INTO checkout_outbox (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)`
	if _, err := r.db.ExecContext(ctx, insert,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload,
		outboxStatusPending, now,
	); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}

	return msg, nil
}

// PullPending возвращает pending-события в порядке создания (FIFO внутри попытки).
func (r *outboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	ctx, cancel := r.opContext()
	defer cancel()

	if limit <= 0 {
		limit = defaultPullLimit
	}

	const query = `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM checkout_outbox
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, outboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pull pending outbox messages: %w", err)
	}
	defer rows.Close()

	result := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}

	return result, nil
}

// Stats возвращает размер бэклога и возраст самого старого pending-события.
func (r *outboxRepository) Stats() (domain.OutboxStats, error) {
	ctx, cancel := r.opContext()
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)
	const query = `
		SELECT COUNT(*), MIN(created_at)
		FROM checkout_outbox
		WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, query, outboxStatusPending).Scan(&stats.PendingCount, &oldest); err != nil {
		return domain.OutboxStats{}, fmt.Errorf("outbox stats query failed: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}

	return stats, nil
}

func (r *outboxRepository) MarkSent(id string) error {
	return r.markStatus(id, outboxStatusSent)
}

func (r *outboxRepository) MarkFailed(id string) error {
	return r.markStatus(id, outboxStatusFailed)
}

// markStatus переводит событие в терминальный статус и инкрементирует счётчик
// попыток. Неизвестный id трактуется как ошибка публикации.
func (r *outboxRepository) markStatus(id, status string) error {
	ctx, cancel := r.opContext()
	defer cancel()

	const update = `
		UPDATE checkout_outbox
		SET status = $2, attempt_count = attempt_count + 1, updated_at = $3
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, update, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox message as %s: %w", status, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for outbox %s: %w", status, err)
	}
	if affected == 0 {
		return domain.ErrOutboxPublish
	}

	return nil
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
