package cartjanitor

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultSweepInterval = 10 * time.Minute
	defaultRetention     = 72 * time.Hour
	defaultBatchSize     = 500
)

var (
	cartSweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_sweep_runs_total",
		Help: "Total number of idle cart sweep runs grouped by result.",
	}, []string{"result"})
	cartSweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_sweep_deleted_total",
		Help: "Total number of deleted idle cart snapshots.",
	})
	cartSweepLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_sweep_last_deleted",
		Help: "Number of deleted cart snapshots during the last sweep run.",
	})
)

// Options задаёт параметры воркера очистки брошенных корзин.
type Options struct {
	Logger    *log.Entry
	Interval  time.Duration
	Retention time.Duration
	BatchSize int
}

// Option настраивает Worker.
type Option func(*Options)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithInterval задаёт интервал между sweep-циклами.
func WithInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.Interval = interval
	}
}

// WithRetention задаёт срок, после которого неактивная корзина считается брошенной.
func WithRetention(retention time.Duration) Option {
	return func(opts *Options) {
		opts.Retention = retention
	}
}

// WithBatchSize задаёт размер batch для одного удаления.
func WithBatchSize(batchSize int) Option {
	return func(opts *Options) {
		opts.BatchSize = batchSize
	}
}

// Worker периодически удаляет снимки корзин, не менявшиеся дольше retention.
type Worker struct {
	store     domain.CartStore
	logger    *log.Entry
	interval  time.Duration
	retention time.Duration
	batchSize int
}

// NewWorker создаёт воркер очистки брошенных корзин.
func NewWorker(store domain.CartStore, options ...Option) *Worker {
	opts := Options{
		Interval:  defaultSweepInterval,
		Retention: defaultRetention,
		BatchSize: defaultBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-janitor")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	return &Worker{
		store:     store,
		logger:    logger,
		interval:  opts.Interval,
		retention: opts.Retention,
		batchSize: opts.BatchSize,
	}
}

// Run запускает периодическую очистку до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.store == nil {
		w.logger.Warn("cart janitor is disabled: store is nil")
		return
	}

	w.sweep(ctx, time.Now().UTC().Add(-w.retention))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx, time.Now().UTC().Add(-w.retention))
		}
	}
}

func (w *Worker) sweep(ctx context.Context, before time.Time) {
	deleted, err := w.SweepIdle(ctx, before)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cartSweepRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("cart sweep run failed")
		return
	}

	cartSweepRunsTotal.WithLabelValues("ok").Inc()
	cartSweepLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("idle cart sweep completed")
	}
}

// SweepIdle удаляет все снимки с updated_at <= before порциями batchSize.
func (w *Worker) SweepIdle(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC().Add(-w.retention)
	}

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		deleted, err := w.store.DeleteIdle(before, w.batchSize)
		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted > 0 {
			cartSweepDeletedTotal.Add(float64(deleted))
		}

		if deleted < w.batchSize {
			break
		}
	}

	return totalDeleted, nil
}
