package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/identity"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/cartjanitor"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// Run собирает зависимости по конфигурации, запускает фоновые воркеры и
// HTTP-сервер метрик/health и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.WithField("component", "app")

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close(logger)

	identityProvider := identity.NewStaticProvider()
	integrations := initGateway(cfg, identityProvider, logger)

	deps := &Dependencies{
		CartStore:    storage.CartStore,
		Cart:         cart.NewLedger(storage.CartStore, cfg.CartKey, logger.WithField("component", "cart")),
		Identity:     identityProvider,
		Catalog:      catalog.NewDefaultProvider(),
		Orders:       integrations.Orders,
		Payments:     integrations.Payments,
		Script:       integrations.Script,
		Widget:       integrations.Widget,
		OutboxRepo:   storage.OutboxRepo,
		TimelineRepo: storage.TimelineRepo,
		Logger:       logger,
	}

	// Kafka опционален: без брокеров события остаются в outbox.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	orchestrator := createOrchestrator(deps, kafkaProducer)

	healthHandler := healthcheck.NewHandler(version.String())
	if storage.PG != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", 2*time.Second, storage.PG.Ping))
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var wg sync.WaitGroup

	janitor := cartjanitor.NewWorker(
		deps.CartStore,
		cartjanitor.WithLogger(logger.WithField("component", "cart-janitor")),
		cartjanitor.WithInterval(cfg.CartSweepInterval),
		cartjanitor.WithRetention(cfg.CartRetention),
		cartjanitor.WithBatchSize(cfg.CartSweepBatchSize),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		janitor.Run(workersCtx)
	}()

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicCheckoutEvents)
		dlq := kafka.NewDLQPublisher(kafkaProducer, kafka.TopicCheckoutEvents)

		worker := outbox.NewWorker(
			deps.OutboxRepo,
			publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlq),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(workersCtx)
		}()
	} else {
		logger.Info("kafka is not configured, outbox worker is not started")
	}

	opsSrv := startOpsServer(ctx, cfg.MetricsAddr, logger, healthHandler, orchestrator)

	logger.WithFields(log.Fields{
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("storefront started")

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем воркеры")

	stopWorkers()

	stoppedCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(5 * time.Second):
		logger.Warn("graceful stop превысил таймаут")
	}

	shutdownHTTP(opsSrv, logger)
	return ctx.Err()
}

// newOpsMux собирает маршруты метрик, health-проверок и диагностики
// состояния оформления заказа.
func newOpsMux(healthHandler *healthcheck.Handler, orchestrator checkout.Orchestrator) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/statusz", func(w http.ResponseWriter, _ *http.Request) {
		status := struct {
			State    string `json:"checkout_state"`
			InFlight bool   `json:"checkout_in_flight"`
			LastErr  string `json:"last_error,omitempty"`
		}{
			State:    string(orchestrator.State()),
			InFlight: orchestrator.InFlight(),
		}
		if err := orchestrator.LastError(); err != nil {
			status.LastErr = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	})

	return mux
}

// startOpsServer запускает HTTP-сервер операционных маршрутов.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler, orchestrator checkout.Orchestrator) *http.Server {
	srv := &http.Server{Addr: addr, Handler: newOpsMux(healthHandler, orchestrator)}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("ops server shutdown with error")
	}
}
