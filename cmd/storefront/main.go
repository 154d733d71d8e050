package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/app"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const (
	envMetricsAddr         = "STOREFRONT_METRICS_ADDR"
	envStorageDriver       = "STOREFRONT_STORAGE_DRIVER"
	envPostgresDSN         = "STOREFRONT_POSTGRES_DSN"
	envPostgresAutoMigrate = "STOREFRONT_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "STOREFRONT_KAFKA_BROKERS"
	envGatewayBaseURL      = "STOREFRONT_GATEWAY_BASE_URL"
	envGatewayScriptURL    = "STOREFRONT_GATEWAY_SCRIPT_URL"
	envUseMockGateway      = "STOREFRONT_USE_MOCK_GATEWAY"
	envCartKey             = "STOREFRONT_CART_KEY"
	envCartRetention       = "STOREFRONT_CART_RETENTION"
	envCartSweepInterval   = "STOREFRONT_CART_SWEEP_INTERVAL"
	envCartSweepBatchSize  = "STOREFRONT_CART_SWEEP_BATCH_SIZE"
	envOutboxPollInterval  = "STOREFRONT_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize     = "STOREFRONT_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts   = "STOREFRONT_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay    = "STOREFRONT_OUTBOX_RETRY_DELAY"
)

// lookupFunc абстрагирует os.LookupEnv для тестов.
type lookupFunc func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения из переменных окружения.
// Некорректные значения не прерывают запуск: значение по умолчанию остаётся,
// а предупреждение попадает в возвращаемый срез.
func readConfigFromEnv(lookup lookupFunc) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	readString(lookup, envMetricsAddr, &cfg.MetricsAddr)
	readLowerString(lookup, envStorageDriver, &cfg.StorageDriver)
	readString(lookup, envPostgresDSN, &cfg.PostgresDSN)
	readBool(lookup, envPostgresAutoMigrate, &cfg.PostgresAutoMigrate, &warnings)
	readString(lookup, envKafkaBrokers, &cfg.KafkaBrokers)
	readString(lookup, envGatewayBaseURL, &cfg.GatewayBaseURL)
	readString(lookup, envGatewayScriptURL, &cfg.GatewayScriptURL)
	readBool(lookup, envUseMockGateway, &cfg.UseMockGateway, &warnings)
	readString(lookup, envCartKey, &cfg.CartKey)
	readDuration(lookup, envCartRetention, &cfg.CartRetention, &warnings)
	readDuration(lookup, envCartSweepInterval, &cfg.CartSweepInterval, &warnings)
	readInt(lookup, envCartSweepBatchSize, &cfg.CartSweepBatchSize, &warnings)
	readDuration(lookup, envOutboxPollInterval, &cfg.OutboxPollInterval, &warnings)
	readInt(lookup, envOutboxBatchSize, &cfg.OutboxBatchSize, &warnings)
	readInt(lookup, envOutboxMaxAttempts, &cfg.OutboxMaxAttempts, &warnings)
	readNonNegativeDuration(lookup, envOutboxRetryDelay, &cfg.OutboxRetryDelay, &warnings)

	return cfg, warnings
}

func readString(lookup lookupFunc, key string, target *string) {
	if raw, ok := lookup(key); ok {
		if value := strings.TrimSpace(raw); value != "" {
			*target = value
		}
	}
}

func readLowerString(lookup lookupFunc, key string, target *string) {
	if raw, ok := lookup(key); ok {
		if value := strings.ToLower(strings.TrimSpace(raw)); value != "" {
			*target = value
		}
	}
}

func readBool(lookup lookupFunc, key string, target *bool, warnings *[]string) {
	raw, ok := lookup(key)
	if !ok {
		return
	}

	value, err := parseBool(raw)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s: %v", key, err))
		return
	}
	*target = value
}

func readInt(lookup lookupFunc, key string, target *int, warnings *[]string) {
	raw, ok := lookup(key)
	if !ok {
		return
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s: expected positive integer, got %q", key, raw))
		return
	}
	*target = value
}

func readDuration(lookup lookupFunc, key string, target *time.Duration, warnings *[]string) {
	raw, ok := lookup(key)
	if !ok {
		return
	}

	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s: expected positive duration, got %q", key, raw))
		return
	}
	*target = value
}

func readNonNegativeDuration(lookup lookupFunc, key string, target *time.Duration, warnings *[]string) {
	raw, ok := lookup(key)
	if !ok {
		return
	}

	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s: expected non-negative duration, got %q", key, raw))
		return
	}
	*target = value
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %q", raw)
	}
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warnf("конфигурация: %s", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"version":        version.String(),
	}).Info("запускаем storefront")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("storefront остановлен")
}
