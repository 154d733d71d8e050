package app

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/gateway"
)

// Поддерживаемые драйверы хранилища снимков корзины.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string

	GatewayBaseURL   string
	GatewayScriptURL string
	// UseMockGateway подменяет внешние сервисы заказов и платежей моками
	// для локальной разработки и демо-стендов.
	UseMockGateway bool

	CartKey            string
	CartRetention      time.Duration
	CartSweepInterval  time.Duration
	CartSweepBatchSize int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		MetricsAddr: ":9090",

		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,

		GatewayBaseURL:   "http://localhost:4000/api",
		GatewayScriptURL: gateway.DefaultScriptURL,
		UseMockGateway:   true,

		CartKey:            "cart",
		CartRetention:      72 * time.Hour,
		CartSweepInterval:  10 * time.Minute,
		CartSweepBatchSize: 500,

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,
	}
}

// Validate проверяет согласованность конфигурации перед запуском.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage driver requires a DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if !c.UseMockGateway && c.GatewayBaseURL == "" {
		return fmt.Errorf("gateway base URL is required when mocks are disabled")
	}

	return nil
}
