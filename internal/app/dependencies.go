package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/gateway"
	"github.com/vladislavdragonenkov/storefront/internal/identity"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	CartStore    domain.CartStore
	Cart         *cart.Ledger
	Identity     domain.IdentityProvider
	Catalog      domain.CatalogProvider
	Orders       domain.OrderService
	Payments     domain.PaymentGateway
	Script       domain.ScriptLoader
	Widget       domain.GatewayWidget
	OutboxRepo   domain.OutboxRepository
	TimelineRepo domain.TimelineRepository
	Logger       *log.Entry
}

// NewDependencies создаёт зависимости с in-memory хранилищем и mock-шлюзом.
// NOTE: В production окружении сервисы заказов и платежей должны быть
// заменены на реальные HTTP-клиенты через initGateway.
func NewDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	cartStore := memory.NewCartStore()

	return &Dependencies{
		CartStore:    cartStore,
		Cart:         cart.NewLedger(cartStore, "cart", logger.WithField("component", "cart")),
		Identity:     identity.NewStaticProvider(),
		Catalog:      catalog.NewDefaultProvider(),
		Orders:       gateway.NewMockOrderService(),
		Payments:     gateway.NewMockPaymentGateway(),
		Script:       &gateway.MockScriptLoader{},
		Widget:       gateway.NewMockWidget(),
		OutboxRepo:   memory.NewOutboxRepository(),
		TimelineRepo: memory.NewTimelineRepository(),
		Logger:       logger,
	}
}
