package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/gateway"
)

const (
	breakerMaxFailures  = 5
	breakerResetTimeout = 30 * time.Second
)

// gatewayBackends объединяет интеграции с внешним сервисом заказов и платёжным шлюзом.
type gatewayBackends struct {
	Orders   domain.OrderService
	Payments domain.PaymentGateway
	Script   domain.ScriptLoader
	Widget   domain.GatewayWidget
}

// initGateway собирает интеграции: моки для разработки либо HTTP-клиенты
// за circuit breaker для реального окружения.
func initGateway(cfg Config, identityProvider domain.IdentityProvider, logger *log.Entry) *gatewayBackends {
	if cfg.UseMockGateway {
		logger.Info("using mock order service and payment gateway")
		return &gatewayBackends{
			Orders:   gateway.NewMockOrderService(),
			Payments: gateway.NewMockPaymentGateway(),
			Script:   &gateway.MockScriptLoader{},
			Widget:   gateway.NewMockWidget(),
		}
	}

	client := gateway.NewClient(cfg.GatewayBaseURL, identityProvider, nil, logger.WithField("component", "gateway-client"))
	breaker := gateway.NewCircuitBreaker(breakerMaxFailures, breakerResetTimeout, logger.WithField("component", "gateway-breaker"))

	logger.WithField("base_url", cfg.GatewayBaseURL).Info("using http gateway client")
	return &gatewayBackends{
		Orders:   gateway.NewBreakerOrderService(client, breaker),
		Payments: gateway.NewBreakerGateway(client, breaker),
		Script:   gateway.NewScriptLoader(cfg.GatewayScriptURL, nil, logger.WithField("component", "script-loader")),
		Widget:   gateway.NewCallbackWidget(logger.WithField("component", "gateway-widget")),
	}
}
