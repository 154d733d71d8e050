package gateway

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CircuitState — состояние предохранителя.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker отключает внешний шлюз после серии ошибок и
// приоткрывается после resetTimeout для пробного запроса.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	logger       *log.Entry

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       CircuitState
}

// NewCircuitBreaker создаёт новый circuit breaker.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, logger *log.Entry) *CircuitBreaker {
	if logger == nil {
		logger = log.New().WithField("component", "circuit-breaker")
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		logger:       logger,
	}
}

// State возвращает текущее состояние предохранителя.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute выполняет операцию через circuit breaker.
func (cb *CircuitBreaker) Execute(operation string, fn func() error) error {
	cb.mu.Lock()
	if cb.state == CircuitOpen {
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.logger.WithField("operation", operation).Info("circuit breaker half-open")
		} else {
			cb.mu.Unlock()
			return domain.ErrCircuitOpen
		}
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()

		if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = CircuitOpen
			cb.logger.WithFields(log.Fields{
				"operation": operation,
				"failures":  cb.failures,
			}).Warn("circuit breaker opened")
		}
		return err
	}

	if cb.state == CircuitHalfOpen {
		cb.state = CircuitClosed
		cb.logger.WithField("operation", operation).Info("circuit breaker closed")
	}
	cb.failures = 0
	return nil
}

// BreakerGateway оборачивает PaymentGateway предохранителем: при открытой
// цепи сетевые шаги отклоняются сразу с ErrCircuitOpen.
type BreakerGateway struct {
	next    domain.PaymentGateway
	breaker *CircuitBreaker
}

// NewBreakerGateway создаёт защищённый предохранителем платёжный шлюз.
func NewBreakerGateway(next domain.PaymentGateway, breaker *CircuitBreaker) *BreakerGateway {
	return &BreakerGateway{next: next, breaker: breaker}
}

func (g *BreakerGateway) CreatePaymentSession(ctx context.Context, orderID string) (domain.PaymentSession, error) {
	var session domain.PaymentSession
	err := g.breaker.Execute(string(domain.CheckoutStepCreateSession), func() error {
		var innerErr error
		session, innerErr = g.next.CreatePaymentSession(ctx, orderID)
		return innerErr
	})
	return session, err
}

func (g *BreakerGateway) VerifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	return g.breaker.Execute(string(domain.CheckoutStepVerify), func() error {
		return g.next.VerifyPayment(ctx, confirmation)
	})
}

// ReportFailure не проходит через предохранитель: отчёт best-effort
// не должен открывать цепь и не должен блокироваться ею.
func (g *BreakerGateway) ReportFailure(ctx context.Context, orderID, reason string) error {
	return g.next.ReportFailure(ctx, orderID, reason)
}

// BreakerOrderService оборачивает OrderService предохранителем.
type BreakerOrderService struct {
	next    domain.OrderService
	breaker *CircuitBreaker
}

// NewBreakerOrderService создаёт защищённый предохранителем сервис заказов.
func NewBreakerOrderService(next domain.OrderService, breaker *CircuitBreaker) *BreakerOrderService {
	return &BreakerOrderService{next: next, breaker: breaker}
}

func (s *BreakerOrderService) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	var order domain.Order
	err := s.breaker.Execute(string(domain.CheckoutStepCreateOrder), func() error {
		var innerErr error
		order, innerErr = s.next.CreateOrder(ctx, draft)
		return innerErr
	})
	return order, err
}

func (s *BreakerOrderService) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.breaker.Execute("list_orders", func() error {
		var innerErr error
		orders, innerErr = s.next.ListMyOrders(ctx)
		return innerErr
	})
	return orders, err
}

var (
	_ domain.PaymentGateway = (*BreakerGateway)(nil)
	_ domain.OrderService   = (*BreakerOrderService)(nil)
)
