package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MockOrderService — конфигурируемая заглушка OrderService для тестов
// и локальной разработки без живого бэкенда.
type MockOrderService struct {
	Order     domain.Order
	CreateErr error
	ListErr   error

	CreateCalls int
	ListCalls   int
}

// NewMockOrderService возвращает mock с успешным сценарием по умолчанию.
func NewMockOrderService() *MockOrderService {
	return &MockOrderService{
		Order: domain.Order{
			ID:            uuid.NewString(),
			Currency:      "INR",
			PaymentStatus: domain.PaymentStatusPending,
			OrderStatus:   domain.OrderStatusPlaced,
		},
	}
}

// CreateOrder возвращает заранее настроенный заказ и считает вызовы.
func (m *MockOrderService) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return domain.Order{}, m.CreateErr
	}
	order := m.Order
	order.Items = draft.Items
	order.DeliveryLocation = draft.DeliveryLocation
	order.PaymentMethod = draft.PaymentMethod
	return order, nil
}

// ListMyOrders возвращает настроенный список и считает вызовы.
func (m *MockOrderService) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return []domain.Order{m.Order}, nil
}

// MockPaymentGateway — конфигурируемая заглушка PaymentGateway.
type MockPaymentGateway struct {
	Session    domain.PaymentSession
	SessionErr error
	VerifyErr  error
	ReportErr  error

	SessionCalls int
	VerifyCalls  int
	ReportCalls  int
}

// NewMockPaymentGateway возвращает mock с успешным сценарием по умолчанию.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		Session: domain.PaymentSession{
			SessionID:  uuid.NewString(),
			Currency:   "INR",
			GatewayKey: "mock-key",
		},
	}
}

// CreatePaymentSession возвращает настроенную сессию и считает вызовы.
func (m *MockPaymentGateway) CreatePaymentSession(ctx context.Context, orderID string) (domain.PaymentSession, error) {
	m.SessionCalls++
	if m.SessionErr != nil {
		return domain.PaymentSession{}, m.SessionErr
	}
	session := m.Session
	session.OrderID = orderID
	return session, nil
}

// VerifyPayment возвращает настроенный результат и считает вызовы.
func (m *MockPaymentGateway) VerifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	m.VerifyCalls++
	return m.VerifyErr
}

// ReportFailure возвращает настроенный результат и считает вызовы.
func (m *MockPaymentGateway) ReportFailure(ctx context.Context, orderID, reason string) error {
	m.ReportCalls++
	return m.ReportErr
}

// MockScriptLoader — заглушка ScriptLoader.
type MockScriptLoader struct {
	LoadErr   error
	LoadCalls int
}

// Load возвращает настроенный результат и считает вызовы.
func (m *MockScriptLoader) Load(ctx context.Context) error {
	m.LoadCalls++
	return m.LoadErr
}

// MockWidget — заглушка GatewayWidget, которая сразу отдаёт настроенное событие.
type MockWidget struct {
	Event   domain.GatewayEvent
	OpenErr error

	OpenCalls int
}

// NewMockWidget возвращает mock с успешной оплатой по умолчанию.
func NewMockWidget() *MockWidget {
	return &MockWidget{
		Event: domain.GatewayEvent{
			Kind:      domain.GatewayEventSuccess,
			PaymentID: uuid.NewString(),
			Signature: "mock-signature",
		},
	}
}

// Open считает вызовы и немедленно отдаёт настроенное событие.
func (m *MockWidget) Open(ctx context.Context, session domain.PaymentSession, prefill domain.User) (<-chan domain.GatewayEvent, error) {
	m.OpenCalls++
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	events := make(chan domain.GatewayEvent, 1)
	event := m.Event
	if event.SessionID == "" {
		event.SessionID = session.SessionID
	}
	events <- event
	return events, nil
}

var (
	_ domain.OrderService   = (*MockOrderService)(nil)
	_ domain.PaymentGateway = (*MockPaymentGateway)(nil)
	_ domain.ScriptLoader   = (*MockScriptLoader)(nil)
	_ domain.GatewayWidget  = (*MockWidget)(nil)
)
