package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// События попытки оформления
	EventTypeCheckoutStarted   EventType = "checkout.started"
	EventTypeCheckoutCompleted EventType = "checkout.completed"
	EventTypeCheckoutFailed    EventType = "checkout.failed"
	EventTypeCheckoutCancelled EventType = "checkout.cancelled"

	// События заказа
	EventTypeOrderCreated   EventType = "order.created"
	EventTypeOrderConfirmed EventType = "order.confirmed"

	// События шагов оплаты
	EventTypeGatewayLoaded  EventType = "payment.gateway_loaded"
	EventTypeSessionCreated EventType = "payment.session_created"
	EventTypePaymentVerified EventType = "payment.verified"
	EventTypePaymentFailed   EventType = "payment.failed"
)

// Topics для Kafka
const (
	TopicCheckoutEvents  = "storefront.checkout.events"
	TopicOrderEvents     = "storefront.order.events"
	TopicDeadLetterQueue = "storefront.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// CheckoutEvent представляет событие попытки оформления заказа
type CheckoutEvent struct {
	EventType EventType              `json:"event_type"`
	AttemptID string                 `json:"attempt_id"`
	OrderID   string                 `json:"order_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewCheckoutEvent создает новое событие попытки оформления
func NewCheckoutEvent(eventType EventType, attemptID, orderID string, metadata map[string]interface{}) *CheckoutEvent {
	return &CheckoutEvent{
		EventType: eventType,
		AttemptID: attemptID,
		OrderID:   orderID,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
