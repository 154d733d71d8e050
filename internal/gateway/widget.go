package gateway

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CallbackWidget — адаптер виджета внешнего шлюза. Виджет дергает три
// callback (успех, явная ошибка, закрытие); адаптер транслирует их в ровно
// одно GatewayEvent на открытие и отдаёт его в канал, выданный Open.
type CallbackWidget struct {
	logger *log.Entry

	mu      sync.Mutex
	pending chan domain.GatewayEvent
}

// NewCallbackWidget создаёт адаптер виджета шлюза.
func NewCallbackWidget(logger *log.Entry) *CallbackWidget {
	if logger == nil {
		logger = log.New().WithField("component", "gateway-widget")
	}
	return &CallbackWidget{logger: logger}
}

// Open передаёт управление виджету. Одновременно может быть открыт только
// один виджет: повторный Open до первого события возвращает ошибку.
func (w *CallbackWidget) Open(ctx context.Context, session domain.PaymentSession, prefill domain.User) (<-chan domain.GatewayEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		return nil, errors.New("gateway widget is already open")
	}

	w.logger.WithFields(log.Fields{
		"session_id": session.SessionID,
		"order_id":   session.OrderID,
		"amount":     session.Amount,
		"prefill":    prefill.Email,
	}).Debug("gateway widget opened")

	events := make(chan domain.GatewayEvent, 1)
	w.pending = events
	return events, nil
}

// HandleSuccess — callback успешной оплаты от шлюза.
func (w *CallbackWidget) HandleSuccess(sessionID, paymentID, signature string) {
	w.deliver(domain.GatewayEvent{
		Kind:      domain.GatewayEventSuccess,
		SessionID: sessionID,
		PaymentID: paymentID,
		Signature: signature,
	})
}

// HandleFailure — callback явной ошибки оплаты от шлюза.
func (w *CallbackWidget) HandleFailure(reason string) {
	w.deliver(domain.GatewayEvent{
		Kind:   domain.GatewayEventFailure,
		Reason: reason,
	})
}

// HandleDismiss — закрытие виджета клиентом без завершения оплаты.
func (w *CallbackWidget) HandleDismiss() {
	w.deliver(domain.GatewayEvent{Kind: domain.GatewayEventDismissed})
}

func (w *CallbackWidget) deliver(event domain.GatewayEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		w.logger.WithField("kind", event.Kind).Warn("gateway event without open widget, dropped")
		return
	}

	w.pending <- event
	w.pending = nil
}

var _ domain.GatewayWidget = (*CallbackWidget)(nil)
