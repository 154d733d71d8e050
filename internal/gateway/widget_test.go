package gateway

import (
	"context"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func openWidget(t *testing.T, w *CallbackWidget) <-chan domain.GatewayEvent {
	t.Helper()

	events, err := w.Open(context.Background(), domain.PaymentSession{SessionID: "rzp-1"}, domain.User{Email: "test@example.com"})
	if err != nil {
		t.Fatalf("open widget: %v", err)
	}
	return events
}

func awaitEvent(t *testing.T, events <-chan domain.GatewayEvent) domain.GatewayEvent {
	t.Helper()

	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for gateway event")
		return domain.GatewayEvent{}
	}
}

func TestCallbackWidget_Success(t *testing.T) {
	widget := NewCallbackWidget(log.New().WithField("test", "widget"))
	events := openWidget(t, widget)

	widget.HandleSuccess("rzp-1", "pay-1", "sig-1")

	event := awaitEvent(t, events)
	if event.Kind != domain.GatewayEventSuccess {
		t.Fatalf("expected success event, got %s", event.Kind)
	}
	if event.PaymentID != "pay-1" || event.Signature != "sig-1" {
		t.Fatalf("unexpected event payload: %+v", event)
	}
}

func TestCallbackWidget_FailureAndDismiss(t *testing.T) {
	widget := NewCallbackWidget(log.New().WithField("test", "widget"))

	events := openWidget(t, widget)
	widget.HandleFailure("card declined")
	event := awaitEvent(t, events)
	if event.Kind != domain.GatewayEventFailure || event.Reason != "card declined" {
		t.Fatalf("unexpected failure event: %+v", event)
	}

	// После доставки события виджет можно открыть снова.
	events = openWidget(t, widget)
	widget.HandleDismiss()
	event = awaitEvent(t, events)
	if event.Kind != domain.GatewayEventDismissed {
		t.Fatalf("expected dismissed event, got %s", event.Kind)
	}
}

func TestCallbackWidget_DoubleOpenRejected(t *testing.T) {
	widget := NewCallbackWidget(log.New().WithField("test", "widget"))
	openWidget(t, widget)

	if _, err := widget.Open(context.Background(), domain.PaymentSession{}, domain.User{}); err == nil {
		t.Fatal("expected error on second open")
	}
}

func TestCallbackWidget_EventWithoutOpenDropped(t *testing.T) {
	widget := NewCallbackWidget(log.New().WithField("test", "widget"))

	// Не должно паниковать и не должно влиять на последующее открытие.
	widget.HandleDismiss()

	events := openWidget(t, widget)
	widget.HandleSuccess("rzp-1", "pay-1", "sig-1")
	if event := awaitEvent(t, events); event.Kind != domain.GatewayEventSuccess {
		t.Fatalf("expected success event, got %s", event.Kind)
	}
}
