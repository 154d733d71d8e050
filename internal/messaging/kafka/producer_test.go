package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	// Создаем mock producer
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидания
	mockProducer.ExpectSendMessageAndSucceed()

	event := NewCheckoutEvent(
		EventTypeCheckoutStarted,
		"attempt-123",
		"",
		map[string]interface{}{
			"payment_method": "ONLINE",
		},
	)

	err := producer.PublishEvent(TopicCheckoutEvents, "attempt-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Проверяем, что все ожидания выполнены
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	// Создаем mock producer с ошибкой
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewCheckoutEvent(
		EventTypeCheckoutStarted,
		"attempt-123",
		"",
		nil,
	)

	err := producer.PublishEvent(TopicCheckoutEvents, "attempt-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishToDLQ(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		if string(value) != `{"order_id":"order-1"}` {
			return errors.New("unexpected dlq payload")
		}
		return nil
	})

	err := producer.PublishToDLQ(TopicCheckoutEvents, "order-1", []byte(`{"order_id":"order-1"}`), errors.New("broker unavailable"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewCheckoutEvent(t *testing.T) {
	attemptID := "attempt-123"
	metadata := map[string]interface{}{
		"payment_method": "COD",
		"grand_total":    490,
	}

	event := NewCheckoutEvent(EventTypeCheckoutCompleted, attemptID, "order-1", metadata)

	if event.EventType != EventTypeCheckoutCompleted {
		t.Errorf("expected event type %s, got %s", EventTypeCheckoutCompleted, event.EventType)
	}

	if event.AttemptID != attemptID {
		t.Errorf("expected attempt id %s, got %s", attemptID, event.AttemptID)
	}

	if event.OrderID != "order-1" {
		t.Errorf("expected order id order-1, got %s", event.OrderID)
	}

	if event.Metadata["payment_method"] != "COD" {
		t.Error("metadata not set correctly")
	}

	// Проверяем, что timestamp установлен
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewOrderEvent(t *testing.T) {
	orderID := "order-123"
	status := "placed"
	metadata := map[string]interface{}{
		"amount": 490,
	}

	event := NewOrderEvent(EventTypeOrderCreated, orderID, status, metadata)

	if event.EventType != EventTypeOrderCreated {
		t.Errorf("expected event type %s, got %s", EventTypeOrderCreated, event.EventType)
	}

	if event.OrderID != orderID {
		t.Errorf("expected order id %s, got %s", orderID, event.OrderID)
	}

	if event.Status != status {
		t.Errorf("expected status %s, got %s", status, event.Status)
	}

	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
