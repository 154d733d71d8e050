package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicCheckoutEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	envelope := struct {
		ID            string          `json:"id"`
		AggregateType string          `json:"aggregate_type"`
		AggregateID   string          `json:"aggregate_id"`
		EventType     string          `json:"event_type"`
		Payload       json.RawMessage `json:"payload"`
		PublishedAt   time.Time       `json:"published_at"`
	}{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}

	return p.producer.PublishEvent(p.topic, key, envelope)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)

// DLQPublisher направляет сообщения, которые не удалось опубликовать,
// в dead letter queue с заголовками причины сбоя.
type DLQPublisher struct {
	producer    *Producer
	sourceTopic string
}

// NewDLQPublisher создаёт publisher для dead letter queue.
func NewDLQPublisher(producer *Producer, sourceTopic string) *DLQPublisher {
	if sourceTopic == "" {
		sourceTopic = TopicCheckoutEvents
	}
	return &DLQPublisher{
		producer:    producer,
		sourceTopic: sourceTopic,
	}
}

// PublishDeadLetter сериализует сообщение и отправляет его в DLQ-topic.
func (p *DLQPublisher) PublishDeadLetter(event domain.OutboxMessage, cause error) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka dlq publisher is not initialized")
	}
	if cause == nil {
		cause = fmt.Errorf("unknown publish failure")
	}

	payload, err := json.Marshal(struct {
		ID            string          `json:"id"`
		AggregateType string          `json:"aggregate_type"`
		AggregateID   string          `json:"aggregate_id"`
		EventType     string          `json:"event_type"`
		Payload       json.RawMessage `json:"payload"`
	}{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
	})
	if err != nil {
		return fmt.Errorf("marshal dlq payload: %w", err)
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	return p.producer.PublishToDLQ(p.sourceTopic, key, payload, cause)
}
