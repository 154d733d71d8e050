package app

import (
	"github.com/vladislavdragonenkov/storefront/internal/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

// createOrchestrator создаёт checkout-оркестратор с или без Kafka в зависимости
// от наличия kafka producer.
func createOrchestrator(deps *Dependencies, kafkaProducer *kafka.Producer) checkout.Orchestrator {
	checkoutDeps := checkout.Deps{
		Cart:     deps.Cart,
		Identity: deps.Identity,
		Orders:   deps.Orders,
		Payments: deps.Payments,
		Script:   deps.Script,
		Widget:   deps.Widget,
		Outbox:   deps.OutboxRepo,
		Timeline: deps.TimelineRepo,
	}

	logger := deps.Logger
	if kafkaProducer != nil {
		return checkout.NewOrchestratorWithKafka(checkoutDeps, kafkaProducer, logger)
	}
	return checkout.NewOrchestrator(checkoutDeps, logger)
}
