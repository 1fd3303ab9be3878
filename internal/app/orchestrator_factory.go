package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

// createOrchestrator собирает оркестратор заказов. Без producer события не публикуются.
func createOrchestrator(
	deps *runtimeDependencies,
	producer *kafka.Producer,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) orders.Orchestrator {
	// typed nil в интерфейсе оркестратор принял бы за настроенный publisher
	var events domain.EventPublisher
	if producer != nil {
		events = producer
	}

	return orders.NewOrchestrator(
		deps.store,
		deps.catalog,
		deps.payments,
		events,
		m,
		logger.WithField("component", "orders"),
	)
}
