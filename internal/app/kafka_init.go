package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// initKafkaProducer создаёт producer событий заказов. Без брокеров возвращает nil, nil.
func initKafkaProducer(cfg Config, logger *log.Entry) (*kafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		return nil, err
	}

	logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
	return producer, nil
}

// initPaymentConsumer подписывается на payments.succeeded. dlq может быть nil.
func initPaymentConsumer(
	cfg Config,
	recorder kafka.PaymentRecorder,
	dlq *kafka.Producer,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) (*kafka.Consumer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}

	handler := kafka.NewPaymentEventHandler(recorder, m, logger.WithField("component", "payment-events"))
	consumer, err := kafka.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaGroupID,
		[]string{kafka.TopicPaymentSucceeded},
		handler,
		dlq,
		cfg.KafkaMaxRetries,
		logger.WithField("component", "kafka-consumer"),
	)
	if err != nil {
		return nil, err
	}
	return consumer, nil
}

// closeKafka останавливает consumer и закрывает producer. nil допустимы.
func closeKafka(consumer *kafka.Consumer, producer *kafka.Producer, logger *log.Entry) {
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop kafka consumer")
		}
	}
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
