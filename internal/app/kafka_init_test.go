package app

import (
	"context"
	"testing"

	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
)

type noopRecorder struct{}

func (noopRecorder) PaidOrder(context.Context, domain.PaymentConfirmation) (domain.Order, error) {
	return domain.Order{}, nil
}

func TestInitKafkaProducer_Disabled(t *testing.T) {
	producer, err := initKafkaProducer(DefaultConfig(), log.WithField("test", "kafka"))
	require.NoError(t, err)
	require.Nil(t, producer)
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KafkaBrokers = []string{"127.0.0.1:1"}

	producer, err := initKafkaProducer(cfg, log.WithField("test", "kafka"))
	require.Error(t, err)
	require.Nil(t, producer)
}

func TestInitPaymentConsumer_Disabled(t *testing.T) {
	consumer, err := initPaymentConsumer(DefaultConfig(), noopRecorder{}, nil, nil, log.WithField("test", "kafka"))
	require.NoError(t, err)
	require.Nil(t, consumer)
}

func TestInitPaymentConsumer_InvalidBrokers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KafkaBrokers = []string{"127.0.0.1:1"}

	consumer, err := initPaymentConsumer(cfg, noopRecorder{}, nil, nil, log.WithField("test", "kafka"))
	require.Error(t, err)
	require.Nil(t, consumer)
}

func TestCloseKafka(t *testing.T) {
	logger := log.WithField("test", "kafka-close")
	closeKafka(nil, nil, logger)

	sync := mocks.NewSyncProducer(t, nil)
	closeKafka(nil, kafka.NewProducerFromSync(sync, logger), logger)
}
