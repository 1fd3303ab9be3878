package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const defaultRetryDelay = 200 * time.Millisecond

// MessageHandler обрабатывает сообщение из Kafka
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

// permanentError помечает ошибку, которую бессмысленно повторять.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent оборачивает ошибку обработчика: такое сообщение сразу уходит в DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent сообщает, помечена ли ошибка как неповторяемая.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Consumer читает топики consumer group, повторяет неудачные сообщения
// и после исчерпания попыток перекладывает их в DLQ.
type Consumer struct {
	consumer    sarama.ConsumerGroup
	topics      []string
	handler     MessageHandler
	logger      *log.Entry
	wg          sync.WaitGroup
	dlqProducer *Producer
	maxRetries  int
	retryDelay  time.Duration
}

// NewConsumer создает consumer group. dlqProducer может быть nil.
func NewConsumer(
	brokers []string,
	groupID string,
	topics []string,
	handler MessageHandler,
	dlqProducer *Producer,
	maxRetries int,
	logger *log.Entry,
) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	return newConsumer(group, topics, handler, dlqProducer, maxRetries, logger), nil
}

func newConsumer(
	group sarama.ConsumerGroup,
	topics []string,
	handler MessageHandler,
	dlqProducer *Producer,
	maxRetries int,
	logger *log.Entry,
) *Consumer {
	if logger == nil {
		logger = log.WithField("component", "kafka-consumer")
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Consumer{
		consumer:    group,
		topics:      topics,
		handler:     handler,
		logger:      logger,
		dlqProducer: dlqProducer,
		maxRetries:  maxRetries,
		retryDelay:  defaultRetryDelay,
	}
}

// Start запускает consumer
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// при rebalance Consume возвращается, поэтому вызываем его в цикле
			if err := c.consumer.Consume(ctx, c.topics, c); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.WithError(err).Error("error from consumer")
				// пауза перед повторным входом в группу после сбоя обработки
				if sleepContext(ctx, c.retryDelay) != nil {
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumer.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
	return nil
}

// Stop останавливает consumer
func (c *Consumer) Stop() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

// Setup вызывается при старте consumer session
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup вызывается при завершении consumer session
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim обрабатывает сообщения из partition
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			fields := log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}
			c.logger.WithFields(fields).Debug("received message")

			if err := c.handleMessageWithRetry(session.Context(), message); err != nil {
				// Выходим из claim: sarama закрывает сессию, и следующий Consume
				// начинает с последнего зафиксированного offset, а не со следующего сообщения.
				c.logger.WithError(err).WithFields(fields).Error("message processing failed after all retries")
				return fmt.Errorf("partition %d offset %d: %w", message.Partition, message.Offset, err)
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessageWithRetry повторяет обработку с экспоненциальной задержкой.
// Счётчик из заголовка x-retry-count учитывает попытки, сделанные до повторной доставки.
func (c *Consumer) handleMessageWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	retryCount := c.getRetryCount(message)
	delay := c.retryDelay

	var err error
	for {
		err = c.handler(ctx, message)
		if err == nil {
			return nil
		}
		retryCount++

		if IsPermanent(err) || retryCount >= c.maxRetries {
			break
		}

		c.logger.WithError(err).WithFields(log.Fields{
			"topic":       message.Topic,
			"retry_count": retryCount,
			"max_retries": c.maxRetries,
		}).Warn("message processing failed, will retry")

		if waitErr := sleepContext(ctx, delay); waitErr != nil {
			return fmt.Errorf("retry interrupted: %w", err)
		}
		delay *= 2
	}

	if c.dlqProducer == nil {
		return err
	}
	if dlqErr := c.sendToDLQ(message, err, retryCount); dlqErr != nil {
		c.logger.WithError(dlqErr).Error("failed to send message to DLQ")
		return fmt.Errorf("failed to send to DLQ: %w", dlqErr)
	}
	c.logger.WithFields(log.Fields{
		"topic":       message.Topic,
		"retry_count": retryCount,
		"permanent":   IsPermanent(err),
	}).Info("message sent to DLQ")
	return nil
}

// getRetryCount извлекает retry count из headers сообщения
func (c *Consumer) getRetryCount(message *sarama.ConsumerMessage) int {
	for _, header := range message.Headers {
		if header == nil || string(header.Key) != HeaderRetryCount {
			continue
		}
		if count, err := strconv.Atoi(string(header.Value)); err == nil && count >= 0 {
			return count
		}
	}
	return 0
}

// sendToDLQ отправляет failed message в Dead Letter Queue
func (c *Consumer) sendToDLQ(message *sarama.ConsumerMessage, processingErr error, retryCount int) error {
	failedAt := time.Now().UTC()
	dlqMessage := DeadLetterMessage{
		OriginalTopic:     message.Topic,
		OriginalPartition: message.Partition,
		OriginalOffset:    message.Offset,
		OriginalKey:       string(message.Key),
		OriginalValue:     string(message.Value),
		ErrorMessage:      processingErr.Error(),
		FailedAt:          failedAt,
		RetryCount:        retryCount,
	}
	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderRetryCount), Value: []byte(strconv.Itoa(retryCount))},
		{Key: []byte(HeaderOriginalTopic), Value: []byte(message.Topic)},
		{Key: []byte(HeaderErrorMessage), Value: []byte(processingErr.Error())},
		{Key: []byte(HeaderFailedAt), Value: []byte(failedAt.Format(time.RFC3339))},
	}
	return c.dlqProducer.publish(TopicDeadLetterQueue, string(message.Key), dlqMessage, headers)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
