package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Topics для Kafka
const (
	TopicOrderEvents      = "orders.events"
	TopicPaymentSucceeded = "payments.succeeded"
	TopicDeadLetterQueue  = "orders.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
	HeaderReplayed      = "x-replayed"
)

// Типы событий Stripe, которые тоже принимаются из payments.succeeded.
const (
	stripeEventChargeSucceeded  = "charge.succeeded"
	stripeEventPaymentSucceeded = "payment_intent.succeeded"
)

// OrderEventMessage - wire-формат события заказа в orders.events.
type OrderEventMessage struct {
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderEventMessage переводит доменное событие в wire-формат.
func NewOrderEventMessage(event domain.OrderEvent, at time.Time) OrderEventMessage {
	return OrderEventMessage{
		EventType:   string(event.Type),
		OrderID:     event.OrderID,
		Status:      string(event.Status),
		TotalAmount: event.TotalAmount.StringFixed(2),
		Timestamp:   at.UTC(),
	}
}

// PaymentSucceededEvent - сообщение платёжного сервиса об успешной оплате.
type PaymentSucceededEvent struct {
	OrderID    string     `json:"order_id"`
	PaymentID  string     `json:"payment_id"`
	ReceiptURL string     `json:"receipt_url"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

// Confirmation возвращает доменное подтверждение оплаты.
func (e PaymentSucceededEvent) Confirmation() domain.PaymentConfirmation {
	c := domain.PaymentConfirmation{
		OrderID:    e.OrderID,
		PaymentID:  e.PaymentID,
		ReceiptURL: e.ReceiptURL,
	}
	if e.PaidAt != nil {
		c.PaidAt = *e.PaidAt
	}
	return c
}

// DeadLetterMessage - содержимое сообщения в DLQ.
type DeadLetterMessage struct {
	OriginalTopic     string    `json:"original_topic"`
	OriginalPartition int32     `json:"original_partition"`
	OriginalOffset    int64     `json:"original_offset"`
	OriginalKey       string    `json:"original_key"`
	OriginalValue     string    `json:"original_value"`
	ErrorMessage      string    `json:"error_message"`
	FailedAt          time.Time `json:"failed_at"`
	RetryCount        int       `json:"retry_count"`
}
