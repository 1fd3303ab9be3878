package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

const (
	paymentEventProcessed = "processed"
	paymentEventDuplicate = "duplicate"
	paymentEventSkipped   = "skipped"
	paymentEventInvalid   = "invalid"
	paymentEventFailed    = "failed"
)

var errUnsupportedPaymentEvent = errors.New("unsupported payment event")

// PaymentRecorder фиксирует подтверждённую оплату заказа.
type PaymentRecorder interface {
	PaidOrder(ctx context.Context, confirmation domain.PaymentConfirmation) (domain.Order, error)
}

// NewPaymentEventHandler возвращает обработчик топика payments.succeeded.
// Повторная доставка уже учтённой оплаты подтверждается без ошибки.
func NewPaymentEventHandler(recorder PaymentRecorder, m *metrics.OrderMetrics, logger *log.Entry) MessageHandler {
	if logger == nil {
		logger = log.WithField("component", "payment-events")
	}

	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		confirmation, err := DecodePaymentEvent(message.Value)
		if errors.Is(err, errUnsupportedPaymentEvent) {
			logger.WithError(err).WithField("offset", message.Offset).Debug("payment event skipped")
			m.RecordPaymentEvent(paymentEventSkipped)
			return nil
		}
		if err != nil {
			m.RecordPaymentEvent(paymentEventInvalid)
			return Permanent(err)
		}

		entry := logger.WithFields(log.Fields{
			"order_id":   confirmation.OrderID,
			"payment_id": confirmation.PaymentID,
		})

		_, err = recorder.PaidOrder(ctx, confirmation)
		switch {
		case err == nil:
			m.RecordPaymentEvent(paymentEventProcessed)
			entry.Info("payment recorded")
			return nil
		case errors.Is(err, domain.ErrReceiptAlreadyExists):
			m.RecordPaymentEvent(paymentEventDuplicate)
			entry.Info("payment already recorded")
			return nil
		case errors.Is(err, domain.ErrOrderNotFound):
			m.RecordPaymentEvent(paymentEventInvalid)
			return Permanent(err)
		default:
			m.RecordPaymentEvent(paymentEventFailed)
			return err
		}
	}
}

// DecodePaymentEvent разбирает сообщение об оплате. Поддерживаются собственный
// формат {order_id, payment_id, receipt_url, paid_at} и события Stripe
// charge.succeeded и payment_intent.succeeded с order_id в metadata.
func DecodePaymentEvent(data []byte) (domain.PaymentConfirmation, error) {
	var envelope struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.PaymentConfirmation{}, fmt.Errorf("decode payment event: %w", err)
	}

	var confirmation domain.PaymentConfirmation
	if envelope.Object == "event" {
		var err error
		if confirmation, err = decodeStripeEvent(data); err != nil {
			return domain.PaymentConfirmation{}, err
		}
	} else {
		var event PaymentSucceededEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return domain.PaymentConfirmation{}, fmt.Errorf("decode payment event: %w", err)
		}
		confirmation = event.Confirmation()
	}

	if err := validateConfirmation(confirmation); err != nil {
		return domain.PaymentConfirmation{}, err
	}
	return confirmation, nil
}

func decodeStripeEvent(data []byte) (domain.PaymentConfirmation, error) {
	var event stripe.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.PaymentConfirmation{}, fmt.Errorf("decode stripe event: %w", err)
	}
	if event.Type != stripeEventChargeSucceeded && event.Type != stripeEventPaymentSucceeded {
		return domain.PaymentConfirmation{}, fmt.Errorf("%w: %s", errUnsupportedPaymentEvent, event.Type)
	}
	if event.Data == nil {
		return domain.PaymentConfirmation{}, errors.New("stripe event has no data")
	}

	var confirmation domain.PaymentConfirmation
	if event.Type == stripeEventChargeSucceeded {
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return domain.PaymentConfirmation{}, fmt.Errorf("decode charge: %w", err)
		}
		confirmation = chargeConfirmation(&charge)
	} else {
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return domain.PaymentConfirmation{}, fmt.Errorf("decode payment intent: %w", err)
		}
		// В вебхуке latest_charge приходит строкой "ch_..." без receipt_url;
		// такую оплату зафиксирует парное событие charge.succeeded.
		if intent.LatestCharge == nil || intent.LatestCharge.ReceiptURL == "" {
			return domain.PaymentConfirmation{}, fmt.Errorf("%w: %s without expanded latest_charge", errUnsupportedPaymentEvent, event.Type)
		}
		confirmation = domain.PaymentConfirmation{
			OrderID:    intent.Metadata["order_id"],
			PaymentID:  intent.ID,
			ReceiptURL: intent.LatestCharge.ReceiptURL,
		}
	}

	if event.Created > 0 {
		confirmation.PaidAt = time.Unix(event.Created, 0).UTC()
	}
	return confirmation, nil
}

// chargeConfirmation берет order_id из metadata платежа, а при его отсутствии
// из развернутого payment_intent. payment_id - id payment intent, если он известен.
func chargeConfirmation(charge *stripe.Charge) domain.PaymentConfirmation {
	confirmation := domain.PaymentConfirmation{
		OrderID:    charge.Metadata["order_id"],
		PaymentID:  charge.ID,
		ReceiptURL: charge.ReceiptURL,
	}
	if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
		confirmation.PaymentID = charge.PaymentIntent.ID
		if confirmation.OrderID == "" {
			confirmation.OrderID = charge.PaymentIntent.Metadata["order_id"]
		}
	}
	return confirmation
}

func validateConfirmation(c domain.PaymentConfirmation) error {
	var missing []string
	if strings.TrimSpace(c.OrderID) == "" {
		missing = append(missing, "order_id")
	}
	if strings.TrimSpace(c.PaymentID) == "" {
		missing = append(missing, "payment_id")
	}
	if strings.TrimSpace(c.ReceiptURL) == "" {
		missing = append(missing, "receipt_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("payment event is missing %s", strings.Join(missing, ", "))
	}
	return nil
}
