package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// StripeGateway открывает Stripe Checkout Session вместо собственного платёжного сервиса.
type StripeGateway struct {
	sessions   *session.Client
	successURL string
	cancelURL  string
	logger     *log.Entry
}

// NewStripeGateway создаёт шлюз с секретным ключом Stripe.
func NewStripeGateway(secretKey, successURL, cancelURL string, logger *log.Entry) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if logger == nil {
		logger = log.New().WithField("component", "stripe-gateway")
	}
	return &StripeGateway{
		sessions:   &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}, nil
}

// CreateSession создаёт Checkout Session в режиме payment.
func (g *StripeGateway) CreateSession(ctx context.Context, req domain.PaymentSessionRequest) (domain.PaymentSession, error) {
	params := checkoutParams(req, g.successURL, g.cancelURL)
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		g.logger.WithError(err).WithField("order_id", req.OrderID).Warn("stripe checkout session failed")
		return domain.PaymentSession{}, fmt.Errorf("stripe checkout session: %w", err)
	}

	return domain.PaymentSession{
		ID:         s.ID,
		URL:        s.URL,
		SuccessURL: s.SuccessURL,
		CancelURL:  s.CancelURL,
	}, nil
}

// checkoutParams собирает параметры сессии. Цена передаётся как price_data
// в минимальных единицах валюты, order_id попадает в метаданные PaymentIntent.
func checkoutParams(req domain.PaymentSessionRequest, successURL, cancelURL string) *stripe.CheckoutSessionParams {
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(toMinorUnits(item.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		ClientReferenceID: stripe.String(req.OrderID),
		LineItems:         lineItems,
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"order_id": req.OrderID,
			},
		},
	}
	params.AddMetadata("order_id", req.OrderID)
	return params
}

func toMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

var _ domain.PaymentGatewayClient = (*StripeGateway)(nil)
