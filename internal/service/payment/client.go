package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	paymentsv1 "github.com/vladislavdragonenkov/orders/api/payments/v1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// DefaultTimeout ограничивает один вызов платёжного сервиса.
const DefaultTimeout = 5 * time.Second

// errEmptySession - платёжный сервис ответил без сессии.
var errEmptySession = errors.New("payment service returned empty session")

// Client - gRPC-адаптер PaymentGatewayClient поверх payments.v1.PaymentService.
type Client struct {
	rpc     paymentsv1.PaymentServiceClient
	timeout time.Duration
	logger  *log.Entry
}

// NewClient создаёт адаптер. timeout <= 0 заменяется DefaultTimeout.
func NewClient(conn grpc.ClientConnInterface, timeout time.Duration, logger *log.Entry) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New().WithField("component", "payment-client")
	}
	return &Client{
		rpc:     paymentsv1.NewPaymentServiceClient(conn),
		timeout: timeout,
		logger:  logger,
	}
}

// CreateSession передаёт позиции заказа платёжному сервису.
func (c *Client) CreateSession(ctx context.Context, req domain.PaymentSessionRequest) (domain.PaymentSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	in := &paymentsv1.CreatePaymentSessionRequest{
		OrderID:  req.OrderID,
		Currency: req.Currency,
		Items:    make([]*paymentsv1.SessionItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, &paymentsv1.SessionItem{
			Name:     item.Name,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
		})
	}

	resp, err := c.rpc.CreatePaymentSession(ctx, in)
	if err != nil {
		c.logger.WithError(err).WithField("order_id", req.OrderID).Warn("payment session call failed")
		return domain.PaymentSession{}, fmt.Errorf("create payment session: %w", err)
	}
	if resp.Session == nil {
		return domain.PaymentSession{}, errEmptySession
	}

	return domain.PaymentSession{
		ID:         resp.Session.ID,
		URL:        resp.Session.URL,
		SuccessURL: resp.Session.SuccessURL,
		CancelURL:  resp.Session.CancelURL,
	}, nil
}

var _ domain.PaymentGatewayClient = (*Client)(nil)
