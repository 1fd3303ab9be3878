package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	ordersv1 "github.com/vladislavdragonenkov/orders/api/orders/v1"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
	grpcsvc "github.com/vladislavdragonenkov/orders/internal/service/grpc"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/service/payment"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказов.
type OrderLifecycleTestSuite struct {
	suite.Suite
	service  *grpcsvc.OrderService
	catalog  *catalog.MockClient
	payments *payment.MockGateway
	payEvent kafka.MessageHandler
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	m := metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry())
	suite.catalog = catalog.NewMockClient(catalog.DemoProducts()...)
	suite.payments = payment.NewMockGateway()

	orch := orders.NewOrchestrator(
		memory.NewOrderStore(),
		suite.catalog,
		suite.payments,
		nil,
		m,
		logger,
	)

	suite.service = grpcsvc.NewOrderService(orch, logger)
	suite.payEvent = kafka.NewPaymentEventHandler(orch, m, logger)
}

func (suite *OrderLifecycleTestSuite) createOrder(items ...*ordersv1.CreateOrderItem) *ordersv1.Order {
	resp, err := suite.service.CreateOrder(context.Background(), &ordersv1.CreateOrderRequest{Items: items})
	suite.Require().NoError(err)
	return resp.Order
}

func (suite *OrderLifecycleTestSuite) deliverPayment(orderID, paymentID string) error {
	payload, err := json.Marshal(map[string]any{
		"order_id":    orderID,
		"payment_id":  paymentID,
		"receipt_url": "https://pay.example.com/receipts/" + paymentID,
		"paid_at":     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	suite.Require().NoError(err)

	return suite.payEvent(context.Background(), &sarama.ConsumerMessage{
		Topic: kafka.TopicPaymentSucceeded,
		Key:   []byte(orderID),
		Value: payload,
	})
}

func (suite *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	ctx := context.Background()

	// 1. Создаём заказ
	order := suite.createOrder(
		&ordersv1.CreateOrderItem{ProductID: 1, Quantity: 1},
		&ordersv1.CreateOrderItem{ProductID: 2, Quantity: 2},
	)
	suite.Equal("138.90", order.TotalAmount)
	suite.EqualValues(3, order.TotalItems)
	suite.Equal("PENDING", order.Status)
	suite.False(order.Paid)
	suite.Nil(order.Receipt)

	// 2. Открываем платёжную сессию
	session, err := suite.service.CreatePaymentSession(ctx, &ordersv1.CreatePaymentSessionRequest{OrderID: order.ID})
	suite.Require().NoError(err)
	suite.Contains(session.Session.URL, order.ID)
	suite.Equal(order.ID, suite.payments.LastRequest.OrderID)
	suite.Len(suite.payments.LastRequest.Items, 2)

	// 3. Платёжный сервис присылает событие об успешной оплате
	suite.Require().NoError(suite.deliverPayment(order.ID, "pi_100"))

	found, err := suite.service.FindOneOrder(ctx, &ordersv1.FindOneOrderRequest{ID: order.ID})
	suite.Require().NoError(err)
	suite.Equal("PAID", found.Order.Status)
	suite.True(found.Order.Paid)
	suite.Equal("pi_100", found.Order.ExternalPaymentRef)
	suite.Require().NotNil(found.Order.Receipt)
	suite.Equal("https://pay.example.com/receipts/pi_100", found.Order.Receipt.ReceiptURL)
	suite.Require().NotNil(found.Order.PaidAt)
	suite.True(found.Order.PaidAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	// 4. Доставка
	delivered, err := suite.service.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: order.ID, Status: "delivered"})
	suite.Require().NoError(err)
	suite.Equal("DELIVERED", delivered.Order.Status)
	suite.True(delivered.Order.Paid)
}

func (suite *OrderLifecycleTestSuite) TestDuplicatePaymentEventIsAcknowledged() {
	ctx := context.Background()
	order := suite.createOrder(&ordersv1.CreateOrderItem{ProductID: 3, Quantity: 1})

	suite.Require().NoError(suite.deliverPayment(order.ID, "pi_first"))
	suite.Require().NoError(suite.deliverPayment(order.ID, "pi_second"))

	found, err := suite.service.FindOneOrder(ctx, &ordersv1.FindOneOrderRequest{ID: order.ID})
	suite.Require().NoError(err)
	suite.Equal("pi_first", found.Order.ExternalPaymentRef)

	_, err = suite.service.ConfirmPayment(ctx, &ordersv1.ConfirmPaymentRequest{
		OrderID:    order.ID,
		PaymentID:  "pi_third",
		ReceiptURL: "https://pay.example.com/receipts/pi_third",
	})
	suite.Require().Error(err)
	suite.Equal(codes.Internal, status.Code(err))
}

func (suite *OrderLifecycleTestSuite) TestPaymentForUnknownOrderGoesToDeadLetter() {
	err := suite.deliverPayment("6f1c1a52-7d1e-4c1a-9b34-3a1f0c7e9d21", "pi_lost")
	suite.Require().Error(err)
	suite.True(kafka.IsPermanent(err))
}

func (suite *OrderLifecycleTestSuite) TestCancelledOrderKeepsSnapshotPrices() {
	ctx := context.Background()
	order := suite.createOrder(&ordersv1.CreateOrderItem{ProductID: 2, Quantity: 4})
	suite.Equal("98.00", order.TotalAmount)

	renamed := catalog.DemoProducts()[1]
	renamed.Name = "Silent mouse"
	suite.catalog.Put(renamed)

	cancelled, err := suite.service.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: order.ID, Status: "CANCELLED"})
	suite.Require().NoError(err)
	suite.Equal("CANCELLED", cancelled.Order.Status)
	suite.Equal("98.00", cancelled.Order.TotalAmount)

	found, err := suite.service.FindOneOrder(ctx, &ordersv1.FindOneOrderRequest{ID: order.ID})
	suite.Require().NoError(err)
	suite.Equal("Silent mouse", found.Order.Items[0].Name)
	suite.Equal("24.50", found.Order.Items[0].Price)
}

func (suite *OrderLifecycleTestSuite) TestListingWithFilterAndPagination() {
	ctx := context.Background()
	var paidIDs []string
	for i := 0; i < 5; i++ {
		order := suite.createOrder(&ordersv1.CreateOrderItem{ProductID: 1, Quantity: int32(i + 1)})
		if i%2 == 0 {
			suite.Require().NoError(suite.deliverPayment(order.ID, "pi_list_"+order.ID))
			paidIDs = append(paidIDs, order.ID)
		}
	}

	all, err := suite.service.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{Page: 1, Limit: 2})
	suite.Require().NoError(err)
	suite.Len(all.Data, 2)
	suite.EqualValues(5, all.Meta.Total)
	suite.EqualValues(3, all.Meta.LastPage)

	paid, err := suite.service.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{Status: "PAID"})
	suite.Require().NoError(err)
	suite.EqualValues(len(paidIDs), paid.Meta.Total)
	for _, o := range paid.Data {
		suite.Contains(paidIDs, o.ID)
		suite.Equal("PAID", o.Status)
	}
}

func (suite *OrderLifecycleTestSuite) TestUnknownProductIsRejected() {
	_, err := suite.service.CreateOrder(context.Background(), &ordersv1.CreateOrderRequest{
		Items: []*ordersv1.CreateOrderItem{{ProductID: 1, Quantity: 1}, {ProductID: 999, Quantity: 1}},
	})
	suite.Require().Error(err)
	suite.Equal(codes.InvalidArgument, status.Code(err))
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration suite skipped in -short mode")
	}
	suite.Run(t, new(OrderLifecycleTestSuite))
}

func TestOrderLifecycle_CatalogOutage(t *testing.T) {
	cat := catalog.NewMockClient()
	cat.Err = context.DeadlineExceeded

	orch := orders.NewOrchestrator(memory.NewOrderStore(), cat, payment.NewMockGateway(), nil, nil, nil)
	svc := grpcsvc.NewOrderService(orch, nil)

	_, err := svc.CreateOrder(context.Background(), &ordersv1.CreateOrderRequest{
		Items: []*ordersv1.CreateOrderItem{{ProductID: 1, Quantity: 1}},
	})
	require.Error(t, err)
	require.NotEqual(t, codes.OK, status.Code(err))
}
