package grpcsvc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	ordersv1 "github.com/vladislavdragonenkov/orders/api/orders/v1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
	grpcsvc "github.com/vladislavdragonenkov/orders/internal/service/grpc"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/service/payment"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

const bufSize = 1024 * 1024

type testEnv struct {
	client   ordersv1.OrderServiceClient
	catalog  *catalog.MockClient
	payments *payment.MockGateway
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	listener := bufconn.Listen(bufSize)
	logger := loggerForTests()

	cat := catalog.NewMockClient(
		domain.Product{ID: 1, Name: "Keyboard", Price: decimal.RequireFromString("89.90")},
		domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("24.50")},
	)
	pay := payment.NewMockGateway()
	orchestrator := orders.NewOrchestrator(
		memory.NewOrderStore(),
		cat,
		pay,
		nil,
		metrics.NewOrderMetricsWithRegisterer(prometheus.NewRegistry()),
		logger.WithField("layer", "orders"),
	)

	server := grpc.NewServer()
	ordersv1.RegisterOrderServiceServer(server, grpcsvc.NewOrderService(orchestrator, logger))

	go func() {
		if err := server.Serve(listener); err != nil {
			logger.WithError(err).Error("grpc serve failed")
		}
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})

	return &testEnv{client: ordersv1.NewOrderServiceClient(conn), catalog: cat, payments: pay}
}

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func createOrder(t *testing.T, env *testEnv, items ...*ordersv1.CreateOrderItem) *ordersv1.Order {
	t.Helper()
	resp, err := env.client.CreateOrder(context.Background(), &ordersv1.CreateOrderRequest{Items: items})
	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	return resp.Order
}

func TestCreateOrder(t *testing.T) {
	env := newTestServer(t)

	order := createOrder(t, env,
		&ordersv1.CreateOrderItem{ProductID: 1, Quantity: 2},
		&ordersv1.CreateOrderItem{ProductID: 2, Quantity: 1},
	)

	require.NotEmpty(t, order.ID)
	require.Equal(t, "204.30", order.TotalAmount)
	require.Equal(t, int32(3), order.TotalItems)
	require.Equal(t, "PENDING", order.Status)
	require.False(t, order.Paid)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Keyboard", order.Items[0].Name)
	require.Equal(t, "89.90", order.Items[0].Price)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *ordersv1.CreateOrderRequest
		msg  string
	}{
		{name: "no items", req: &ordersv1.CreateOrderRequest{}, msg: "items is required"},
		{name: "empty items", req: &ordersv1.CreateOrderRequest{Items: []*ordersv1.CreateOrderItem{}}, msg: "items must contain at least 1 item(s)"},
		{name: "zero quantity", req: &ordersv1.CreateOrderRequest{Items: []*ordersv1.CreateOrderItem{{ProductID: 1, Quantity: 0}}}, msg: "items[0].quantity must be greater than 0"},
		{name: "bad product", req: &ordersv1.CreateOrderRequest{Items: []*ordersv1.CreateOrderItem{{ProductID: -3, Quantity: 1}}}, msg: "items[0].product_id must be greater than 0"},
		{name: "nil item", req: &ordersv1.CreateOrderRequest{Items: []*ordersv1.CreateOrderItem{nil}}, msg: "items[0] is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.client.CreateOrder(ctx, tc.req)
			require.Equal(t, codes.InvalidArgument, status.Code(err))
			require.Equal(t, tc.msg, status.Convert(err).Message())
		})
	}
	require.Zero(t, env.catalog.CallCount(), "invalid requests must not reach the catalog")
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	env := newTestServer(t)

	_, err := env.client.CreateOrder(context.Background(), &ordersv1.CreateOrderRequest{
		Items: []*ordersv1.CreateOrderItem{{ProductID: 1, Quantity: 1}, {ProductID: 77, Quantity: 1}},
	})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Equal(t, "some products could not be resolved", status.Convert(err).Message())
}

func TestFindOneOrder(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	created := createOrder(t, env, &ordersv1.CreateOrderItem{ProductID: 2, Quantity: 4})

	resp, err := env.client.FindOneOrder(ctx, &ordersv1.FindOneOrderRequest{ID: created.ID})
	require.NoError(t, err)
	require.Equal(t, created.ID, resp.Order.ID)
	require.Equal(t, "98.00", resp.Order.TotalAmount)
	require.Equal(t, "Mouse", resp.Order.Items[0].Name)

	_, err = env.client.FindOneOrder(ctx, &ordersv1.FindOneOrderRequest{ID: uuid.NewString()})
	require.Equal(t, codes.NotFound, status.Code(err))

	_, err = env.client.FindOneOrder(ctx, &ordersv1.FindOneOrderRequest{ID: "not-a-uuid"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Equal(t, "id must be a valid UUID", status.Convert(err).Message())
}

func TestFindAllOrders(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, createOrder(t, env, &ordersv1.CreateOrderItem{ProductID: 1, Quantity: 1}).ID)
	}

	// Значения по умолчанию: page=1, limit=10.
	resp, err := env.client.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 10)
	require.Equal(t, &ordersv1.PageMeta{Total: 12, CurrentPage: 1, LastPage: 2}, resp.Meta)

	resp, err = env.client.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	require.Equal(t, ids[10], resp.Data[0].ID)

	_, err = env.client.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: ids[0], Status: "cancelled"})
	require.NoError(t, err)

	resp, err = env.client.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	require.Equal(t, ids[0], resp.Data[0].ID)

	_, err = env.client.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{Status: "SHIPPED"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Equal(t, "Possible status values are PENDING,PAID,DELIVERED,CANCELLED", status.Convert(err).Message())

	_, err = env.client.FindAllOrders(ctx, &ordersv1.FindAllOrdersRequest{Page: -1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestChangeOrderStatus(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	created := createOrder(t, env, &ordersv1.CreateOrderItem{ProductID: 1, Quantity: 1})

	same, err := env.client.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: created.ID, Status: "PENDING"})
	require.NoError(t, err)
	require.Equal(t, "PENDING", same.Order.Status)
	require.Equal(t, created.UpdatedAt.UTC(), same.Order.UpdatedAt.UTC())

	changed, err := env.client.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: created.ID, Status: "DELIVERED"})
	require.NoError(t, err)
	require.Equal(t, "DELIVERED", changed.Order.Status)

	_, err = env.client.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: created.ID, Status: "LOST"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.client.ChangeOrderStatus(ctx, &ordersv1.ChangeOrderStatusRequest{ID: uuid.NewString(), Status: "PAID"})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestCreatePaymentSession(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	created := createOrder(t, env, &ordersv1.CreateOrderItem{ProductID: 1, Quantity: 1})

	resp, err := env.client.CreatePaymentSession(ctx, &ordersv1.CreatePaymentSessionRequest{OrderID: created.ID})
	require.NoError(t, err)
	require.Equal(t, "cs_mock_"+created.ID, resp.Session.ID)
	require.Equal(t, "Keyboard", env.payments.LastRequest.Items[0].Name)

	env.payments.Err = errors.New("gateway down")
	_, err = env.client.CreatePaymentSession(ctx, &ordersv1.CreatePaymentSessionRequest{OrderID: created.ID})
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Equal(t, "failed to create payment session", status.Convert(err).Message())

	_, err = env.client.CreatePaymentSession(ctx, &ordersv1.CreatePaymentSessionRequest{OrderID: uuid.NewString()})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestConfirmPayment(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	created := createOrder(t, env, &ordersv1.CreateOrderItem{ProductID: 2, Quantity: 1})
	paidAt := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	resp, err := env.client.ConfirmPayment(ctx, &ordersv1.ConfirmPaymentRequest{
		OrderID:    created.ID,
		PaymentID:  "ch_1",
		ReceiptURL: "https://pay.stripe.com/receipts/ch_1",
		PaidAt:     &paidAt,
	})
	require.NoError(t, err)
	require.True(t, resp.Order.Paid)
	require.Equal(t, "PAID", resp.Order.Status)
	require.Equal(t, "ch_1", resp.Order.ExternalPaymentRef)
	require.True(t, paidAt.Equal(*resp.Order.PaidAt))
	require.Equal(t, "https://pay.stripe.com/receipts/ch_1", resp.Order.Receipt.ReceiptURL)

	_, err = env.client.ConfirmPayment(ctx, &ordersv1.ConfirmPaymentRequest{
		OrderID:    created.ID,
		PaymentID:  "ch_2",
		ReceiptURL: "https://pay.stripe.com/receipts/ch_2",
	})
	require.Equal(t, codes.Internal, status.Code(err))

	_, err = env.client.ConfirmPayment(ctx, &ordersv1.ConfirmPaymentRequest{OrderID: created.ID, PaymentID: "ch_3", ReceiptURL: "not a url"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
