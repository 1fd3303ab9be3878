package grpcsvc

import (
	"context"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	ordersv1 "github.com/vladislavdragonenkov/orders/api/orders/v1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

// OrderService реализует gRPC API поверх оркестратора заказов.
type OrderService struct {
	ordersv1.UnimplementedOrderServiceServer

	orders   orders.Orchestrator
	validate *requestValidator
	logger   *log.Entry
}

// NewOrderService конструирует сервис с зависимостями.
func NewOrderService(orchestrator orders.Orchestrator, logger *log.Entry) *OrderService {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &OrderService{
		orders:   orchestrator,
		validate: newRequestValidator(),
		logger:   logger,
	}
}

// CreateOrder создаёт заказ. Цены берутся из каталога, а не из запроса.
func (s *OrderService) CreateOrder(ctx context.Context, req *ordersv1.CreateOrderRequest) (*ordersv1.CreateOrderResponse, error) {
	if err := s.validate.request(req); err != nil {
		return nil, err
	}

	items := make([]domain.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.orders.Create(ctx, items)
	if err != nil {
		return nil, s.statusError(err, "CreateOrder")
	}
	return &ordersv1.CreateOrderResponse{Order: toProtoOrder(order)}, nil
}

// FindAllOrders возвращает страницу заказов с метаданными.
func (s *OrderService) FindAllOrders(ctx context.Context, req *ordersv1.FindAllOrdersRequest) (*ordersv1.FindAllOrdersResponse, error) {
	if req == nil {
		req = &ordersv1.FindAllOrdersRequest{}
	}
	if err := s.validate.request(req); err != nil {
		return nil, err
	}

	query := domain.ListQuery{Page: domain.DefaultPage, Limit: domain.DefaultLimit}
	if req.Page > 0 {
		query.Page = int(req.Page)
	}
	if req.Limit > 0 {
		query.Limit = int(req.Limit)
	}
	if req.Status != "" {
		st, err := domain.ParseOrderStatus(req.Status)
		if err != nil {
			return nil, s.statusError(err, "FindAllOrders")
		}
		query.Status = &st
	}

	page, err := s.orders.FindAll(ctx, query)
	if err != nil {
		return nil, s.statusError(err, "FindAllOrders")
	}

	data := make([]*ordersv1.Order, 0, len(page.Data))
	for _, order := range page.Data {
		data = append(data, toProtoOrder(order))
	}
	return &ordersv1.FindAllOrdersResponse{
		Data: data,
		Meta: &ordersv1.PageMeta{
			Total:       int64(page.Meta.Total),
			CurrentPage: int32(page.Meta.CurrentPage),
			LastPage:    int32(page.Meta.LastPage),
		},
	}, nil
}

// FindOneOrder возвращает заказ с текущими именами товаров.
func (s *OrderService) FindOneOrder(ctx context.Context, req *ordersv1.FindOneOrderRequest) (*ordersv1.FindOneOrderResponse, error) {
	if err := s.validate.request(req); err != nil {
		return nil, err
	}

	order, err := s.orders.FindOne(ctx, req.ID)
	if err != nil {
		return nil, s.statusError(err, "FindOneOrder")
	}
	return &ordersv1.FindOneOrderResponse{Order: toProtoOrder(order)}, nil
}

// ChangeOrderStatus меняет статус заказа. Повтор текущего статуса не пишет в хранилище.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, req *ordersv1.ChangeOrderStatusRequest) (*ordersv1.ChangeOrderStatusResponse, error) {
	if err := s.validate.request(req); err != nil {
		return nil, err
	}

	st, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, s.statusError(err, "ChangeOrderStatus")
	}

	order, err := s.orders.ChangeStatus(ctx, req.ID, st)
	if err != nil {
		return nil, s.statusError(err, "ChangeOrderStatus")
	}
	return &ordersv1.ChangeOrderStatusResponse{Order: toProtoOrder(order)}, nil
}

// CreatePaymentSession загружает заказ и открывает для него платёжную сессию.
func (s *OrderService) CreatePaymentSession(ctx context.Context, req *ordersv1.CreatePaymentSessionRequest) (*ordersv1.CreatePaymentSessionResponse, error) {
	if err := s.validate.request(req); err != nil {
		return nil, err
	}

	order, err := s.orders.FindOne(ctx, req.OrderID)
	if err != nil {
		return nil, s.statusError(err, "CreatePaymentSession")
	}

	session, err := s.orders.CreatePaymentSession(ctx, order)
	if err != nil {
		return nil, s.statusError(err, "CreatePaymentSession")
	}
	return &ordersv1.CreatePaymentSessionResponse{Session: &ordersv1.PaymentSession{
		ID:         session.ID,
		URL:        session.URL,
		SuccessURL: session.SuccessURL,
		CancelURL:  session.CancelURL,
	}}, nil
}

// ConfirmPayment фиксирует успешную оплату заказа.
func (s *OrderService) ConfirmPayment(ctx context.Context, req *ordersv1.ConfirmPaymentRequest) (*ordersv1.ConfirmPaymentResponse, error) {
	if err := s.validate.request(req); err != nil {
		return nil, err
	}

	confirmation := domain.PaymentConfirmation{
		OrderID:    req.OrderID,
		PaymentID:  req.PaymentID,
		ReceiptURL: req.ReceiptURL,
	}
	if req.PaidAt != nil {
		confirmation.PaidAt = *req.PaidAt
	}

	order, err := s.orders.PaidOrder(ctx, confirmation)
	if err != nil {
		return nil, s.statusError(err, "ConfirmPayment")
	}
	return &ordersv1.ConfirmPaymentResponse{Order: toProtoOrder(order)}, nil
}

// statusError переводит вид доменной ошибки в gRPC-код. Детали причины
// остаются в логах, клиент получает только сообщение.
func (s *OrderService) statusError(err error, operation string) error {
	kind := domain.KindOf(err)
	code := codeForKind(kind)

	entry := s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"kind":      kind,
	})
	if code == codes.Internal || code == codes.Unavailable {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	return status.Error(code, domain.MessageOf(err))
}

func codeForKind(kind domain.Kind) codes.Code {
	switch kind {
	case domain.KindValidation, domain.KindProductResolution:
		return codes.InvalidArgument
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindPaymentGateway:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
