// Package orders содержит оркестратор заказов: каталог, хранилище и платёжный
// сервис вызываются отсюда и больше нигде.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// Orchestrator описывает операции над заказами.
type Orchestrator interface {
	Create(ctx context.Context, items []domain.ItemRequest) (domain.Order, error)
	FindAll(ctx context.Context, query domain.ListQuery) (domain.Page, error)
	FindOne(ctx context.Context, id string) (domain.Order, error)
	ChangeStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
	CreatePaymentSession(ctx context.Context, order domain.Order) (domain.PaymentSession, error)
	PaidOrder(ctx context.Context, confirmation domain.PaymentConfirmation) (domain.Order, error)
}

const (
	opCreate         = "create"
	opFindAll        = "find_all"
	opFindOne        = "find_one"
	opChangeStatus   = "change_status"
	opPaymentSession = "create_payment_session"
	opPaidOrder      = "paid_order"

	collaboratorCatalog = "catalog"
	collaboratorPayment = "payment"
)

type orchestrator struct {
	store    domain.OrderStore
	catalog  domain.ProductCatalogClient
	payments domain.PaymentGatewayClient
	events   domain.EventPublisher
	metrics  *metrics.OrderMetrics
	logger   *log.Entry

	now   func() time.Time
	newID func() string
}

// NewOrchestrator собирает оркестратор. events и m могут быть nil.
func NewOrchestrator(
	store domain.OrderStore,
	catalog domain.ProductCatalogClient,
	payments domain.PaymentGatewayClient,
	events domain.EventPublisher,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &orchestrator{
		store:    store,
		catalog:  catalog,
		payments: payments,
		events:   events,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create проверяет товары в каталоге, фиксирует цены и сохраняет заказ.
func (o *orchestrator) Create(ctx context.Context, items []domain.ItemRequest) (_ domain.Order, err error) {
	defer o.observe(opCreate, time.Now(), &err)

	if len(items) == 0 {
		return domain.Order{}, domain.NewError(domain.KindValidation, "order must contain at least one item", domain.ErrItemsRequired)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return domain.Order{}, domain.NewError(domain.KindValidation, "item quantity must be greater than zero", domain.ErrItemQtyInvalid)
		}
	}

	now := o.now().UTC()
	order := domain.Order{
		ID:        o.newID(),
		Status:    domain.OrderStatusPending,
		Items:     make([]domain.OrderItem, 0, len(items)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        o.newID(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	products, err := o.resolve(ctx, order.ProductIDs())
	if err != nil {
		return domain.Order{}, err
	}
	var errs []error
	for i := range order.Items {
		p := products[order.Items[i].ProductID]
		// Деньги хранятся с точностью до цента, цену каталога не округляем.
		if !p.Price.Equal(p.Price.Round(2)) {
			errs = append(errs, fmt.Errorf("product %d price %s has sub-cent precision", p.ID, p.Price))
		}
		order.Items[i].Price = p.Price
		order.Items[i].Name = p.Name
	}
	order.TotalAmount, order.TotalItems = domain.Totals(order.Items)

	if errs = append(errs, order.ValidateInvariants()...); len(errs) > 0 {
		return domain.Order{}, domain.NewError(domain.KindProductResolution, "catalog returned invalid product data", errors.Join(errs...))
	}

	if err := o.store.Create(ctx, order); err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Error("failed to persist order")
		return domain.Order{}, domain.NewError(domain.KindPersistence, "failed to persist order", err)
	}

	o.metrics.RecordOrderCreated()
	o.publish(ctx, domain.OrderEventCreated, order)
	return order, nil
}

// FindAll возвращает страницу заказов. Имена товаров в списке не подставляются.
func (o *orchestrator) FindAll(ctx context.Context, query domain.ListQuery) (_ domain.Page, err error) {
	defer o.observe(opFindAll, time.Now(), &err)

	if err := query.Validate(); err != nil {
		msg := "page and limit must be positive"
		if errors.Is(err, domain.ErrUnknownStatus) {
			msg = domain.StatusValuesMessage()
		}
		return domain.Page{}, domain.NewError(domain.KindValidation, msg, err)
	}

	orders, total, err := o.store.List(ctx, query.Status, query.Offset(), query.Limit)
	if err != nil {
		o.logger.WithError(err).Error("failed to list orders")
		return domain.Page{}, domain.NewError(domain.KindPersistence, "failed to list orders", err)
	}

	return domain.Page{
		Data: orders,
		Meta: domain.PageMeta{
			Total:       total,
			CurrentPage: query.Page,
			LastPage:    domain.LastPage(total, query.Limit),
		},
	}, nil
}

// FindOne загружает заказ и подставляет текущие имена товаров из каталога.
func (o *orchestrator) FindOne(ctx context.Context, id string) (_ domain.Order, err error) {
	defer o.observe(opFindOne, time.Now(), &err)
	return o.findOne(ctx, id)
}

func (o *orchestrator) findOne(ctx context.Context, id string) (domain.Order, error) {
	order, err := o.store.Get(ctx, id)
	if err != nil {
		return domain.Order{}, o.loadError(id, err)
	}
	if err := o.enrich(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// ChangeStatus меняет статус. Совпадающий статус возвращается без записи.
func (o *orchestrator) ChangeStatus(ctx context.Context, id string, status domain.OrderStatus) (_ domain.Order, err error) {
	defer o.observe(opChangeStatus, time.Now(), &err)

	if !status.Valid() {
		return domain.Order{}, domain.NewError(domain.KindValidation, domain.StatusValuesMessage(), domain.ErrUnknownStatus)
	}

	order, err := o.findOne(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status == status {
		return order, nil
	}

	updatedAt := o.now().UTC()
	if err := o.store.UpdateStatus(ctx, id, status, updatedAt); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, notFound(id)
		}
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id": id,
			"status":   status,
		}).Error("failed to update order status")
		return domain.Order{}, domain.NewError(domain.KindPersistence, "failed to update order status", err)
	}

	order.Status = status
	order.UpdatedAt = updatedAt

	o.metrics.RecordStatusChange(string(status))
	o.publish(ctx, domain.OrderEventStatusChanged, order)
	return order, nil
}

// CreatePaymentSession передаёт позиции заказа платёжному сервису. Заказ не меняется.
func (o *orchestrator) CreatePaymentSession(ctx context.Context, order domain.Order) (_ domain.PaymentSession, err error) {
	defer o.observe(opPaymentSession, time.Now(), &err)

	req := domain.PaymentSessionRequest{
		OrderID:  order.ID,
		Currency: domain.DefaultCurrency,
		Items:    make([]domain.PaymentSessionItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, domain.PaymentSessionItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	start := time.Now()
	session, err := o.payments.CreateSession(ctx, req)
	o.metrics.ObserveCollaboratorCall(collaboratorPayment, err, time.Since(start))
	if err != nil {
		o.logger.WithError(err).WithField("order_id", order.ID).Warn("payment session creation failed")
		return domain.PaymentSession{}, domain.NewError(domain.KindPaymentGateway, "failed to create payment session", err)
	}
	return session, nil
}

// PaidOrder фиксирует оплату и квитанцию одной транзакцией. Сумма не перепроверяется.
func (o *orchestrator) PaidOrder(ctx context.Context, confirmation domain.PaymentConfirmation) (_ domain.Order, err error) {
	defer o.observe(opPaidOrder, time.Now(), &err)

	paidAt := confirmation.PaidAt
	if paidAt.IsZero() {
		paidAt = o.now()
	}

	order, err := o.store.MarkPaid(ctx, domain.PaymentResult{
		OrderID:            confirmation.OrderID,
		PaidAt:             paidAt.UTC(),
		ExternalPaymentRef: confirmation.PaymentID,
		ReceiptID:          o.newID(),
		ReceiptURL:         confirmation.ReceiptURL,
	})
	if err != nil {
		msg := "failed to record payment"
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			msg = fmt.Sprintf("order %s not found", confirmation.OrderID)
		case errors.Is(err, domain.ErrReceiptAlreadyExists):
			msg = fmt.Sprintf("order %s already has a receipt", confirmation.OrderID)
		}
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id":   confirmation.OrderID,
			"payment_id": confirmation.PaymentID,
		}).Error("failed to mark order paid")
		return domain.Order{}, domain.NewError(domain.KindPersistence, msg, err)
	}

	o.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"payment_id": confirmation.PaymentID,
	}).Info("order paid")
	o.metrics.RecordOrderPaid()
	o.publish(ctx, domain.OrderEventPaid, order)
	return order, nil
}

// resolve вызывает каталог одним пакетным запросом и индексирует товары по id.
func (o *orchestrator) resolve(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	start := time.Now()
	products, err := o.catalog.Resolve(ctx, ids)
	o.metrics.ObserveCollaboratorCall(collaboratorCatalog, err, time.Since(start))
	if err != nil {
		o.logger.WithError(err).WithField("product_ids", ids).Warn("product resolution failed")
		msg := "product catalog is unavailable"
		if errors.Is(err, domain.ErrProductsUnresolved) {
			msg = "some products could not be resolved"
		}
		return nil, domain.NewError(domain.KindProductResolution, msg, err)
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, domain.NewError(domain.KindProductResolution, "some products could not be resolved", domain.ErrProductsUnresolved)
		}
	}
	return byID, nil
}

func (o *orchestrator) enrich(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return nil
	}
	products, err := o.resolve(ctx, order.ProductIDs())
	if err != nil {
		return err
	}
	for i := range order.Items {
		order.Items[i].Name = products[order.Items[i].ProductID].Name
	}
	return nil
}

func (o *orchestrator) loadError(id string, err error) error {
	if errors.Is(err, domain.ErrOrderNotFound) {
		return notFound(id)
	}
	o.logger.WithError(err).WithField("order_id", id).Error("failed to load order")
	return domain.NewError(domain.KindPersistence, "failed to load order", err)
}

func notFound(id string) error {
	return domain.NewError(domain.KindNotFound, fmt.Sprintf("order with id %s not found", id), domain.ErrOrderNotFound)
}

// publish отправляет событие после фиксации. Ошибка брокера не откатывает операцию.
func (o *orchestrator) publish(ctx context.Context, eventType domain.OrderEventType, order domain.Order) {
	if o.events == nil {
		return
	}
	err := o.events.PublishOrderEvent(ctx, domain.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	})
	o.metrics.RecordEventPublished(string(eventType), err)
	if err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Warn("failed to publish order event")
	}
}

func (o *orchestrator) observe(operation string, start time.Time, err *error) {
	result := metrics.ResultOK
	if *err != nil {
		result = string(domain.KindOf(*err))
	}
	o.metrics.ObserveOperation(operation, result, time.Since(start))
}
