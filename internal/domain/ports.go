package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product - представление товара из внешнего каталога. Не кэшируется между запросами.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// ProductCatalogClient описывает обращение к удалённому каталогу товаров.
type ProductCatalogClient interface {
	// Resolve одним пакетным вызовом возвращает товары по идентификаторам.
	// Если хотя бы один идентификатор не найден, возвращается ошибка.
	Resolve(ctx context.Context, ids []int64) ([]Product, error)
}

// PaymentGatewayClient описывает обращение к удалённому платёжному сервису.
type PaymentGatewayClient interface {
	// CreateSession открывает платёжную сессию и возвращает её дескриптор.
	CreateSession(ctx context.Context, req PaymentSessionRequest) (PaymentSession, error)
}

// EventPublisher публикует доменные события заказа после фиксации изменений.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderEventType - тип события заказа.
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	OrderEventPaid          OrderEventType = "order.paid"
)

// OrderEvent - событие жизненного цикла заказа.
type OrderEvent struct {
	Type        OrderEventType
	OrderID     string
	Status      OrderStatus
	TotalAmount decimal.Decimal
}
