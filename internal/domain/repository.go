package domain

import (
	"context"
	"time"
)

// OrderStore описывает транзакционное хранилище заказов, позиций и квитанций.
type OrderStore interface {
	// Create атомарно сохраняет заказ вместе с позициями.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает страницу заказов, отфильтрованных по статусу (nil - все),
	// в порядке создания, и общее количество подходящих заказов.
	List(ctx context.Context, status *OrderStatus, offset, limit int) ([]Order, int, error)
	// UpdateStatus меняет статус заказа. Возвращает ErrOrderNotFound, если заказа нет.
	UpdateStatus(ctx context.Context, id string, status OrderStatus, updatedAt time.Time) error
	// MarkPaid в одной транзакции переводит заказ в PAID и создаёт квитанцию.
	MarkPaid(ctx context.Context, result PaymentResult) (Order, error)
}
