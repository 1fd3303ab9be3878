package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// orderStoreInMemory - in-memory реализация OrderStore. Каждая операция
// выполняется под одной блокировкой, поэтому изменения видны целиком или не видны вовсе.
type orderStoreInMemory struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	seq    map[string]int64
	next   int64
}

// NewOrderStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewOrderStore() domain.OrderStore {
	return &orderStoreInMemory{
		orders: make(map[string]domain.Order),
		seq:    make(map[string]int64),
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (s *orderStoreInMemory) Create(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	s.next++
	s.seq[order.ID] = s.next
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает копию заказа или ErrOrderNotFound.
func (s *orderStoreInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// List возвращает страницу заказов в порядке создания.
func (s *orderStoreInMemory) List(_ context.Context, status *domain.OrderStatus, offset, limit int) ([]domain.Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if status != nil && order.Status != *status {
			continue
		}
		matched = append(matched, order)
	}

	sort.Slice(matched, func(i, j int) bool {
		return s.seq[matched[i].ID] < s.seq[matched[j].ID]
	})

	total := len(matched)
	if offset >= total {
		return []domain.Order{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	page := make([]domain.Order, 0, end-offset)
	for _, order := range matched[offset:end] {
		page = append(page, cloneOrder(order))
	}
	return page, total, nil
}

// UpdateStatus меняет статус заказа.
func (s *orderStoreInMemory) UpdateStatus(_ context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	s.orders[id] = order
	return nil
}

// MarkPaid фиксирует оплату и создаёт квитанцию.
func (s *orderStoreInMemory) MarkPaid(_ context.Context, result domain.PaymentResult) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[result.OrderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if order.Receipt != nil {
		return domain.Order{}, domain.ErrReceiptAlreadyExists
	}

	paidAt := result.PaidAt
	ref := result.ExternalPaymentRef
	order.Status = domain.OrderStatusPaid
	order.Paid = true
	order.PaidAt = &paidAt
	order.ExternalPaymentRef = &ref
	order.UpdatedAt = paidAt
	order.Receipt = &domain.OrderReceipt{
		ID:         result.ReceiptID,
		OrderID:    order.ID,
		ReceiptURL: result.ReceiptURL,
		CreatedAt:  paidAt,
	}
	s.orders[order.ID] = order
	return cloneOrder(order), nil
}

// cloneOrder копирует заказ, чтобы вызывающий код не мутировал хранилище.
func cloneOrder(order domain.Order) domain.Order {
	cp := order
	cp.Items = make([]domain.OrderItem, len(order.Items))
	copy(cp.Items, order.Items)
	for i := range cp.Items {
		cp.Items[i].Name = ""
	}
	if order.PaidAt != nil {
		paidAt := *order.PaidAt
		cp.PaidAt = &paidAt
	}
	if order.ExternalPaymentRef != nil {
		ref := *order.ExternalPaymentRef
		cp.ExternalPaymentRef = &ref
	}
	if order.Receipt != nil {
		receipt := *order.Receipt
		cp.Receipt = &receipt
	}
	return cp
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
