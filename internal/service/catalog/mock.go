package catalog

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// MockClient - каталог в памяти для тестов и локального запуска.
type MockClient struct {
	mu       sync.Mutex
	products map[int64]domain.Product

	Err   error
	Calls int
}

// NewMockClient возвращает каталог с заданными товарами.
func NewMockClient(products ...domain.Product) *MockClient {
	m := &MockClient{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// DemoProducts - небольшой набор товаров для запуска без внешнего каталога.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Mechanical keyboard", Price: decimal.RequireFromString("89.90")},
		{ID: 2, Name: "Wireless mouse", Price: decimal.RequireFromString("24.50")},
		{ID: 3, Name: "USB-C hub", Price: decimal.RequireFromString("39.00")},
	}
}

// Put добавляет или переименовывает товар.
func (m *MockClient) Put(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// Resolve возвращает товары в порядке ids либо ошибку, если какого-то нет.
func (m *MockClient) Resolve(_ context.Context, ids []int64) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	if err := ensureComplete(ids, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CallCount возвращает число вызовов Resolve.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

var _ domain.ProductCatalogClient = (*MockClient)(nil)
