package payment

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// MockGateway - конфигурируемая заглушка PaymentGatewayClient для тестов и локального запуска.
type MockGateway struct {
	mu sync.Mutex

	Err         error
	Calls       int
	LastRequest domain.PaymentSessionRequest
}

// NewMockGateway возвращает mock с успешным сценарием по умолчанию.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// CreateSession запоминает запрос и возвращает сессию с URL по order_id.
func (m *MockGateway) CreateSession(_ context.Context, req domain.PaymentSessionRequest) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastRequest = req
	if m.Err != nil {
		return domain.PaymentSession{}, m.Err
	}
	return domain.PaymentSession{
		ID:  "cs_mock_" + req.OrderID,
		URL: "https://payments.local/checkout/" + req.OrderID,
	}, nil
}

var _ domain.PaymentGatewayClient = (*MockGateway)(nil)
