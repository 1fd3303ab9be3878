// Package ordersv1 описывает контракт gRPC-сервиса orders.v1.OrderService.
// Сообщения передаются в JSON (см. rpcjson), денежные суммы - десятичными строками.
package ordersv1

import "time"

type OrderItem struct {
	ID        string `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
}

type Receipt struct {
	ID         string    `json:"id"`
	ReceiptURL string    `json:"receipt_url"`
	CreatedAt  time.Time `json:"created_at"`
}

type Order struct {
	ID                 string       `json:"id"`
	TotalAmount        string       `json:"total_amount"`
	TotalItems         int32        `json:"total_items"`
	Status             string       `json:"status"`
	Paid               bool         `json:"paid"`
	PaidAt             *time.Time   `json:"paid_at,omitempty"`
	ExternalPaymentRef string       `json:"external_payment_ref,omitempty"`
	Items              []*OrderItem `json:"items"`
	Receipt            *Receipt     `json:"receipt,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

type PageMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int32 `json:"current_page"`
	LastPage    int32 `json:"last_page"`
}

type PaymentSession struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// CreateOrderItem - позиция запроса. Цена не принимается от клиента.
type CreateOrderItem struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int32 `json:"quantity" validate:"gt=0"`
}

type CreateOrderRequest struct {
	Items []*CreateOrderItem `json:"items" validate:"required,min=1,dive,required"`
}

type CreateOrderResponse struct {
	Order *Order `json:"order"`
}

// FindAllOrdersRequest: нулевые page и limit заменяются значениями по умолчанию.
type FindAllOrdersRequest struct {
	Status string `json:"status,omitempty" validate:"omitempty,order_status"`
	Page   int32  `json:"page,omitempty" validate:"omitempty,min=1"`
	Limit  int32  `json:"limit,omitempty" validate:"omitempty,min=1"`
}

type FindAllOrdersResponse struct {
	Data []*Order  `json:"data"`
	Meta *PageMeta `json:"meta"`
}

type FindOneOrderRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type FindOneOrderResponse struct {
	Order *Order `json:"order"`
}

type ChangeOrderStatusRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,order_status"`
}

type ChangeOrderStatusResponse struct {
	Order *Order `json:"order"`
}

type CreatePaymentSessionRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

type CreatePaymentSessionResponse struct {
	Session *PaymentSession `json:"session"`
}

// ConfirmPaymentRequest - подтверждение оплаты от платёжного сервиса.
type ConfirmPaymentRequest struct {
	OrderID    string     `json:"order_id" validate:"required,uuid"`
	PaymentID  string     `json:"payment_id" validate:"required"`
	ReceiptURL string     `json:"receipt_url" validate:"required,url"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

type ConfirmPaymentResponse struct {
	Order *Order `json:"order"`
}
