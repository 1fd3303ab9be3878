package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending - начальный статус: заказ создан, оплаты ещё не было.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusPaid - платёжный сервис подтвердил оплату.
	OrderStatusPaid OrderStatus = "PAID"
	// OrderStatusDelivered - заказ доставлен клиенту.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled - заказ отменён.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses - единый список допустимых статусов. Его используют валидация
// запросов, парсинг и CHECK-ограничение в миграции.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid сообщает, входит ли статус в закрытое перечисление.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus разбирает строку без учёта регистра.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", NewError(KindValidation, StatusValuesMessage(), ErrUnknownStatus)
	}
	return status, nil
}

// StatusValuesMessage формирует подсказку со списком допустимых статусов.
func StatusValuesMessage() string {
	names := make([]string, 0, len(OrderStatuses))
	for _, s := range OrderStatuses {
		names = append(names, string(s))
	}
	return "Possible status values are " + strings.Join(names, ",")
}

// OrderItem - позиция заказа. Price фиксируется из каталога в момент создания
// и больше не меняется. Name не хранится: его подставляют при чтении.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
	Name      string
}

// Subtotal возвращает price × quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// OrderReceipt - подтверждение оплаты, не больше одного на заказ.
type OrderReceipt struct {
	ID         string
	OrderID    string
	ReceiptURL string
	CreatedAt  time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID                 string
	TotalAmount        decimal.Decimal
	TotalItems         int
	Status             OrderStatus
	Paid               bool
	PaidAt             *time.Time
	ExternalPaymentRef *string
	Items              []OrderItem
	Receipt            *OrderReceipt
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Totals считает сумму и количество единиц по позициям.
func Totals(items []OrderItem) (decimal.Decimal, int) {
	amount := decimal.Zero
	count := 0
	for _, item := range items {
		amount = amount.Add(item.Subtotal())
		count += int(item.Quantity)
	}
	return amount, count
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrUnknownStatus)
	}

	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	amount, count := Totals(o.Items)
	if !amount.Equal(o.TotalAmount) || count != o.TotalItems {
		errs = append(errs, ErrTotalsMismatch)
	}

	return errs
}

// ProductIDs возвращает уникальные идентификаторы товаров в порядке первого появления.
func (o *Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Items))
	seen := make(map[int64]struct{}, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ItemRequest - позиция из входящего запроса на создание заказа.
type ItemRequest struct {
	ProductID int64
	Quantity  int32
}
