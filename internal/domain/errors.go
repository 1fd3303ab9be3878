package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total amount must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия итогов заказа сумме позиций.
	ErrTotalsMismatch = errors.New("order totals do not match items")
	// ErrUnknownStatus - статус вне перечисления OrderStatuses.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrInvalidPagination - page или limit меньше единицы.
	ErrInvalidPagination = errors.New("page and limit must be positive")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists - заказ с таким ID уже сохранён.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrReceiptAlreadyExists - у заказа уже есть квитанция об оплате.
	ErrReceiptAlreadyExists = errors.New("order receipt already exists")
	// ErrProductsUnresolved - каталог вернул не все запрошенные товары.
	ErrProductsUnresolved = errors.New("some products could not be resolved")
)

// Kind классифицирует доменные ошибки для вызывающей стороны.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindProductResolution Kind = "product_resolution"
	KindNotFound          Kind = "not_found"
	KindPaymentGateway    Kind = "payment_gateway"
	KindPersistence       Kind = "persistence"
)

// Error - ошибка с видом и человекочитаемым сообщением. Err хранит причину
// для логов и errors.Is, но в Message её детали не попадают.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError создаёт ошибку заданного вида.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает вид ошибки. Ошибки без вида считаются ошибками хранения.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindPersistence
}

// MessageOf возвращает безопасное для клиента сообщение.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}

// IsKind проверяет вид ошибки.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
