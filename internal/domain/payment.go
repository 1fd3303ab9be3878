package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency - валюта платёжных сессий.
const DefaultCurrency = "usd"

// PaymentSessionItem - позиция, передаваемая в платёжную сессию.
type PaymentSessionItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int32
}

// PaymentSessionRequest - данные для открытия платёжной сессии.
type PaymentSessionRequest struct {
	OrderID  string
	Currency string
	Items    []PaymentSessionItem
}

// PaymentSession - непрозрачный дескриптор сессии от платёжного сервиса.
type PaymentSession struct {
	ID         string
	URL        string
	SuccessURL string
	CancelURL  string
}

// PaymentConfirmation - событие об успешной оплате от платёжного сервиса.
type PaymentConfirmation struct {
	OrderID    string
	PaymentID  string
	ReceiptURL string
	// PaidAt может быть пустым: тогда используется текущее время.
	PaidAt time.Time
}

// PaymentResult - то, что хранилище записывает при подтверждении оплаты.
type PaymentResult struct {
	OrderID            string
	PaidAt             time.Time
	ExternalPaymentRef string
	ReceiptID          string
	ReceiptURL         string
}
