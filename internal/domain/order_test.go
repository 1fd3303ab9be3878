package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// helper для создания заказа с двумя позициями.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "order-1",
		TotalAmount: decimal.RequireFromString("27.50"),
		TotalItems:  4,
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("5.50")},
			{ID: "item-2", ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("11")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	order := makeOrder()
	order.Items[0].Quantity = 0
	order.Items[1].Price = decimal.NewFromInt(-1)
	order.Status = "SHIPPED"

	errs := order.ValidateInvariants()
	for _, want := range []error{domain.ErrItemQtyInvalid, domain.ErrItemPriceInvalid, domain.ErrUnknownStatus, domain.ErrTotalsMismatch} {
		found := false
		for _, err := range errs {
			if errors.Is(err, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %v in %v", want, errs)
		}
	}
}

func TestOrderValidateInvariants_NoItems(t *testing.T) {
	order := domain.Order{Status: domain.OrderStatusPending}
	errs := order.ValidateInvariants()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrItemsRequired) {
		t.Fatalf("expected only ErrItemsRequired, got %v", errs)
	}
}

func TestTotals(t *testing.T) {
	amount, count := domain.Totals(makeOrder().Items)
	if !amount.Equal(decimal.RequireFromString("27.5")) {
		t.Fatalf("unexpected amount: %s", amount)
	}
	if count != 4 {
		t.Fatalf("unexpected count: %d", count)
	}
}

func TestProductIDs_Distinct(t *testing.T) {
	order := makeOrder()
	order.Items = append(order.Items, domain.OrderItem{ProductID: 1, Quantity: 1})

	ids := order.ProductIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus(" delivered ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.OrderStatusDelivered {
		t.Fatalf("unexpected status: %s", status)
	}

	_, err = domain.ParseOrderStatus("SHIPPED")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if domain.MessageOf(err) != "Possible status values are PENDING,PAID,DELIVERED,CANCELLED" {
		t.Fatalf("unexpected message: %q", domain.MessageOf(err))
	}
}

func TestListQuery(t *testing.T) {
	q := domain.ListQuery{Page: 3, Limit: 10}
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Offset() != 20 {
		t.Fatalf("unexpected offset: %d", q.Offset())
	}

	if err := (domain.ListQuery{Page: 0, Limit: 10}).Validate(); !errors.Is(err, domain.ErrInvalidPagination) {
		t.Fatalf("expected ErrInvalidPagination, got %v", err)
	}
	bad := domain.OrderStatus("nope")
	if err := (domain.ListQuery{Page: 1, Limit: 1, Status: &bad}).Validate(); !errors.Is(err, domain.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestLastPage(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{25, 10, 3},
		{30, 10, 3},
		{1, 10, 1},
		{0, 10, 0},
	}
	for _, tc := range cases {
		if got := domain.LastPage(tc.total, tc.limit); got != tc.want {
			t.Fatalf("LastPage(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
