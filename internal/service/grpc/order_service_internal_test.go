package grpcsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	ordersv1 "github.com/vladislavdragonenkov/orders/api/orders/v1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func TestCodeForKind(t *testing.T) {
	cases := map[domain.Kind]codes.Code{
		domain.KindValidation:        codes.InvalidArgument,
		domain.KindProductResolution: codes.InvalidArgument,
		domain.KindNotFound:          codes.NotFound,
		domain.KindPaymentGateway:    codes.Unavailable,
		domain.KindPersistence:       codes.Internal,
		domain.Kind("unexpected"):    codes.Internal,
	}
	for kind, want := range cases {
		if got := codeForKind(kind); got != want {
			t.Fatalf("kind %s: got %s want %s", kind, got, want)
		}
	}
}

func TestStatusErrorHidesCause(t *testing.T) {
	s := NewOrderService(nil, nil)

	err := s.statusError(domain.NewError(domain.KindPersistence, "failed to persist order", errors.New("pq: duplicate key")), "CreateOrder")
	st := status.Convert(err)
	if st.Code() != codes.Internal || st.Message() != "failed to persist order" {
		t.Fatalf("unexpected status: %v", st)
	}

	err = s.statusError(errors.New("raw driver failure"), "FindAllOrders")
	st = status.Convert(err)
	if st.Code() != codes.Internal || st.Message() != "internal error" {
		t.Fatalf("raw errors must map to a generic internal error, got %v", st)
	}
}

func TestValidatorNilRequest(t *testing.T) {
	v := newRequestValidator()

	var req *ordersv1.FindOneOrderRequest
	if err := v.request(req); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for nil request, got %v", err)
	}

	s := NewOrderService(nil, nil)
	if _, err := s.CreateOrder(context.Background(), nil); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for nil CreateOrder request, got %v", err)
	}
}

func TestValidatorOrderStatusTag(t *testing.T) {
	v := newRequestValidator()

	ok := &ordersv1.ChangeOrderStatusRequest{ID: "0b1e4c9a-3f7d-4a55-8c0e-1d2f3a4b5c6d", Status: "paid"}
	if err := v.request(ok); err != nil {
		t.Fatalf("lowercase status should be accepted: %v", err)
	}

	bad := &ordersv1.ChangeOrderStatusRequest{ID: ok.ID, Status: "SHIPPED"}
	err := v.request(bad)
	if status.Convert(err).Message() != domain.StatusValuesMessage() {
		t.Fatalf("unexpected message: %v", err)
	}

	missing := &ordersv1.ChangeOrderStatusRequest{ID: ok.ID}
	if msg := status.Convert(v.request(missing)).Message(); msg != "status is required" {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestToProtoOrder(t *testing.T) {
	ref := "ch_9"
	order := domain.Order{
		ID:                 "o-1",
		Status:             domain.OrderStatusPaid,
		Paid:               true,
		ExternalPaymentRef: &ref,
		Items: []domain.OrderItem{{
			ID: "i-1", ProductID: 5, Quantity: 2, Name: "Cable",
		}},
		Receipt: &domain.OrderReceipt{ID: "r-1", ReceiptURL: "https://r"},
	}
	order.TotalAmount, order.TotalItems = domain.Totals(order.Items)

	out := toProtoOrder(order)
	if out.ExternalPaymentRef != "ch_9" || out.Receipt.ReceiptURL != "https://r" {
		t.Fatalf("unexpected payment fields: %+v", out)
	}
	if out.TotalAmount != "0.00" || out.Items[0].Price != "0.00" || out.TotalItems != 2 {
		t.Fatalf("unexpected amounts: %+v", out)
	}
}

func TestMustRegisterValidationPanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty validation tag")
		}
	}()
	mustRegisterValidation(validator.New(), "", func(validator.FieldLevel) bool { return true })
}
