package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "domain error",
			err:  NewError(KindNotFound, "order not found", ErrOrderNotFound),
			want: KindNotFound,
		},
		{
			name: "wrapped domain error",
			err:  fmt.Errorf("context: %w", NewError(KindPaymentGateway, "payment failed", nil)),
			want: KindPaymentGateway,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: KindPersistence,
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	err := NewError(KindPersistence, "failed to mark order as paid", ErrReceiptAlreadyExists)

	if !errors.Is(err, ErrReceiptAlreadyExists) {
		t.Fatal("expected errors.Is to see the cause")
	}
	if MessageOf(err) != "failed to mark order as paid" {
		t.Fatalf("unexpected message: %q", MessageOf(err))
	}
	if MessageOf(errors.New("pq: relation does not exist")) != "internal error" {
		t.Fatal("raw errors must not leak their text")
	}
	if err.Error() == "" {
		t.Fatal("expected non-empty error string")
	}
}
