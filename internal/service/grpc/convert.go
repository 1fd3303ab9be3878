package grpcsvc

import (
	ordersv1 "github.com/vladislavdragonenkov/orders/api/orders/v1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func toProtoOrder(order domain.Order) *ordersv1.Order {
	out := &ordersv1.Order{
		ID:          order.ID,
		TotalAmount: order.TotalAmount.StringFixed(2),
		TotalItems:  int32(order.TotalItems),
		Status:      string(order.Status),
		Paid:        order.Paid,
		PaidAt:      order.PaidAt,
		Items:       make([]*ordersv1.OrderItem, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.ExternalPaymentRef != nil {
		out.ExternalPaymentRef = *order.ExternalPaymentRef
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, &ordersv1.OrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	if order.Receipt != nil {
		out.Receipt = &ordersv1.Receipt{
			ID:         order.Receipt.ID,
			ReceiptURL: order.Receipt.ReceiptURL,
			CreatedAt:  order.Receipt.CreatedAt,
		}
	}
	return out
}
