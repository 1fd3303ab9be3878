package ordersv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/api/rpcjson"
)

const ServiceName = "orders.v1.OrderService"

const (
	OrderService_CreateOrder_FullMethodName          = "/orders.v1.OrderService/CreateOrder"
	OrderService_FindAllOrders_FullMethodName        = "/orders.v1.OrderService/FindAllOrders"
	OrderService_FindOneOrder_FullMethodName         = "/orders.v1.OrderService/FindOneOrder"
	OrderService_ChangeOrderStatus_FullMethodName    = "/orders.v1.OrderService/ChangeOrderStatus"
	OrderService_CreatePaymentSession_FullMethodName = "/orders.v1.OrderService/CreatePaymentSession"
	OrderService_ConfirmPayment_FullMethodName       = "/orders.v1.OrderService/ConfirmPayment"
)

// OrderServiceClient - клиент orders.v1.OrderService.
type OrderServiceClient interface {
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error)
	FindAllOrders(ctx context.Context, in *FindAllOrdersRequest, opts ...grpc.CallOption) (*FindAllOrdersResponse, error)
	FindOneOrder(ctx context.Context, in *FindOneOrderRequest, opts ...grpc.CallOption) (*FindOneOrderResponse, error)
	ChangeOrderStatus(ctx context.Context, in *ChangeOrderStatusRequest, opts ...grpc.CallOption) (*ChangeOrderStatusResponse, error)
	CreatePaymentSession(ctx context.Context, in *CreatePaymentSessionRequest, opts ...grpc.CallOption) (*CreatePaymentSessionResponse, error)
	ConfirmPayment(ctx context.Context, in *ConfirmPaymentRequest, opts ...grpc.CallOption) (*ConfirmPaymentResponse, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

func (c *orderServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	return rpcjson.Invoke[CreateOrderResponse](ctx, c.cc, OrderService_CreateOrder_FullMethodName, in, opts...)
}

func (c *orderServiceClient) FindAllOrders(ctx context.Context, in *FindAllOrdersRequest, opts ...grpc.CallOption) (*FindAllOrdersResponse, error) {
	return rpcjson.Invoke[FindAllOrdersResponse](ctx, c.cc, OrderService_FindAllOrders_FullMethodName, in, opts...)
}

func (c *orderServiceClient) FindOneOrder(ctx context.Context, in *FindOneOrderRequest, opts ...grpc.CallOption) (*FindOneOrderResponse, error) {
	return rpcjson.Invoke[FindOneOrderResponse](ctx, c.cc, OrderService_FindOneOrder_FullMethodName, in, opts...)
}

func (c *orderServiceClient) ChangeOrderStatus(ctx context.Context, in *ChangeOrderStatusRequest, opts ...grpc.CallOption) (*ChangeOrderStatusResponse, error) {
	return rpcjson.Invoke[ChangeOrderStatusResponse](ctx, c.cc, OrderService_ChangeOrderStatus_FullMethodName, in, opts...)
}

func (c *orderServiceClient) CreatePaymentSession(ctx context.Context, in *CreatePaymentSessionRequest, opts ...grpc.CallOption) (*CreatePaymentSessionResponse, error) {
	return rpcjson.Invoke[CreatePaymentSessionResponse](ctx, c.cc, OrderService_CreatePaymentSession_FullMethodName, in, opts...)
}

func (c *orderServiceClient) ConfirmPayment(ctx context.Context, in *ConfirmPaymentRequest, opts ...grpc.CallOption) (*ConfirmPaymentResponse, error) {
	return rpcjson.Invoke[ConfirmPaymentResponse](ctx, c.cc, OrderService_ConfirmPayment_FullMethodName, in, opts...)
}

// OrderServiceServer - серверная сторона orders.v1.OrderService.
// Реализации должны встраивать UnimplementedOrderServiceServer.
type OrderServiceServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
	FindAllOrders(context.Context, *FindAllOrdersRequest) (*FindAllOrdersResponse, error)
	FindOneOrder(context.Context, *FindOneOrderRequest) (*FindOneOrderResponse, error)
	ChangeOrderStatus(context.Context, *ChangeOrderStatusRequest) (*ChangeOrderStatusResponse, error)
	CreatePaymentSession(context.Context, *CreatePaymentSessionRequest) (*CreatePaymentSessionResponse, error)
	ConfirmPayment(context.Context, *ConfirmPaymentRequest) (*ConfirmPaymentResponse, error)
	mustEmbedUnimplementedOrderServiceServer()
}

type UnimplementedOrderServiceServer struct{}

func (UnimplementedOrderServiceServer) CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrder not implemented")
}
func (UnimplementedOrderServiceServer) FindAllOrders(context.Context, *FindAllOrdersRequest) (*FindAllOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FindAllOrders not implemented")
}
func (UnimplementedOrderServiceServer) FindOneOrder(context.Context, *FindOneOrderRequest) (*FindOneOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FindOneOrder not implemented")
}
func (UnimplementedOrderServiceServer) ChangeOrderStatus(context.Context, *ChangeOrderStatusRequest) (*ChangeOrderStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangeOrderStatus not implemented")
}
func (UnimplementedOrderServiceServer) CreatePaymentSession(context.Context, *CreatePaymentSessionRequest) (*CreatePaymentSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePaymentSession not implemented")
}
func (UnimplementedOrderServiceServer) ConfirmPayment(context.Context, *ConfirmPaymentRequest) (*ConfirmPaymentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmPayment not implemented")
}
func (UnimplementedOrderServiceServer) mustEmbedUnimplementedOrderServiceServer() {}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateOrder",
			Handler:    rpcjson.UnaryHandler(OrderService_CreateOrder_FullMethodName, OrderServiceServer.CreateOrder),
		},
		{
			MethodName: "FindAllOrders",
			Handler:    rpcjson.UnaryHandler(OrderService_FindAllOrders_FullMethodName, OrderServiceServer.FindAllOrders),
		},
		{
			MethodName: "FindOneOrder",
			Handler:    rpcjson.UnaryHandler(OrderService_FindOneOrder_FullMethodName, OrderServiceServer.FindOneOrder),
		},
		{
			MethodName: "ChangeOrderStatus",
			Handler:    rpcjson.UnaryHandler(OrderService_ChangeOrderStatus_FullMethodName, OrderServiceServer.ChangeOrderStatus),
		},
		{
			MethodName: "CreatePaymentSession",
			Handler:    rpcjson.UnaryHandler(OrderService_CreatePaymentSession_FullMethodName, OrderServiceServer.CreatePaymentSession),
		},
		{
			MethodName: "ConfirmPayment",
			Handler:    rpcjson.UnaryHandler(OrderService_ConfirmPayment_FullMethodName, OrderServiceServer.ConfirmPayment),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orders/v1/orders.json",
}
