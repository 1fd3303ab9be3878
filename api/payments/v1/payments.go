// Package paymentsv1 описывает потребляемый контракт платёжного сервиса.
package paymentsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/api/rpcjson"
)

const (
	ServiceName                                        = "payments.v1.PaymentService"
	PaymentService_CreatePaymentSession_FullMethodName = "/payments.v1.PaymentService/CreatePaymentSession"
)

type SessionItem struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
}

type CreatePaymentSessionRequest struct {
	OrderID  string         `json:"order_id"`
	Currency string         `json:"currency"`
	Items    []*SessionItem `json:"items"`
}

type PaymentSession struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

type CreatePaymentSessionResponse struct {
	Session *PaymentSession `json:"session"`
}

type PaymentServiceClient interface {
	CreatePaymentSession(ctx context.Context, in *CreatePaymentSessionRequest, opts ...grpc.CallOption) (*CreatePaymentSessionResponse, error)
}

type paymentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPaymentServiceClient(cc grpc.ClientConnInterface) PaymentServiceClient {
	return &paymentServiceClient{cc: cc}
}

func (c *paymentServiceClient) CreatePaymentSession(ctx context.Context, in *CreatePaymentSessionRequest, opts ...grpc.CallOption) (*CreatePaymentSessionResponse, error) {
	return rpcjson.Invoke[CreatePaymentSessionResponse](ctx, c.cc, PaymentService_CreatePaymentSession_FullMethodName, in, opts...)
}

type PaymentServiceServer interface {
	CreatePaymentSession(context.Context, *CreatePaymentSessionRequest) (*CreatePaymentSessionResponse, error)
	mustEmbedUnimplementedPaymentServiceServer()
}

type UnimplementedPaymentServiceServer struct{}

func (UnimplementedPaymentServiceServer) CreatePaymentSession(context.Context, *CreatePaymentSessionRequest) (*CreatePaymentSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePaymentSession not implemented")
}
func (UnimplementedPaymentServiceServer) mustEmbedUnimplementedPaymentServiceServer() {}

func RegisterPaymentServiceServer(s grpc.ServiceRegistrar, srv PaymentServiceServer) {
	s.RegisterService(&PaymentService_ServiceDesc, srv)
}

var PaymentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreatePaymentSession",
			Handler:    rpcjson.UnaryHandler(PaymentService_CreatePaymentSession_FullMethodName, PaymentServiceServer.CreatePaymentSession),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payments/v1/payments.json",
}
