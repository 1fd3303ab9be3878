// Package catalogv1 описывает потребляемый контракт каталога товаров.
package catalogv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/api/rpcjson"
)

const (
	ServiceName                                    = "catalog.v1.ProductService"
	ProductService_ValidateProducts_FullMethodName = "/catalog.v1.ProductService/ValidateProducts"
)

type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type ValidateProductsRequest struct {
	IDs []int64 `json:"ids"`
}

// ValidateProductsResponse содержит найденные товары. Сервис каталога
// отвечает ошибкой, если хотя бы один id не найден.
type ValidateProductsResponse struct {
	Products []*Product `json:"products"`
}

type ProductServiceClient interface {
	ValidateProducts(ctx context.Context, in *ValidateProductsRequest, opts ...grpc.CallOption) (*ValidateProductsResponse, error)
}

type productServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProductServiceClient(cc grpc.ClientConnInterface) ProductServiceClient {
	return &productServiceClient{cc: cc}
}

func (c *productServiceClient) ValidateProducts(ctx context.Context, in *ValidateProductsRequest, opts ...grpc.CallOption) (*ValidateProductsResponse, error) {
	return rpcjson.Invoke[ValidateProductsResponse](ctx, c.cc, ProductService_ValidateProducts_FullMethodName, in, opts...)
}

type ProductServiceServer interface {
	ValidateProducts(context.Context, *ValidateProductsRequest) (*ValidateProductsResponse, error)
	mustEmbedUnimplementedProductServiceServer()
}

type UnimplementedProductServiceServer struct{}

func (UnimplementedProductServiceServer) ValidateProducts(context.Context, *ValidateProductsRequest) (*ValidateProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateProducts not implemented")
}
func (UnimplementedProductServiceServer) mustEmbedUnimplementedProductServiceServer() {}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductService_ServiceDesc, srv)
}

var ProductService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ValidateProducts",
			Handler:    rpcjson.UnaryHandler(ProductService_ValidateProducts_FullMethodName, ProductServiceServer.ValidateProducts),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.json",
}
