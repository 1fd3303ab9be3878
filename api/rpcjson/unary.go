package rpcjson

import (
	"context"

	"google.golang.org/grpc"
)

// UnaryHandler строит grpc.MethodHandler из метода интерфейса сервера S.
// Повторяет то, что protoc-gen-go-grpc генерирует для каждого unary-метода.
func UnaryHandler[S any, Req any, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Invoke выполняет unary-вызов с JSON-кодеком и возвращает ответ типа Resp.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, fullMethod string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod, in, out, CallOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
