package rpcjson

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type sample struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

func TestCodecRegistered(t *testing.T) {
	if got := encoding.GetCodec(Name); got == nil {
		t.Fatal("json codec is not registered")
	}
}

func TestCodecPlainStruct(t *testing.T) {
	c := Codec{}
	data, err := c.Marshal(&sample{ID: "o-1", Price: "19.99"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"id":"o-1","price":"19.99"}` {
		t.Fatalf("unexpected payload: %s", data)
	}

	var out sample
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ID != "o-1" || out.Price != "19.99" {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Unmarshal(nil, &out); err != nil {
		t.Fatalf("empty body must decode to zero value: %v", err)
	}
	if _, err := c.Marshal(nil); err == nil {
		t.Fatal("expected error for nil message")
	}
}

func TestCodecProtoMessage(t *testing.T) {
	c := Codec{}
	data, err := c.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	if err != nil {
		t.Fatalf("marshal proto: %v", err)
	}

	var out healthpb.HealthCheckResponse
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal proto: %v", err)
	}
	if out.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected status: %v", out.GetStatus())
	}
}

type echoServer interface {
	Echo(context.Context, *sample) (*sample, error)
}

type echoImpl struct{}

func (echoImpl) Echo(_ context.Context, in *sample) (*sample, error) {
	return &sample{ID: in.ID, Price: in.Price}, nil
}

func TestUnaryHandler(t *testing.T) {
	handler := UnaryHandler("/test.Echo/Echo", echoServer.Echo)
	decode := func(v any) error {
		v.(*sample).ID = "x"
		return nil
	}

	resp, err := handler(echoImpl{}, context.Background(), decode, nil)
	if err != nil || resp.(*sample).ID != "x" {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}

	if _, err := handler(echoImpl{}, context.Background(), func(any) error { return errors.New("decode failed") }, nil); err == nil {
		t.Fatal("expected decode error")
	}

	called := false
	_, err = handler(echoImpl{}, context.Background(), decode, func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		called = true
		if info.FullMethod != "/test.Echo/Echo" {
			t.Fatalf("unexpected method: %s", info.FullMethod)
		}
		return h(ctx, req)
	})
	if err != nil || !called {
		t.Fatalf("interceptor not applied: called=%v err=%v", called, err)
	}
}
