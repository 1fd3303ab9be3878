// Package rpcjson содержит JSON-кодек для gRPC и общие помощники для
// описаний сервисов, написанных без protoc.
package rpcjson

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Name - content-subtype кодека: application/grpc+json.
const Name = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec сериализует сообщения в JSON. proto.Message (например, сообщения
// grpc health) кодируются через protojson, остальные типы через encoding/json.
type Codec struct{}

// Marshal кодирует сообщение.
func (Codec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("rpcjson: cannot marshal nil message")
	}
	if msg, ok := v.(proto.Message); ok {
		return protojson.Marshal(msg)
	}
	return json.Marshal(v)
}

// Unmarshal декодирует сообщение. Пустое тело оставляет v нулевым.
func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if msg, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, msg)
	}
	return json.Unmarshal(data, v)
}

// Name возвращает имя кодека для реестра grpc/encoding.
func (Codec) Name() string {
	return Name
}

// CallOptions добавляет к опциям вызова content-subtype json.
func CallOptions(opts []grpc.CallOption) []grpc.CallOption {
	out := make([]grpc.CallOption, 0, len(opts)+1)
	out = append(out, grpc.CallContentSubtype(Name))
	return append(out, opts...)
}
