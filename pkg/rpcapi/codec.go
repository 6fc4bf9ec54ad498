package rpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName overrides grpc-go's built-in protobuf codec. grpc-go falls
// back to the codec registered under "proto" whenever a call carries no
// explicit content-subtype, which is true for every call this package's
// stubs make — so registering a JSON codec under this name redirects the
// whole wire format without touching grpc.Dial/grpc.NewServer call sites.
const codecName = "proto"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
