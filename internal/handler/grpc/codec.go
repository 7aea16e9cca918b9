package grpc

import (
	"encoding/json"
)

// CodecName is the content subtype of the sync stream.
const CodecName = "json"

// Codec encodes stream messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}
