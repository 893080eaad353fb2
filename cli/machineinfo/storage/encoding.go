package storage

import (
	"encoding/json"
	"fmt"

	"gopkg.in/vmihailenco/msgpack.v2"
)

const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

var contentTypes = map[string]string{
	EncodingJSON:    "application/json",
	EncodingMsgpack: "application/msgpack",
}

func ValidEncoding(encoding string) bool {
	_, ok := contentTypes[encoding]
	return ok
}

// ContentType is the MIME type of payloads in the given encoding. Unknown
// encodings fall back to JSON, like ToBytes does for an empty one.
func ContentType(encoding string) string {
	if ct, ok := contentTypes[encoding]; ok {
		return ct
	}
	return contentTypes[EncodingJSON]
}

// Encoded serializes Value with the configured encoding when a sink asks
// for bytes.
type Encoded struct {
	Value    interface{}
	Encoding string
}

func NewEncoded(v interface{}, encoding string) Encoded {
	return Encoded{Value: v, Encoding: encoding}
}

func (e Encoded) ToBytes() ([]byte, error) {
	switch e.Encoding {
	case EncodingJSON, "":
		return json.Marshal(e.Value)
	case EncodingMsgpack:
		return msgpack.Marshal(e.Value)
	default:
		return nil, fmt.Errorf("unknown encoding %q", e.Encoding)
	}
}
