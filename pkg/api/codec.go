// Package api defines the eatnsplit RPC surface: the request and response
// messages, procedure names, and Connect handler/client constructors for the
// Auth, Group and Expense services.
//
// Messages are plain Go structs carried as JSON, so every handler and client
// built here is configured with the JSON codec from this package.
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// codecName replaces Connect's default JSON codec, which only accepts protobuf messages.
const codecName = "json"

type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// WithJSON configures a handler or client to exchange messages as JSON.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
