// Package grpc serves table schemas to the rest of the cluster. Messages are
// the protowire-encoded types of the wire package, carried by a codec
// registered under the "proto" name so the service stays compatible with
// clients generated from the .proto definitions.
package grpc

import (
	"fmt"

	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/wire"
)

// codecName is the content subtype advertised on the wire.
const codecName = "proto"

type codec struct{}

func (codec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(wire.Message)
	if !ok {
		return nil, errors.NewTransportError(errors.CodeCodecFailed, fmt.Sprintf("cannot marshal %T", v), nil)
	}
	return m.Marshal()
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(wire.Message)
	if !ok {
		return errors.NewTransportError(errors.CodeCodecFailed, fmt.Sprintf("cannot unmarshal into %T", v), nil)
	}
	return m.Unmarshal(data)
}

func (codec) Name() string {
	return codecName
}
