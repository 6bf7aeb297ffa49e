// Package wire implements the protobuf messages exchanged between nodes when
// distributing table schemas. Messages are encoded field by field with
// protowire so they stay byte-compatible with the .proto definitions below
// without generated code.
//
//	message ColumnSchema {
//	  string   name        = 1;
//	  DataType data_type   = 2;
//	  bool     is_nullable = 3;
//	  uint32   id          = 4;
//	  bool     is_tag      = 5;
//	  string   comment     = 6;
//	}
//
//	message TableSchema {
//	  repeated ColumnSchema columns          = 1;
//	  uint32   num_key_columns               = 2;
//	  reserved 3; // timestamp_index, derived on decode
//	  bool     enable_tsid_primary_key       = 4;
//	  uint32   version                       = 5;
//	}
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/arkilian/tableschema/internal/errors"
)

// Message is implemented by every wire message.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// ColumnSchema is the wire form of a column descriptor.
type ColumnSchema struct {
	Name       string
	DataType   int32
	IsNullable bool
	ID         uint32
	IsTag      bool
	Comment    string
}

// TableSchema is the wire form of a table schema.
type TableSchema struct {
	Columns              []*ColumnSchema
	NumKeyColumns        uint32
	EnableTsidPrimaryKey bool
	Version              uint32
}

// Marshal encodes the column message.
func (m *ColumnSchema) Marshal() ([]byte, error) {
	return m.appendTo(nil), nil
}

func (m *ColumnSchema) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	b = appendVarint(b, 2, uint64(m.DataType))
	b = appendBool(b, 3, m.IsNullable)
	b = appendVarint(b, 4, uint64(m.ID))
	b = appendBool(b, 5, m.IsTag)
	b = appendString(b, 6, m.Comment)
	return b
}

// Unmarshal decodes the column message, replacing the receiver's contents.
func (m *ColumnSchema) Unmarshal(b []byte) error {
	*m = ColumnSchema{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(b, typ, num, &m.Name)
		case 2:
			var v uint64
			n, err := consumeVarint(b, typ, num, &v)
			m.DataType = int32(v)
			return n, err
		case 3:
			return consumeBool(b, typ, num, &m.IsNullable)
		case 4:
			return consumeUint32(b, typ, num, &m.ID)
		case 5:
			return consumeBool(b, typ, num, &m.IsTag)
		case 6:
			return consumeString(b, typ, num, &m.Comment)
		}
		return skipField, nil
	})
}

// Marshal encodes the table message.
func (m *TableSchema) Marshal() ([]byte, error) {
	return m.appendTo(nil), nil
}

func (m *TableSchema) appendTo(b []byte) []byte {
	for _, col := range m.Columns {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, col.appendTo(nil))
	}
	b = appendVarint(b, 2, uint64(m.NumKeyColumns))
	b = appendBool(b, 4, m.EnableTsidPrimaryKey)
	b = appendVarint(b, 5, uint64(m.Version))
	return b
}

// Unmarshal decodes the table message, replacing the receiver's contents.
func (m *TableSchema) Unmarshal(b []byte) error {
	*m = TableSchema{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			col := &ColumnSchema{}
			n, err := consumeMessage(b, typ, num, col)
			if err == nil {
				m.Columns = append(m.Columns, col)
			}
			return n, err
		case 2:
			return consumeUint32(b, typ, num, &m.NumKeyColumns)
		case 4:
			return consumeBool(b, typ, num, &m.EnableTsidPrimaryKey)
		case 5:
			return consumeUint32(b, typ, num, &m.Version)
		}
		return skipField, nil
	})
}

// skipField tells walk to discard the field's value.
const skipField = -1

// walk iterates the top-level fields of b. visit returns the number of value
// bytes it consumed, or skipField for unknown fields.
func walk(b []byte, visit func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeError(protowire.ParseError(n))
		}
		b = b[n:]

		m, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if m == skipField {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return decodeError(protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func decodeError(cause error) error {
	return errors.Wrap(errors.ErrCategorySchema, errors.CodeInvalidWireMessage, "malformed wire message", cause)
}

func wireTypeError(num protowire.Number, got, want protowire.Type) error {
	return decodeError(fmt.Errorf("field %d: wire type %d, want %d", num, got, want))
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func consumeVarint(b []byte, typ protowire.Type, num protowire.Number, dst *uint64) (int, error) {
	if typ != protowire.VarintType {
		return 0, wireTypeError(num, typ, protowire.VarintType)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, decodeError(protowire.ParseError(n))
	}
	*dst = v
	return n, nil
}

func consumeUint32(b []byte, typ protowire.Type, num protowire.Number, dst *uint32) (int, error) {
	var v uint64
	n, err := consumeVarint(b, typ, num, &v)
	*dst = uint32(v)
	return n, err
}

func consumeBool(b []byte, typ protowire.Type, num protowire.Number, dst *bool) (int, error) {
	var v uint64
	n, err := consumeVarint(b, typ, num, &v)
	*dst = protowire.DecodeBool(v)
	return n, err
}

func consumeBytes(b []byte, typ protowire.Type, num protowire.Number) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, wireTypeError(num, typ, protowire.BytesType)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, decodeError(protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeString(b []byte, typ protowire.Type, num protowire.Number, dst *string) (int, error) {
	v, n, err := consumeBytes(b, typ, num)
	if err != nil {
		return 0, err
	}
	*dst = string(v)
	return n, nil
}

func consumeMessage(b []byte, typ protowire.Type, num protowire.Number, dst Message) (int, error) {
	v, n, err := consumeBytes(b, typ, num)
	if err != nil {
		return 0, err
	}
	if err := dst.Unmarshal(v); err != nil {
		return 0, err
	}
	return n, nil
}
