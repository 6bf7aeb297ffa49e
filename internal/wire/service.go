package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

//	message GetSchemaRequest       { string table = 1; uint32 version = 2; }
//	message GetSchemaResponse      { TableSchema schema = 1; }
//	message RegisterSchemaRequest  { string table = 1; TableSchema schema = 2; }
//	message RegisterSchemaResponse { uint32 version = 1; bool created = 2; }
//	message CheckWriteRequest      { string table = 1; TableSchema schema = 2; }
//	message CheckWriteResponse     { uint32 version = 1; repeated sint32 index_in_writer = 2; }

// GetSchemaRequest asks for a table's schema. Version 0 selects the latest.
type GetSchemaRequest struct {
	Table   string
	Version uint32
}

func (m *GetSchemaRequest) Marshal() ([]byte, error) {
	b := appendString(nil, 1, m.Table)
	return appendVarint(b, 2, uint64(m.Version)), nil
}

func (m *GetSchemaRequest) Unmarshal(b []byte) error {
	*m = GetSchemaRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(b, typ, num, &m.Table)
		case 2:
			return consumeUint32(b, typ, num, &m.Version)
		}
		return skipField, nil
	})
}

// GetSchemaResponse carries the requested schema.
type GetSchemaResponse struct {
	Schema *TableSchema
}

func (m *GetSchemaResponse) Marshal() ([]byte, error) {
	return appendMessage(nil, 1, m.Schema), nil
}

func (m *GetSchemaResponse) Unmarshal(b []byte) error {
	*m = GetSchemaResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			m.Schema = &TableSchema{}
			return consumeMessage(b, typ, num, m.Schema)
		}
		return skipField, nil
	})
}

// RegisterSchemaRequest publishes a schema for a table.
type RegisterSchemaRequest struct {
	Table  string
	Schema *TableSchema
}

func (m *RegisterSchemaRequest) Marshal() ([]byte, error) {
	b := appendString(nil, 1, m.Table)
	return appendMessage(b, 2, m.Schema), nil
}

func (m *RegisterSchemaRequest) Unmarshal(b []byte) error {
	*m = RegisterSchemaRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(b, typ, num, &m.Table)
		case 2:
			m.Schema = &TableSchema{}
			return consumeMessage(b, typ, num, m.Schema)
		}
		return skipField, nil
	})
}

// RegisterSchemaResponse reports the version assigned to a registered schema.
// Created is false when the schema matched the latest version.
type RegisterSchemaResponse struct {
	Version uint32
	Created bool
}

func (m *RegisterSchemaResponse) Marshal() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(m.Version))
	return appendBool(b, 2, m.Created), nil
}

func (m *RegisterSchemaResponse) Unmarshal(b []byte) error {
	*m = RegisterSchemaResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32(b, typ, num, &m.Version)
		case 2:
			return consumeBool(b, typ, num, &m.Created)
		}
		return skipField, nil
	})
}

// CheckWriteRequest asks whether rows described by Schema may be written to Table.
type CheckWriteRequest struct {
	Table  string
	Schema *TableSchema
}

func (m *CheckWriteRequest) Marshal() ([]byte, error) {
	b := appendString(nil, 1, m.Table)
	return appendMessage(b, 2, m.Schema), nil
}

func (m *CheckWriteRequest) Unmarshal(b []byte) error {
	*m = CheckWriteRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(b, typ, num, &m.Table)
		case 2:
			m.Schema = &TableSchema{}
			return consumeMessage(b, typ, num, m.Schema)
		}
		return skipField, nil
	})
}

// CheckWriteResponse carries the table version checked against and, for each
// table column, the writer column index or -1 when the column is absent.
type CheckWriteResponse struct {
	Version       uint32
	IndexInWriter []int32
}

func (m *CheckWriteResponse) Marshal() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(m.Version))
	if len(m.IndexInWriter) > 0 {
		var packed []byte
		for _, v := range m.IndexInWriter {
			packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(v)))
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b, nil
}

func (m *CheckWriteResponse) Unmarshal(b []byte) error {
	*m = CheckWriteResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32(b, typ, num, &m.Version)
		case 2:
			if typ == protowire.VarintType {
				var v uint64
				n, err := consumeVarint(b, typ, num, &v)
				m.IndexInWriter = append(m.IndexInWriter, int32(protowire.DecodeZigZag(v)))
				return n, err
			}
			packed, n, err := consumeBytes(b, typ, num)
			if err != nil {
				return 0, err
			}
			for len(packed) > 0 {
				v, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return 0, decodeError(protowire.ParseError(k))
				}
				m.IndexInWriter = append(m.IndexInWriter, int32(protowire.DecodeZigZag(v)))
				packed = packed[k:]
			}
			return n, nil
		}
		return skipField, nil
	})
}

func appendMessage(b []byte, num protowire.Number, m *TableSchema) []byte {
	if m == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendTo(nil))
}
