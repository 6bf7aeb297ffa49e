package schema

import (
	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/wire"
)

// ToWire converts the schema to its wire message. The timestamp index is not
// sent; the receiver derives it from the key columns.
func (s *Schema) ToWire() *wire.TableSchema {
	cols := make([]*wire.ColumnSchema, s.reg.numColumns())
	for i, col := range s.reg.columns {
		cols[i] = col.ToWire()
	}
	return &wire.TableSchema{
		Columns:              cols,
		NumKeyColumns:        uint32(s.numKeyColumns),
		EnableTsidPrimaryKey: s.enableTsidPrimaryKey,
		Version:              s.version,
	}
}

// FromWire decodes a wire message by replaying it through a Builder, so a
// message violating any schema invariant is rejected with the same error
// direct construction would produce.
func FromWire(m *wire.TableSchema) (*Schema, error) {
	if m == nil {
		return nil, errors.NewSchemaError(errors.CodeInvalidWireMessage, "table schema is missing")
	}
	if int(m.NumKeyColumns) > len(m.Columns) {
		return nil, errors.NewSchemaError(errors.CodeInvalidWireMessage, "more key columns than columns").
			WithDetails(map[string]interface{}{"num_key_columns": m.NumKeyColumns, "num_columns": len(m.Columns)})
	}

	b := NewBuilder().
		WithCapacity(len(m.Columns)).
		Version(m.Version).
		EnableTsidPrimaryKey(m.EnableTsidPrimaryKey)
	for i, cm := range m.Columns {
		col, err := column.FromWire(cm)
		if err != nil {
			return nil, err
		}
		if i < int(m.NumKeyColumns) {
			b.AddKeyColumn(col)
		} else {
			b.AddNormalColumn(col)
		}
	}
	return b.Build()
}
