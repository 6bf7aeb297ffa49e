package schema

import (
	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
)

// absent marks a table column the writer does not supply.
const absent = -1

// IndexInWriterSchema maps every column of a table schema to the position of
// the same column in a writer's schema, or to absent when the writer does not
// supply it and the write path must store null.
type IndexInWriterSchema struct {
	indexes []int
}

// ForSameSchema returns the identity mapping for n columns.
func ForSameSchema(n int) *IndexInWriterSchema {
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	return &IndexInWriterSchema{indexes: indexes}
}

// Len returns the number of table columns covered by the mapping.
func (m *IndexInWriterSchema) Len() int {
	return len(m.indexes)
}

// ColumnIndexInWriter returns the writer position of table column i. The
// second result is false when the writer does not supply the column.
func (m *IndexInWriterSchema) ColumnIndexInWriter(i int) (int, bool) {
	idx := m.indexes[i]
	return idx, idx != absent
}

// Int32s returns the mapping with -1 for absent columns, as sent on the wire.
func (m *IndexInWriterSchema) Int32s() []int32 {
	out := make([]int32, len(m.indexes))
	for i, idx := range m.indexes {
		out[i] = int32(idx)
	}
	return out
}

// IndexInWriterSchemaFromInt32s is the inverse of Int32s. Negative entries
// are absent.
func IndexInWriterSchemaFromInt32s(in []int32) *IndexInWriterSchema {
	indexes := make([]int, len(in))
	for i, v := range in {
		if v < 0 {
			indexes[i] = absent
		} else {
			indexes[i] = int(v)
		}
	}
	return &IndexInWriterSchema{indexes: indexes}
}

// Remap lays a writer row out in table column order, filling null for
// columns the writer does not supply.
func (m *IndexInWriterSchema) Remap(row datum.RowView) datum.Row {
	out := make(datum.Row, len(m.indexes))
	for i, idx := range m.indexes {
		if idx == absent {
			out[i] = datum.NewNull()
			continue
		}
		out[i] = row.ColumnByIndex(idx)
	}
	return out
}

// CompatibleForWrite checks whether rows described by writer can be written
// into a table with schema s. Every column of s must either be supplied by
// the writer with a compatible descriptor or be nullable, and the writer must
// not carry columns s does not know.
func (s *Schema) CompatibleForWrite(writer *Schema) (*IndexInWriterSchema, error) {
	indexes := make([]int, s.reg.numColumns())
	matched := make([]bool, writer.NumColumns())
	numMatched := 0

	for i, col := range s.reg.columns {
		idx, ok := writer.IndexOf(col.Name)
		if !ok {
			if !col.Nullable {
				return nil, errors.NewCompatError(errors.CodeMissingWriteColumn, "writer is missing a non-nullable column", nil).
					WithDetails(map[string]interface{}{"name": col.Name})
			}
			indexes[i] = absent
			continue
		}

		if err := col.CompatibleForWrite(writer.Column(idx)); err != nil {
			return nil, errors.NewCompatError(errors.CodeIncompatWriteColumn, "incompatible write column", err).
				WithDetails(map[string]interface{}{"name": col.Name})
		}
		indexes[i] = idx
		matched[idx] = true
		numMatched++
	}

	if numMatched < writer.NumColumns() {
		var names []string
		for i, ok := range matched {
			if !ok {
				names = append(names, writer.Column(i).Name)
			}
		}
		return nil, errors.NewCompatError(errors.CodeWriteMoreColumn, "writer has columns unknown to the table", nil).
			WithDetails(map[string]interface{}{"names": names})
	}

	return &IndexInWriterSchema{indexes: indexes}, nil
}
