package schema

import (
	"slices"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
)

// RecordSchema describes the columns of a query result or of a batch received
// from another component. Only the name, kind and nullability of its columns
// are meaningful.
type RecordSchema struct {
	reg         *registry
	arrowSchema *arrow.Schema
}

func newRecordSchema(columns []column.Schema) *RecordSchema {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = col.ToArrowField()
	}
	return &RecordSchema{
		reg:         newRegistry(columns),
		arrowSchema: arrow.NewSchema(fields, nil),
	}
}

// RecordSchemaFromArrow wraps a received Arrow schema.
func RecordSchemaFromArrow(as *arrow.Schema) (*RecordSchema, error) {
	columns, err := columnsFromArrow(as)
	if err != nil {
		return nil, err
	}
	return &RecordSchema{reg: newRegistry(columns), arrowSchema: as}, nil
}

func (r *RecordSchema) NumColumns() int { return r.reg.numColumns() }
func (r *RecordSchema) Column(i int) column.Schema { return r.reg.column(i) }
func (r *RecordSchema) Columns() []column.Schema { return slices.Clone(r.reg.columns) }
func (r *RecordSchema) IndexOf(name string) (int, bool) { return r.reg.indexOf(name) }
func (r *RecordSchema) ArrowSchema() *arrow.Schema { return r.arrowSchema }

// RecordSchemaWithKey is a record schema whose first NumKeyColumns columns are
// the key columns of the table it was projected from, so its rows can be
// ordered with CompareRow.
type RecordSchemaWithKey struct {
	reg           *registry
	numKeyColumns int
}

func (r *RecordSchemaWithKey) NumColumns() int { return r.reg.numColumns() }
func (r *RecordSchemaWithKey) NumKeyColumns() int { return r.numKeyColumns }
func (r *RecordSchemaWithKey) Column(i int) column.Schema { return r.reg.column(i) }
func (r *RecordSchemaWithKey) Columns() []column.Schema { return slices.Clone(r.reg.columns) }
func (r *RecordSchemaWithKey) IndexOf(name string) (int, bool) { return r.reg.indexOf(name) }

// KeyColumns returns a copy of the key prefix.
func (r *RecordSchemaWithKey) KeyColumns() []column.Schema {
	return slices.Clone(r.reg.columns[:r.numKeyColumns])
}

// IsKeyColumn reports whether position i lies in the key prefix.
func (r *RecordSchemaWithKey) IsKeyColumn(i int) bool {
	return i >= 0 && i < r.numKeyColumns
}

// CompareRow orders two rows of this record schema by their key columns.
func (r *RecordSchemaWithKey) CompareRow(lhs, rhs datum.RowView) int {
	return CompareRow(r.numKeyColumns, lhs, rhs)
}

// ToRecordSchema drops the key information.
func (r *RecordSchemaWithKey) ToRecordSchema() *RecordSchema {
	return newRecordSchema(slices.Clone(r.reg.columns))
}

// ToRecordSchema returns a record schema with every column. It shares the
// schema's Arrow form, metadata included.
func (s *Schema) ToRecordSchema() *RecordSchema {
	return &RecordSchema{reg: s.reg, arrowSchema: s.arrowSchema}
}

// ToRecordSchemaWithKey returns a record schema with every column and the
// schema's key prefix.
func (s *Schema) ToRecordSchemaWithKey() *RecordSchemaWithKey {
	return &RecordSchemaWithKey{reg: s.reg, numKeyColumns: s.numKeyColumns}
}

// ProjectRecordSchema returns the columns at the given positions in the given
// order. Positions may repeat.
func (s *Schema) ProjectRecordSchema(projection []int) (*RecordSchema, error) {
	columns := make([]column.Schema, 0, len(projection))
	for _, idx := range projection {
		if err := s.checkProjectionIndex(idx); err != nil {
			return nil, err
		}
		columns = append(columns, s.reg.column(idx))
	}
	return newRecordSchema(columns), nil
}

// ProjectRecordSchemaWithKey returns all key columns in schema order followed
// by the normal columns at the given positions in projection order. Key
// positions in projection are ignored since the key prefix is always included.
func (s *Schema) ProjectRecordSchemaWithKey(projection []int) (*RecordSchemaWithKey, error) {
	columns := make([]column.Schema, 0, s.numKeyColumns+len(projection))
	columns = append(columns, s.reg.columns[:s.numKeyColumns]...)
	for _, idx := range projection {
		if err := s.checkProjectionIndex(idx); err != nil {
			return nil, err
		}
		if s.IsKeyColumn(idx) {
			continue
		}
		columns = append(columns, s.reg.column(idx))
	}
	return &RecordSchemaWithKey{reg: newRegistry(columns), numKeyColumns: s.numKeyColumns}, nil
}

func (s *Schema) checkProjectionIndex(idx int) error {
	if idx < 0 || idx >= s.reg.numColumns() {
		return errors.NewSchemaError(errors.CodeInvalidProjectionIndex, "projection index out of range").
			WithDetails(map[string]interface{}{"index": idx, "num_columns": s.reg.numColumns()})
	}
	return nil
}
