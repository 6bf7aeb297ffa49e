package schema

import (
	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
)

// Builder accumulates columns and validates them as they are added. The first
// failure is recorded and every later call becomes a no-op; the error is
// reported by Err and by Build. A Builder is single-use and must not be shared
// between goroutines.
type Builder struct {
	columns       []column.Schema
	numKeyColumns int
	names         map[string]struct{}
	ids           map[column.ID]struct{}
	maxID         column.ID

	// timestampIndex is -1 until a timestamp key column is added.
	timestampIndex int

	version       uint32
	autoIncrement bool
	enableTsid    bool

	err      error
	consumed bool
}

// NewBuilder returns an empty builder producing schemas of DefaultVersion.
func NewBuilder() *Builder {
	return &Builder{
		names:          make(map[string]struct{}),
		ids:            make(map[column.ID]struct{}),
		timestampIndex: -1,
		version:        DefaultVersion,
	}
}

// WithCapacity reserves room for n columns.
func (b *Builder) WithCapacity(n int) *Builder {
	if b.check() && n > cap(b.columns) {
		cols := make([]column.Schema, len(b.columns), n)
		copy(cols, b.columns)
		b.columns = cols
	}
	return b
}

// Version sets the version of the built schema.
func (b *Builder) Version(v uint32) *Builder {
	if b.check() {
		b.version = v
	}
	return b
}

// AutoIncrementColumnID makes the builder allocate ids for columns whose id
// is column.Unassigned. Allocated ids are greater than every id seen so far.
func (b *Builder) AutoIncrementColumnID(enable bool) *Builder {
	if b.check() {
		b.autoIncrement = enable
	}
	return b
}

// EnableTsidPrimaryKey requires the key to be exactly (tsid, timestamp).
func (b *Builder) EnableTsidPrimaryKey(enable bool) *Builder {
	if b.check() {
		b.enableTsid = enable
	}
	return b
}

// AddKeyColumn appends col to the key-column prefix. Key columns always
// precede normal columns no matter the order of the calls.
func (b *Builder) AddKeyColumn(col column.Schema) *Builder {
	if !b.check() {
		return b
	}
	col = b.allocID(col)
	if b.fail(b.validateColumn(col)) || b.fail(b.validateKeyColumn(col)) {
		return b
	}

	if col.Kind == datum.Timestamp {
		b.timestampIndex = b.numKeyColumns
	}
	b.columns = append(b.columns, column.Schema{})
	copy(b.columns[b.numKeyColumns+1:], b.columns[b.numKeyColumns:])
	b.columns[b.numKeyColumns] = col
	b.numKeyColumns++
	b.insert(col)
	return b
}

// AddNormalColumn appends col after all columns added so far.
func (b *Builder) AddNormalColumn(col column.Schema) *Builder {
	if !b.check() {
		return b
	}
	col = b.allocID(col)
	if b.fail(b.validateColumn(col)) {
		return b
	}
	b.columns = append(b.columns, col)
	b.insert(col)
	return b
}

// Err returns the first error recorded by the builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build validates the whole column set and returns the schema. The builder
// cannot be used afterwards.
func (b *Builder) Build() (*Schema, error) {
	if !b.check() {
		return nil, b.err
	}
	b.consumed = true

	if b.timestampIndex < 0 {
		return nil, errors.NewSchemaError(errors.CodeMissingTimestampKey, "timestamp key column is missing")
	}

	tsidIndex := noTsid
	if b.enableTsid {
		if b.numKeyColumns != 2 {
			return nil, errors.NewSchemaError(errors.CodeInvalidTsidSchema, "tsid primary key requires exactly two key columns").
				WithDetails(map[string]interface{}{"num_key_columns": b.numKeyColumns})
		}
		for i := 0; i < b.numKeyColumns; i++ {
			if b.columns[i].Name == TsidColumnName {
				tsidIndex = i
				break
			}
		}
		if tsidIndex == noTsid {
			return nil, errors.NewSchemaError(errors.CodeInvalidTsidSchema, "tsid primary key requires a tsid key column").
				WithDetails(map[string]interface{}{"column": TsidColumnName})
		}
	}

	reg := newRegistry(b.columns)
	b.columns = nil
	return newSchema(reg, b.numKeyColumns, b.timestampIndex, tsidIndex, b.enableTsid, b.version), nil
}

// check reports whether the builder can still accept calls, recording
// BUILDER_CONSUMED when it has already built.
func (b *Builder) check() bool {
	if b.err != nil {
		return false
	}
	if b.consumed {
		b.err = errors.NewSchemaError(errors.CodeBuilderConsumed, "schema builder already built")
		return false
	}
	return true
}

func (b *Builder) fail(err error) bool {
	if err == nil {
		return false
	}
	b.err = err
	return true
}

func (b *Builder) allocID(col column.Schema) column.Schema {
	if b.autoIncrement && col.ID == column.Unassigned {
		col.ID = b.maxID + 1
	}
	b.maxID = max(b.maxID, col.ID)
	return col
}

func (b *Builder) insert(col column.Schema) {
	b.names[col.Name] = struct{}{}
	b.ids[col.ID] = struct{}{}
}

func (b *Builder) validateColumn(col column.Schema) error {
	if _, ok := b.names[col.Name]; ok {
		return errors.NewSchemaError(errors.CodeColumnNameExists, "column name already exists").
			WithDetails(map[string]interface{}{"name": col.Name})
	}
	if _, ok := b.ids[col.ID]; ok {
		return errors.NewSchemaError(errors.CodeColumnIDExists, "column id already exists").
			WithDetails(map[string]interface{}{"name": col.Name, "id": col.ID})
	}
	return nil
}

func (b *Builder) validateKeyColumn(col column.Schema) error {
	if !col.Kind.IsKeyKind() {
		return errors.NewSchemaError(errors.CodeKeyColumnType, "data kind cannot be used as a key").
			WithDetails(map[string]interface{}{"name": col.Name, "kind": col.Kind.String()})
	}
	if col.Nullable {
		return errors.NewSchemaError(errors.CodeNullKeyColumn, "key column cannot be nullable").
			WithDetails(map[string]interface{}{"name": col.Name})
	}
	if col.Kind == datum.Timestamp && b.timestampIndex >= 0 {
		return errors.NewSchemaError(errors.CodeTimestampKeyExists, "timestamp key column already exists").
			WithDetails(map[string]interface{}{
				"timestamp_column": b.columns[b.timestampIndex].Name,
				"given_column":     col.Name,
			})
	}
	return nil
}
