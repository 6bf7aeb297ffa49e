// Package schema implements the table schema: the ordered column list, the
// key-column prefix, the timestamp and tsid key positions and the version.
//
// A *Schema is produced by a Builder (or decoded from its Arrow or wire form)
// and is immutable afterwards, so it can be shared between goroutines without
// synchronization. Every constructed Schema satisfies:
//
//   - at least one key column, and key columns are exactly the first
//     NumKeyColumns columns;
//   - exactly one key column has the timestamp kind;
//   - no key column is nullable and every key column has a key-capable kind;
//   - with tsid primary key enabled there are exactly two key columns and one
//     of them is named "tsid".
//
// Schemas decoded with FromArrow are trusted as produced by this package and
// are not re-validated.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/datum"
)

const (
	// TsidColumnName is the reserved name of the synthetic key column.
	TsidColumnName = "tsid"
	// TimestampColumnName is the conventional name of the timestamp key column.
	TimestampColumnName = "timestamp"

	// DefaultVersion is the version given to schemas built without one.
	DefaultVersion uint32 = 1
)

// noTsid marks a schema without a tsid column.
const noTsid = -1

// Schema describes the structure of a table.
type Schema struct {
	reg                  *registry
	numKeyColumns        int
	timestampIndex       int
	tsidIndex            int
	enableTsidPrimaryKey bool
	version              uint32
	arrowSchema          *arrow.Schema
}

func newSchema(reg *registry, numKeyColumns, timestampIndex, tsidIndex int, enableTsid bool, version uint32) *Schema {
	s := &Schema{
		reg:                  reg,
		numKeyColumns:        numKeyColumns,
		timestampIndex:       timestampIndex,
		tsidIndex:            tsidIndex,
		enableTsidPrimaryKey: enableTsid,
		version:              version,
	}
	s.arrowSchema = toArrowSchema(reg.columns, arrowMeta{
		numKeyColumns:        numKeyColumns,
		timestampIndex:       timestampIndex,
		enableTsidPrimaryKey: enableTsid,
		version:              version,
	})
	return s
}

// NumColumns returns the number of columns.
func (s *Schema) NumColumns() int {
	return s.reg.numColumns()
}

// NumKeyColumns returns the length of the key-column prefix.
func (s *Schema) NumKeyColumns() int {
	return s.numKeyColumns
}

// Column returns the column at position i. It panics if i is out of range.
func (s *Schema) Column(i int) column.Schema {
	return s.reg.column(i)
}

// Columns returns a copy of all columns, key columns first.
func (s *Schema) Columns() []column.Schema {
	return slices.Clone(s.reg.columns)
}

// KeyColumns returns a copy of the key columns.
func (s *Schema) KeyColumns() []column.Schema {
	return slices.Clone(s.reg.columns[:s.numKeyColumns])
}

// NormalColumns returns a copy of the non-key columns.
func (s *Schema) NormalColumns() []column.Schema {
	return slices.Clone(s.reg.columns[s.numKeyColumns:])
}

// IsKeyColumn reports whether position i lies in the key prefix.
func (s *Schema) IsKeyColumn(i int) bool {
	return i >= 0 && i < s.numKeyColumns
}

// IndexOf returns the position of the named column.
func (s *Schema) IndexOf(name string) (int, bool) {
	return s.reg.indexOf(name)
}

// ColumnWithName looks a column up by name.
func (s *Schema) ColumnWithName(name string) (column.Schema, bool) {
	return s.reg.columnWithName(name)
}

// TimestampIndex returns the position of the timestamp key column.
func (s *Schema) TimestampIndex() int {
	return s.timestampIndex
}

// TimestampName returns the name of the timestamp key column.
func (s *Schema) TimestampName() string {
	return s.reg.column(s.timestampIndex).Name
}

// TsidIndex returns the position of the tsid column, if the schema has one.
func (s *Schema) TsidIndex() (int, bool) {
	if s.tsidIndex == noTsid {
		return 0, false
	}
	return s.tsidIndex, true
}

// TsidColumn returns the tsid column, if the schema has one.
func (s *Schema) TsidColumn() (column.Schema, bool) {
	if s.tsidIndex == noTsid {
		return column.Schema{}, false
	}
	return s.reg.column(s.tsidIndex), true
}

// EnableTsidPrimaryKey reports whether the key is (tsid, timestamp).
func (s *Schema) EnableTsidPrimaryKey() bool {
	return s.enableTsidPrimaryKey
}

// Version returns the schema version.
func (s *Schema) Version() uint32 {
	return s.version
}

// ByteOffsets returns a copy of the fixed-width offset of every column in the
// contiguous row layout.
func (s *Schema) ByteOffsets() []int {
	return slices.Clone(s.reg.byteOffsets)
}

// ByteOffset returns the fixed-width offset of column i. It panics if i is
// out of range.
func (s *Schema) ByteOffset(i int) int {
	return s.reg.byteOffset(i)
}

// StringBufferOffset returns where variable-length payloads start in the
// contiguous row layout.
func (s *Schema) StringBufferOffset() int {
	return s.reg.stringBufferOffset
}

// ArrowSchema returns the Arrow form of the schema. The schema metadata
// carries the key count, timestamp index, tsid flag and version.
func (s *Schema) ArrowSchema() *arrow.Schema {
	return s.arrowSchema
}

// WithVersion returns a schema identical to s except for its version.
func (s *Schema) WithVersion(version uint32) *Schema {
	if version == s.version {
		return s
	}
	return newSchema(s.reg, s.numKeyColumns, s.timestampIndex, s.tsidIndex, s.enableTsidPrimaryKey, version)
}

// Equal compares the column list and the structural facts. The Arrow
// representation and the derived lookups are not compared.
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	return s.numKeyColumns == o.numKeyColumns &&
		s.timestampIndex == o.timestampIndex &&
		s.tsidIndex == o.tsidIndex &&
		s.enableTsidPrimaryKey == o.enableTsidPrimaryKey &&
		s.version == o.version &&
		s.reg.equal(o.reg)
}

// StructurallyEqual is like Equal but ignores the version.
func (s *Schema) StructurallyEqual(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Equal(o.WithVersion(s.version))
}

// CompareRow orders two rows of this schema by their key columns.
func (s *Schema) CompareRow(lhs, rhs datum.RowView) int {
	return CompareRow(s.numKeyColumns, lhs, rhs)
}

func (s *Schema) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Schema{version=%d, num_key_columns=%d, timestamp_index=%d", s.version, s.numKeyColumns, s.timestampIndex)
	if s.enableTsidPrimaryKey {
		fmt.Fprintf(&sb, ", tsid_index=%d", s.tsidIndex)
	}
	sb.WriteString(", columns=[")
	for i, col := range s.reg.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.String())
	}
	sb.WriteString("]}")
	return sb.String()
}
