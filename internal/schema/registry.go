package schema

import (
	"fmt"

	"github.com/arkilian/tableschema/internal/column"
)

// registry is an ordered, de-duplicated column list plus the lookups derived
// from it. It is never mutated after construction.
type registry struct {
	columns     []column.Schema
	nameToIndex map[string]int

	// byteOffsets[i] is where column i starts in the contiguous row layout.
	byteOffsets        []int
	stringBufferOffset int
}

func newRegistry(columns []column.Schema) *registry {
	r := &registry{
		columns:     columns,
		nameToIndex: make(map[string]int, len(columns)),
		byteOffsets: make([]int, len(columns)),
	}
	offset := 0
	for i, col := range columns {
		r.nameToIndex[col.Name] = i
		r.byteOffsets[i] = offset
		offset += col.Kind.FixedSize()
	}
	r.stringBufferOffset = offset
	return r
}

func (r *registry) numColumns() int {
	return len(r.columns)
}

func (r *registry) column(i int) column.Schema {
	return r.columns[i]
}

func (r *registry) indexOf(name string) (int, bool) {
	i, ok := r.nameToIndex[name]
	return i, ok
}

func (r *registry) columnWithName(name string) (column.Schema, bool) {
	i, ok := r.nameToIndex[name]
	if !ok {
		return column.Schema{}, false
	}
	return r.columns[i], true
}

// byteOffset panics when i is out of range; callers check against numColumns.
func (r *registry) byteOffset(i int) int {
	if i < 0 || i >= len(r.byteOffsets) {
		panic(fmt.Sprintf("schema: byte offset index %d out of range [0, %d)", i, len(r.byteOffsets)))
	}
	return r.byteOffsets[i]
}

// equal compares column sequences only; the other fields are derived from them.
func (r *registry) equal(o *registry) bool {
	if len(r.columns) != len(o.columns) {
		return false
	}
	for i := range r.columns {
		if r.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}
