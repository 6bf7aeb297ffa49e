// Package tsid computes the synthetic series key of tables whose primary key
// is (tsid, timestamp). The tsid of a row is a murmur3 hash of its non-null
// tag columns, names and values, in schema order.
package tsid

import (
	"github.com/spaolacci/murmur3"

	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/schema"
)

// Generator computes tsids for rows of one schema. It is safe for concurrent
// use.
type Generator struct {
	tsidIndex  int
	tagIndexes []int
	tagNames   [][]byte
}

// NewGenerator prepares a generator for s, which must have a tsid primary key.
func NewGenerator(s *schema.Schema) (*Generator, error) {
	tsidIndex, ok := s.TsidIndex()
	if !ok {
		return nil, errors.NewSchemaError(errors.CodeInvalidTsidSchema, "schema has no tsid column").
			WithDetails(map[string]interface{}{"version": s.Version()})
	}
	if kind := s.Column(tsidIndex).Kind; kind != datum.UInt64 {
		return nil, errors.NewSchemaError(errors.CodeInvalidTsidSchema, "tsid column must be uint64").
			WithDetails(map[string]interface{}{"kind": kind.String()})
	}

	g := &Generator{tsidIndex: tsidIndex}
	for i, col := range s.Columns() {
		if col.IsTag {
			g.tagIndexes = append(g.tagIndexes, i)
			g.tagNames = append(g.tagNames, []byte(col.Name))
		}
	}
	return g, nil
}

// TsidIndex returns the position the tsid is written to.
func (g *Generator) TsidIndex() int {
	return g.tsidIndex
}

// Compute returns the tsid of row. Rows with the same tag values get the
// same tsid regardless of their other columns.
func (g *Generator) Compute(row datum.RowView) uint64 {
	h := murmur3.New64()
	var buf []byte
	for i, idx := range g.tagIndexes {
		v := row.ColumnByIndex(idx)
		if v.IsNull() {
			continue
		}
		buf = append(buf[:0], g.tagNames[i]...)
		buf = v.AppendKey(buf)
		h.Write(buf)
	}
	return h.Sum64()
}

// FillRow stores the computed tsid into row.
func (g *Generator) FillRow(row datum.Row) {
	row[g.tsidIndex] = datum.NewUInt64(g.Compute(row))
}
