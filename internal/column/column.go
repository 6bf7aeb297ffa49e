// Package column defines the descriptor of a single table column.
package column

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/wire"
)

// ID identifies a column within a table across schema versions.
type ID = uint32

// Unassigned marks a column whose id should be allocated by the schema builder.
const Unassigned ID = 0

// Arrow field metadata keys carrying the descriptor facts Arrow has no slot for.
const (
	metaKeyID      = "field::id"
	metaKeyIsTag   = "field::is_tag"
	metaKeyComment = "field::comment"
)

// Schema describes one column of a table.
type Schema struct {
	Name     string
	ID       ID
	Kind     datum.Kind
	Nullable bool
	IsTag    bool
	Comment  string
}

// String formats the descriptor for diagnostics.
func (c Schema) String() string {
	s := fmt.Sprintf("%s %v id=%d", c.Name, c.Kind, c.ID)
	if c.Nullable {
		s += " nullable"
	}
	if c.IsTag {
		s += " tag"
	}
	return s
}

// CompatibleForWrite checks whether values written under the writer's column
// descriptor can be stored in this column. The kinds must match, and a
// nullable writer column cannot feed a non-nullable column.
func (c Schema) CompatibleForWrite(writer Schema) error {
	if c.Kind != writer.Kind {
		return errors.NewCompatError(errors.CodeIncompatDataType, "incompatible data type", nil).
			WithDetails(map[string]interface{}{
				"column": c.Name,
				"kind":   c.Kind.String(),
				"writer": writer.Kind.String(),
			})
	}
	if !c.Nullable && writer.Nullable {
		return errors.NewCompatError(errors.CodeNotNullable, "column is not nullable but writer is", nil).
			WithDetails(map[string]interface{}{"column": c.Name})
	}
	return nil
}

// ToArrowField converts the descriptor to an Arrow field.
func (c Schema) ToArrowField() arrow.Field {
	md := arrow.NewMetadata(
		[]string{metaKeyID, metaKeyIsTag, metaKeyComment},
		[]string{strconv.FormatUint(uint64(c.ID), 10), strconv.FormatBool(c.IsTag), c.Comment},
	)
	return arrow.Field{
		Name:     c.Name,
		Type:     c.Kind.ArrowType(),
		Nullable: c.Nullable,
		Metadata: md,
	}
}

// FromArrowField converts an Arrow field back to a descriptor. Missing field
// metadata leaves the id unassigned and the column untagged; present but
// malformed metadata is an error.
func FromArrowField(f arrow.Field) (Schema, error) {
	kind, ok := datum.KindFromArrow(f.Type)
	if !ok {
		return Schema{}, errors.NewSchemaError(errors.CodeInvalidColumn, "unsupported arrow data type").
			WithDetails(map[string]interface{}{"field": f.Name, "type": f.Type.String()})
	}

	col := Schema{
		Name:     f.Name,
		Kind:     kind,
		Nullable: f.Nullable,
	}

	if idx := f.Metadata.FindKey(metaKeyID); idx >= 0 {
		raw := f.Metadata.Values()[idx]
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Schema{}, invalidFieldMeta(f.Name, metaKeyID, raw, err)
		}
		col.ID = ID(id)
	}
	if idx := f.Metadata.FindKey(metaKeyIsTag); idx >= 0 {
		raw := f.Metadata.Values()[idx]
		isTag, err := strconv.ParseBool(raw)
		if err != nil {
			return Schema{}, invalidFieldMeta(f.Name, metaKeyIsTag, raw, err)
		}
		col.IsTag = isTag
	}
	if idx := f.Metadata.FindKey(metaKeyComment); idx >= 0 {
		col.Comment = f.Metadata.Values()[idx]
	}

	return col, nil
}

func invalidFieldMeta(field, key, raw string, cause error) error {
	return errors.Wrap(errors.ErrCategorySchema, errors.CodeInvalidColumn, "invalid arrow field metadata", cause).
		WithDetails(map[string]interface{}{"field": field, "key": key, "raw_value": raw})
}

// ToWire converts the descriptor to its wire message.
func (c Schema) ToWire() *wire.ColumnSchema {
	return &wire.ColumnSchema{
		Name:       c.Name,
		DataType:   c.Kind.WireCode(),
		IsNullable: c.Nullable,
		ID:         c.ID,
		IsTag:      c.IsTag,
		Comment:    c.Comment,
	}
}

// FromWire converts a wire message to a descriptor.
func FromWire(m *wire.ColumnSchema) (Schema, error) {
	kind, ok := datum.KindFromWire(m.DataType)
	if !ok {
		return Schema{}, errors.NewSchemaError(errors.CodeInvalidWireMessage, "unknown column data type").
			WithDetails(map[string]interface{}{"column": m.Name, "data_type": m.DataType})
	}
	return Schema{
		Name:     m.Name,
		ID:       m.ID,
		Kind:     kind,
		Nullable: m.IsNullable,
		IsTag:    m.IsTag,
		Comment:  m.Comment,
	}, nil
}
