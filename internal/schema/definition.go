package schema

import (
	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/pkg/types"
)

// FromDefinition builds a schema from a table definition. Columns without an
// explicit id get one allocated. A zero version selects DefaultVersion.
func FromDefinition(def *types.TableDef) (*Schema, error) {
	version := def.Version
	if version == 0 {
		version = DefaultVersion
	}

	b := NewBuilder().
		WithCapacity(len(def.Columns)).
		Version(version).
		AutoIncrementColumnID(true).
		EnableTsidPrimaryKey(def.EnableTsidPrimaryKey)

	for _, cd := range def.Columns {
		kind, err := datum.ParseKind(cd.Type)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategorySchema, errors.CodeInvalidDefinition, "invalid column type", err).
				WithDetails(map[string]interface{}{"table": def.Name, "column": cd.Name})
		}
		col, err := column.NewBuilder(cd.Name, kind).
			ID(cd.ID).
			Nullable(cd.Nullable).
			Tag(cd.Tag).
			Comment(cd.Comment).
			Build()
		if err != nil {
			return nil, err
		}
		if cd.Key {
			b.AddKeyColumn(col)
		} else {
			b.AddNormalColumn(col)
		}
	}

	return b.Build()
}

// ToDefinition describes s as a table definition with explicit ids.
func (s *Schema) ToDefinition(table string) *types.TableDef {
	def := &types.TableDef{
		Name:                 table,
		Version:              s.version,
		EnableTsidPrimaryKey: s.enableTsidPrimaryKey,
		Columns:              make([]types.ColumnDef, 0, s.reg.numColumns()),
	}
	for i, col := range s.reg.columns {
		def.Columns = append(def.Columns, types.ColumnDef{
			Name:     col.Name,
			Type:     col.Kind.String(),
			ID:       col.ID,
			Key:      s.IsKeyColumn(i),
			Nullable: col.Nullable,
			Tag:      col.IsTag,
			Comment:  col.Comment,
		})
	}
	return def
}
