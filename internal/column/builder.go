package column

import (
	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
)

// Builder assembles a column descriptor.
type Builder struct {
	col Schema
}

// NewBuilder starts a descriptor with the given name and kind. The id is
// left unassigned and the column is not nullable.
func NewBuilder(name string, kind datum.Kind) *Builder {
	return &Builder{col: Schema{Name: name, Kind: kind}}
}

// ID sets an explicit column id.
func (b *Builder) ID(id ID) *Builder {
	b.col.ID = id
	return b
}

// Nullable marks the column as accepting nulls.
func (b *Builder) Nullable(nullable bool) *Builder {
	b.col.Nullable = nullable
	return b
}

// Tag marks the column as a tag.
func (b *Builder) Tag(isTag bool) *Builder {
	b.col.IsTag = isTag
	return b
}

// Comment attaches a free-form comment.
func (b *Builder) Comment(comment string) *Builder {
	b.col.Comment = comment
	return b
}

// Build validates and returns the descriptor.
func (b *Builder) Build() (Schema, error) {
	if b.col.Name == "" {
		return Schema{}, errors.NewSchemaError(errors.CodeInvalidColumn, "column name cannot be empty")
	}
	if !b.col.Kind.Valid() {
		return Schema{}, errors.NewSchemaError(errors.CodeInvalidColumn, "invalid column kind").
			WithDetails(map[string]interface{}{"column": b.col.Name})
	}
	return b.col, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() Schema {
	col, err := b.Build()
	if err != nil {
		panic(err)
	}
	return col
}
