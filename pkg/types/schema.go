// Package types provides the serializable table definitions accepted by the
// tableschema tools.
package types

// TableDef declares a table in a YAML or JSON definition file.
type TableDef struct {
	// Name is the table name used when registering the schema
	Name string `json:"name" yaml:"name"`

	// Version is the schema version; 0 selects the default
	Version uint32 `json:"version,omitempty" yaml:"version,omitempty"`

	// EnableTsidPrimaryKey makes (tsid, timestamp) the primary key
	EnableTsidPrimaryKey bool `json:"enable_tsid_primary_key,omitempty" yaml:"enable_tsid_primary_key,omitempty"`

	// Columns lists the columns; key and normal columns may be interleaved
	Columns []ColumnDef `json:"columns" yaml:"columns"`
}

// ColumnDef declares a single column.
type ColumnDef struct {
	// Name is the column name
	Name string `json:"name" yaml:"name"`

	// Type is the data kind: timestamp, string, varbinary, double, int64, ...
	Type string `json:"type" yaml:"type"`

	// ID is an explicit column id; 0 lets the builder allocate one
	ID uint32 `json:"id,omitempty" yaml:"id,omitempty"`

	// Key places the column in the primary key
	Key bool `json:"key,omitempty" yaml:"key,omitempty"`

	// Nullable indicates whether the column can contain NULL values
	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	// Tag marks the column as a series tag
	Tag bool `json:"tag,omitempty" yaml:"tag,omitempty"`

	// Comment is free-form documentation
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}
