// Package manifest provides the schema catalog: a SQLite database recording
// every registered version of every table schema.
package manifest

// CreateTableSchemasTableSQL creates the table holding one row per table
// schema version. schema_blob is the snappy-compressed wire encoding.
const CreateTableSchemasTableSQL = `
CREATE TABLE IF NOT EXISTS table_schemas (
    table_name TEXT NOT NULL,
    version INTEGER NOT NULL,
    schema_blob BLOB NOT NULL,
    num_columns INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (table_name, version)
)`

// CreateTableSchemasIndexesSQL creates secondary indexes.
var CreateTableSchemasIndexesSQL = []string{
	// Listing recently registered schemas
	`CREATE INDEX IF NOT EXISTS idx_table_schemas_created ON table_schemas(created_at)`,
}

// AllSchemaSQL returns all SQL statements needed to initialize the catalog.
func AllSchemaSQL() []string {
	stmts := []string{CreateTableSchemasTableSQL}
	stmts = append(stmts, CreateTableSchemasIndexesSQL...)
	return stmts
}
