package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/schema"
)

// Catalog stores versioned table schemas.
type Catalog interface {
	// RegisterSchema records s for table. If s matches the latest version
	// (ignoring its version number) that version is returned and created is
	// false; otherwise s is stored as latest+1.
	RegisterSchema(ctx context.Context, table string, s *schema.Schema) (version uint32, created bool, err error)

	// GetSchema returns one version of a table schema. Version 0 selects the
	// latest.
	GetSchema(ctx context.Context, table string, version uint32) (*schema.Schema, error)

	// LatestSchema returns the newest version of a table schema.
	LatestSchema(ctx context.Context, table string) (*schema.Schema, error)

	// ListVersions returns every version of a table schema, oldest first.
	ListVersions(ctx context.Context, table string) ([]SchemaVersionRecord, error)

	// ListTables returns the names of all tables with a registered schema.
	ListTables(ctx context.Context) ([]string, error)

	// CheckWrite checks writer against the latest table schema and returns
	// the version checked against with the column mapping.
	CheckWrite(ctx context.Context, table string, writer *schema.Schema) (uint32, *schema.IndexInWriterSchema, error)

	// Close closes the catalog database connection.
	Close() error
}

// SchemaVersionRecord represents a stored schema version.
type SchemaVersionRecord struct {
	Table     string
	Version   uint32
	Schema    *schema.Schema
	CreatedAt time.Time
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	dbPath string
	mu     sync.Mutex // Serializes registrations
}

// NewCatalog opens (creating if needed) the catalog at dbPath.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	// Write connection: single writer with WAL mode
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	catalog := &SQLiteCatalog{db: db, dbPath: dbPath}

	// Tables must exist before the read-only pool opens the file.
	if err := catalog.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest: failed to initialize schema: %w", err)
	}

	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&mode=ro")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	catalog.readDB = readDB

	return catalog, nil
}

// initSchema creates the tables if they don't exist.
func (c *SQLiteCatalog) initSchema() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// RegisterSchema implements Catalog.
func (c *SQLiteCatalog) RegisterSchema(ctx context.Context, table string, s *schema.Schema) (uint32, bool, error) {
	if table == "" {
		return 0, false, errors.NewCatalogError(errors.CodeStoreFailed, "table name cannot be empty", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Latest version is read on the write connection.
	current, err := c.latest(ctx, c.db, table)
	if err != nil && !errors.HasCode(err, errors.ErrCategoryCatalog, errors.CodeTableNotFound) {
		return 0, false, err
	}
	if current != nil && current.StructurallyEqual(s) {
		return current.Version(), false, nil
	}

	newVersion := schema.DefaultVersion
	if current != nil {
		newVersion = current.Version() + 1
	}
	stored := s.WithVersion(newVersion)

	blob, err := encodeSchema(stored)
	if err != nil {
		return 0, false, err
	}

	_, err = c.db.ExecContext(ctx,
		"INSERT INTO table_schemas (table_name, version, schema_blob, num_columns, created_at) VALUES (?, ?, ?, ?, ?)",
		table, newVersion, blob, stored.NumColumns(), time.Now().Unix(),
	)
	if err != nil {
		return 0, false, errors.NewCatalogError(errors.CodeStoreFailed, "failed to insert schema version", err).
			WithDetails(map[string]interface{}{"table": table, "version": newVersion})
	}

	log.Printf("manifest: registered schema %s version %d (%d columns)", table, newVersion, stored.NumColumns())
	return newVersion, true, nil
}

// GetSchema implements Catalog.
func (c *SQLiteCatalog) GetSchema(ctx context.Context, table string, version uint32) (*schema.Schema, error) {
	if version == 0 {
		return c.LatestSchema(ctx, table)
	}

	var blob []byte
	err := c.readDB.QueryRowContext(ctx,
		"SELECT schema_blob FROM table_schemas WHERE table_name = ? AND version = ?",
		table, version,
	).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewCatalogError(errors.CodeVersionNotFound, "schema version not found", nil).
				WithDetails(map[string]interface{}{"table": table, "version": version})
		}
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to get schema version", err).
			WithDetails(map[string]interface{}{"table": table, "version": version})
	}
	return decodeSchema(blob)
}

// LatestSchema implements Catalog.
func (c *SQLiteCatalog) LatestSchema(ctx context.Context, table string) (*schema.Schema, error) {
	return c.latest(ctx, c.readDB, table)
}

func (c *SQLiteCatalog) latest(ctx context.Context, db *sql.DB, table string) (*schema.Schema, error) {
	var blob []byte
	err := db.QueryRowContext(ctx,
		"SELECT schema_blob FROM table_schemas WHERE table_name = ? ORDER BY version DESC LIMIT 1",
		table,
	).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewCatalogError(errors.CodeTableNotFound, "table has no registered schema", nil).
				WithDetails(map[string]interface{}{"table": table})
		}
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to get latest schema", err).
			WithDetails(map[string]interface{}{"table": table})
	}
	return decodeSchema(blob)
}

// ListVersions implements Catalog.
func (c *SQLiteCatalog) ListVersions(ctx context.Context, table string) ([]SchemaVersionRecord, error) {
	rows, err := c.readDB.QueryContext(ctx,
		"SELECT version, schema_blob, created_at FROM table_schemas WHERE table_name = ? ORDER BY version ASC",
		table,
	)
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to list versions", err)
	}
	defer rows.Close()

	var records []SchemaVersionRecord
	for rows.Next() {
		var version uint32
		var blob []byte
		var createdAtUnix int64

		if err := rows.Scan(&version, &blob, &createdAtUnix); err != nil {
			return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to scan version", err)
		}
		s, err := decodeSchema(blob)
		if err != nil {
			return nil, err
		}
		records = append(records, SchemaVersionRecord{
			Table:     table,
			Version:   version,
			Schema:    s,
			CreatedAt: time.Unix(createdAtUnix, 0),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "error iterating versions", err)
	}
	if len(records) == 0 {
		return nil, errors.NewCatalogError(errors.CodeTableNotFound, "table has no registered schema", nil).
			WithDetails(map[string]interface{}{"table": table})
	}
	return records, nil
}

// ListTables implements Catalog.
func (c *SQLiteCatalog) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.readDB.QueryContext(ctx, "SELECT DISTINCT table_name FROM table_schemas ORDER BY table_name")
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to scan table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "error iterating tables", err)
	}
	return tables, nil
}

// CheckWrite implements Catalog.
func (c *SQLiteCatalog) CheckWrite(ctx context.Context, table string, writer *schema.Schema) (uint32, *schema.IndexInWriterSchema, error) {
	target, err := c.LatestSchema(ctx, table)
	if err != nil {
		return 0, nil, err
	}
	index, err := target.CompatibleForWrite(writer)
	if err != nil {
		log.Printf("manifest: [WARN] write to %s rejected against version %d: %v", table, target.Version(), err)
		return target.Version(), nil, err
	}
	return target.Version(), index, nil
}

// Close closes both connections.
func (c *SQLiteCatalog) Close() error {
	// Close read connection first, then write connection
	if err := c.readDB.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

// Path returns the database file path.
func (c *SQLiteCatalog) Path() string {
	return c.dbPath
}
