package manifest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/schema"
)

func newTestCatalog(t *testing.T) (*SQLiteCatalog, func()) {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "catalog_test_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	catalog, err := NewCatalog(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create catalog: %v", err)
	}

	return catalog, func() {
		catalog.Close()
		os.Remove(tmpFile.Name())
		os.Remove(tmpFile.Name() + "-wal")
		os.Remove(tmpFile.Name() + "-shm")
	}
}

func cpuSchema(t *testing.T, extra ...column.Schema) *schema.Schema {
	t.Helper()
	b := schema.NewBuilder().
		AutoIncrementColumnID(true).
		AddKeyColumn(column.Schema{Name: "host", Kind: datum.String}).
		AddKeyColumn(column.Schema{Name: "timestamp", Kind: datum.Timestamp}).
		AddNormalColumn(column.Schema{Name: "usage", Kind: datum.Double, Nullable: true})
	for _, c := range extra {
		b.AddNormalColumn(c)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build schema: %v", err)
	}
	return s
}

func TestCatalog_RegisterAndGet(t *testing.T) {
	catalog, cleanup := newTestCatalog(t)
	defer cleanup()
	ctx := context.Background()

	s := cpuSchema(t)
	v, created, err := catalog.RegisterSchema(ctx, "cpu", s)
	if err != nil {
		t.Fatalf("failed to register schema: %v", err)
	}
	if v != 1 || !created {
		t.Errorf("expected new version 1, got %d (created=%v)", v, created)
	}

	got, err := catalog.GetSchema(ctx, "cpu", 1)
	if err != nil {
		t.Fatalf("failed to get schema: %v", err)
	}
	if !got.Equal(s.WithVersion(1)) {
		t.Errorf("stored schema differs:\n got %v\nwant %v", got, s)
	}

	latest, err := catalog.GetSchema(ctx, "cpu", 0)
	if err != nil {
		t.Fatalf("failed to get latest schema: %v", err)
	}
	if latest.Version() != 1 {
		t.Errorf("expected latest version 1, got %d", latest.Version())
	}
}

func TestCatalog_VersionIncrementsOnChange(t *testing.T) {
	catalog, cleanup := newTestCatalog(t)
	defer cleanup()
	ctx := context.Background()

	if _, _, err := catalog.RegisterSchema(ctx, "cpu", cpuSchema(t)); err != nil {
		t.Fatalf("register v1: %v", err)
	}

	// Same structure with a different version number is not a change.
	v, created, err := catalog.RegisterSchema(ctx, "cpu", cpuSchema(t).WithVersion(42))
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if v != 1 || created {
		t.Errorf("expected existing version 1, got %d (created=%v)", v, created)
	}

	v, created, err = catalog.RegisterSchema(ctx, "cpu", cpuSchema(t, column.Schema{Name: "idle", Kind: datum.Double, Nullable: true}))
	if err != nil {
		t.Fatalf("register v2: %v", err)
	}
	if v != 2 || !created {
		t.Errorf("expected new version 2, got %d (created=%v)", v, created)
	}

	records, err := catalog.ListVersions(ctx, "cpu")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(records) != 2 || records[0].Version != 1 || records[1].Version != 2 {
		t.Fatalf("unexpected versions %+v", records)
	}
	if records[1].Schema.NumColumns() != 4 {
		t.Errorf("expected 4 columns in v2, got %d", records[1].Schema.NumColumns())
	}

	// Tables are versioned independently.
	v, _, err = catalog.RegisterSchema(ctx, "mem", cpuSchema(t))
	if err != nil || v != 1 {
		t.Errorf("expected mem version 1, got %d (%v)", v, err)
	}
	tables, err := catalog.ListTables(ctx)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "cpu" || tables[1] != "mem" {
		t.Errorf("unexpected tables %v", tables)
	}
}

func TestCatalog_NotFound(t *testing.T) {
	catalog, cleanup := newTestCatalog(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := catalog.LatestSchema(ctx, "missing"); !errors.HasCode(err, errors.ErrCategoryCatalog, errors.CodeTableNotFound) {
		t.Errorf("expected TABLE_NOT_FOUND, got %v", err)
	}
	if _, err := catalog.ListVersions(ctx, "missing"); !errors.HasCode(err, errors.ErrCategoryCatalog, errors.CodeTableNotFound) {
		t.Errorf("expected TABLE_NOT_FOUND, got %v", err)
	}

	if _, _, err := catalog.RegisterSchema(ctx, "cpu", cpuSchema(t)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := catalog.GetSchema(ctx, "cpu", 7); !errors.HasCode(err, errors.ErrCategoryCatalog, errors.CodeVersionNotFound) {
		t.Errorf("expected VERSION_NOT_FOUND, got %v", err)
	}
	if _, _, err := catalog.RegisterSchema(ctx, "", cpuSchema(t)); err == nil {
		t.Error("expected error for empty table name")
	}
}

func TestCatalog_CheckWrite(t *testing.T) {
	catalog, cleanup := newTestCatalog(t)
	defer cleanup()
	ctx := context.Background()

	if _, _, err := catalog.RegisterSchema(ctx, "cpu", cpuSchema(t, column.Schema{Name: "idle", Kind: datum.Double, Nullable: true})); err != nil {
		t.Fatalf("register: %v", err)
	}

	version, index, err := catalog.CheckWrite(ctx, "cpu", cpuSchema(t))
	if err != nil {
		t.Fatalf("check write: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}
	if _, ok := index.ColumnIndexInWriter(3); ok {
		t.Error("idle should be absent from the writer")
	}

	writer := cpuSchema(t, column.Schema{Name: "unknown", Kind: datum.Double, Nullable: true})
	if _, _, err := catalog.CheckWrite(ctx, "cpu", writer); !errors.HasCode(err, errors.ErrCategoryCompat, errors.CodeWriteMoreColumn) {
		t.Errorf("expected WRITE_MORE_COLUMN, got %v", err)
	}
}

func TestCatalog_CorruptBlob(t *testing.T) {
	catalog, cleanup := newTestCatalog(t)
	defer cleanup()
	ctx := context.Background()

	_, err := catalog.db.ExecContext(ctx,
		"INSERT INTO table_schemas (table_name, version, schema_blob, num_columns, created_at) VALUES (?, ?, ?, ?, ?)",
		"broken", 1, []byte("not snappy"), 0, 0,
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := catalog.LatestSchema(ctx, "broken"); !errors.HasCode(err, errors.ErrCategoryCatalog, errors.CodeCorruptSchema) {
		t.Errorf("expected CORRUPT_SCHEMA, got %v", err)
	}
}

func TestCatalog_PersistsAcrossReopen(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "catalog_reopen_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	catalog, err := NewCatalog(tmpFile.Name())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, _, err := catalog.RegisterSchema(context.Background(), "cpu", cpuSchema(t)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := catalog.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewCatalog(tmpFile.Name())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var n int
	if err := reopened.readDB.QueryRow("SELECT COUNT(*) FROM table_schemas").Scan(&n); err != nil && err != sql.ErrNoRows {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored version, got %d", n)
	}
}
