package column

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
)

func TestBuilder_Build(t *testing.T) {
	col, err := NewBuilder("host", datum.String).ID(3).Nullable(true).Tag(true).Comment("hostname").Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	want := Schema{Name: "host", ID: 3, Kind: datum.String, Nullable: true, IsTag: true, Comment: "hostname"}
	if col != want {
		t.Errorf("got %+v, want %+v", col, want)
	}

	if _, err := NewBuilder("", datum.String).Build(); !errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidColumn) {
		t.Errorf("empty name should be rejected, got %v", err)
	}
	if _, err := NewBuilder("x", datum.Kind(200)).Build(); err == nil {
		t.Error("invalid kind should be rejected")
	}
}

func TestSchema_CompatibleForWrite(t *testing.T) {
	tests := []struct {
		name   string
		table  Schema
		writer Schema
		code   string
	}{
		{
			name:   "identical",
			table:  Schema{Name: "v", Kind: datum.Double, Nullable: true},
			writer: Schema{Name: "v", Kind: datum.Double, Nullable: true},
		},
		{
			name:   "non-null writer into nullable column",
			table:  Schema{Name: "v", Kind: datum.Double, Nullable: true},
			writer: Schema{Name: "v", Kind: datum.Double},
		},
		{
			name:   "kind mismatch",
			table:  Schema{Name: "v", Kind: datum.Double},
			writer: Schema{Name: "v", Kind: datum.Int64},
			code:   errors.CodeIncompatDataType,
		},
		{
			name:   "nullable writer into non-null column",
			table:  Schema{Name: "v", Kind: datum.Double},
			writer: Schema{Name: "v", Kind: datum.Double, Nullable: true},
			code:   errors.CodeNotNullable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.CompatibleForWrite(tt.writer)
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCategoryCompat, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestSchema_ArrowFieldRoundTrip(t *testing.T) {
	cols := []Schema{
		{Name: "timestamp", ID: 1, Kind: datum.Timestamp},
		{Name: "host", ID: 2, Kind: datum.String, Nullable: true, IsTag: true, Comment: "hostname"},
		{Name: "payload", ID: 9, Kind: datum.Varbinary, Nullable: true},
	}

	for _, col := range cols {
		f := col.ToArrowField()
		if f.Name != col.Name || f.Nullable != col.Nullable {
			t.Errorf("%s: arrow field mismatch %v", col.Name, f)
		}
		got, err := FromArrowField(f)
		if err != nil {
			t.Fatalf("%s: from arrow failed: %v", col.Name, err)
		}
		if got != col {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, col)
		}
	}
}

func TestFromArrowField_Defaults(t *testing.T) {
	got, err := FromArrowField(arrow.Field{Name: "value", Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	if err != nil {
		t.Fatalf("from arrow failed: %v", err)
	}
	want := Schema{Name: "value", ID: Unassigned, Kind: datum.Double, Nullable: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFromArrowField_Errors(t *testing.T) {
	unsupported := arrow.Field{Name: "day", Type: arrow.FixedWidthTypes.Date32}
	if _, err := FromArrowField(unsupported); !errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidColumn) {
		t.Errorf("unsupported type should fail with INVALID_COLUMN, got %v", err)
	}

	md := arrow.NewMetadata([]string{metaKeyID}, []string{"not-a-number"})
	malformed := arrow.Field{Name: "v", Type: arrow.PrimitiveTypes.Int64, Metadata: md}
	if _, err := FromArrowField(malformed); err == nil {
		t.Error("malformed id metadata should fail")
	}
}

func TestSchema_WireRoundTrip(t *testing.T) {
	col := Schema{Name: "region", ID: 5, Kind: datum.String, Nullable: true, IsTag: true, Comment: "dc region"}
	got, err := FromWire(col.ToWire())
	if err != nil {
		t.Fatalf("from wire failed: %v", err)
	}
	if got != col {
		t.Errorf("got %+v, want %+v", got, col)
	}

	bad := col.ToWire()
	bad.DataType = 77
	if _, err := FromWire(bad); !errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidWireMessage) {
		t.Errorf("unknown data type should fail, got %v", err)
	}
}
