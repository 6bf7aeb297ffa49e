package schema

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/tableschema/internal/datum"
	"github.com/arkilian/tableschema/internal/errors"
)

func metaValue(t *testing.T, as *arrow.Schema, key string) string {
	t.Helper()
	md := as.Metadata()
	idx := md.FindKey(key)
	require.GreaterOrEqual(t, idx, 0, "metadata key %s missing", key)
	return md.Values()[idx]
}

func TestSchema_ArrowSchema(t *testing.T) {
	s := buildTestSchema(t).WithVersion(3)
	as := s.ArrowSchema()

	require.Equal(t, s.NumColumns(), len(as.Fields()))
	for i, f := range as.Fields() {
		require.Equal(t, s.Column(i).Name, f.Name)
		require.Equal(t, s.Column(i).Nullable, f.Nullable)
		require.True(t, arrow.TypeEqual(s.Column(i).Kind.ArrowType(), f.Type))
	}

	require.Equal(t, "2", metaValue(t, as, MetaKeyNumKeyColumns))
	require.Equal(t, "1", metaValue(t, as, MetaKeyTimestampIndex))
	require.Equal(t, "false", metaValue(t, as, MetaKeyEnableTsidPrimaryKey))
	require.Equal(t, "3", metaValue(t, as, MetaKeyVersion))
}

func TestFromArrow_RoundTrip(t *testing.T) {
	s := buildTestSchema(t)
	got, err := FromArrow(s.ArrowSchema())
	require.NoError(t, err)
	require.True(t, s.Equal(got), "got %v, want %v", got, s)
	require.Equal(t, s.ByteOffsets(), got.ByteOffsets())
}

func TestFromArrow_RoundTripTsid(t *testing.T) {
	s, err := NewBuilder().
		EnableTsidPrimaryKey(true).
		Version(4).
		AddKeyColumn(col("timestamp", 1, datum.Timestamp)).
		AddKeyColumn(col(TsidColumnName, 2, datum.UInt64)).
		AddNormalColumn(nullableCol("value", 3, datum.Double)).
		Build()
	require.NoError(t, err)

	got, err := FromArrow(s.ArrowSchema())
	require.NoError(t, err)
	require.True(t, s.Equal(got))
	idx, ok := got.TsidIndex()
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestFromArrow_MissingMetadataDefaults(t *testing.T) {
	s := buildTestSchema(t)

	// Drop the version key only; any missing key resets every fact.
	md := arrow.NewMetadata(
		[]string{MetaKeyNumKeyColumns, MetaKeyTimestampIndex, MetaKeyEnableTsidPrimaryKey},
		[]string{"2", "1", "false"},
	)
	got, err := FromArrow(arrow.NewSchema(s.ArrowSchema().Fields(), &md))
	require.NoError(t, err)
	require.Equal(t, 0, got.NumKeyColumns())
	require.Equal(t, 0, got.TimestampIndex())
	require.False(t, got.EnableTsidPrimaryKey())
	require.Equal(t, uint32(0), got.Version())
	require.Equal(t, s.Columns(), got.Columns())

	got, err = FromArrow(arrow.NewSchema(s.ArrowSchema().Fields(), nil))
	require.NoError(t, err)
	require.Equal(t, 0, got.NumKeyColumns())
}

func TestFromArrow_MalformedMetadata(t *testing.T) {
	fields := buildTestSchema(t).ArrowSchema().Fields()

	tests := []struct {
		name string
		key  string
		vals []string
	}{
		{"num key columns", MetaKeyNumKeyColumns, []string{"two", "1", "false", "1"}},
		{"timestamp index", MetaKeyTimestampIndex, []string{"2", "-1", "false", "1"}},
		{"tsid flag", MetaKeyEnableTsidPrimaryKey, []string{"2", "1", "maybe", "1"}},
		{"version", MetaKeyVersion, []string{"2", "1", "false", "v1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := arrow.NewMetadata(
				[]string{MetaKeyNumKeyColumns, MetaKeyTimestampIndex, MetaKeyEnableTsidPrimaryKey, MetaKeyVersion},
				tt.vals,
			)
			_, err := FromArrow(arrow.NewSchema(fields, &md))
			require.Error(t, err)
			require.True(t, errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidArrowMetaValue), "got %v", err)

			var se *errors.SchemaError
			require.ErrorAs(t, err, &se)
			require.Equal(t, tt.key, se.Details["key"])
		})
	}
}

func TestFromArrow_InvalidField(t *testing.T) {
	fields := []arrow.Field{
		{Name: "ts", Type: arrow.FixedWidthTypes.Timestamp_ms},
		{Name: "when", Type: arrow.FixedWidthTypes.Date64},
	}
	_, err := FromArrow(arrow.NewSchema(fields, nil))
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidArrowField), "got %v", err)

	var se *errors.SchemaError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "when", se.Details["field"])
}

func TestFromArrow_TsidColumnMissing(t *testing.T) {
	s := buildTestSchema(t)
	md := arrowMeta{numKeyColumns: 2, timestampIndex: 1, enableTsidPrimaryKey: true, version: 1}.toMetadata()
	_, err := FromArrow(arrow.NewSchema(s.ArrowSchema().Fields(), &md))
	require.True(t, errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidTsidSchema), "got %v", err)
}

func TestFromArrow_MetadataOutOfRange(t *testing.T) {
	s := buildTestSchema(t)
	md := arrowMeta{numKeyColumns: 9, timestampIndex: 1, version: 1}.toMetadata()
	_, err := FromArrow(arrow.NewSchema(s.ArrowSchema().Fields(), &md))
	require.True(t, errors.HasCode(err, errors.ErrCategorySchema, errors.CodeInvalidArrowMetaValue), "got %v", err)
}

func TestFromRecordSchema(t *testing.T) {
	s := buildTestSchema(t)
	got, err := FromRecordSchema(s.ToRecordSchema())
	require.NoError(t, err)
	require.True(t, s.Equal(got))
}
