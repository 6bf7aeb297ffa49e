package schema

import (
	"log"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/arkilian/tableschema/internal/column"
	"github.com/arkilian/tableschema/internal/errors"
)

// Arrow schema metadata keys. The single colon in the first key is part of
// the format and must not be changed.
const (
	MetaKeyNumKeyColumns        = "schema:num_key_columns"
	MetaKeyTimestampIndex       = "schema::timestamp_index"
	MetaKeyEnableTsidPrimaryKey = "schema::enable_tsid_primary_key"
	MetaKeyVersion              = "schema::version"
)

// arrowMeta holds the structural facts stored in Arrow schema metadata.
type arrowMeta struct {
	numKeyColumns        int
	timestampIndex       int
	enableTsidPrimaryKey bool
	version              uint32
}

func (m arrowMeta) toMetadata() arrow.Metadata {
	return arrow.NewMetadata(
		[]string{MetaKeyNumKeyColumns, MetaKeyTimestampIndex, MetaKeyEnableTsidPrimaryKey, MetaKeyVersion},
		[]string{
			strconv.Itoa(m.numKeyColumns),
			strconv.Itoa(m.timestampIndex),
			strconv.FormatBool(m.enableTsidPrimaryKey),
			strconv.FormatUint(uint64(m.version), 10),
		},
	)
}

func toArrowSchema(columns []column.Schema, meta arrowMeta) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = col.ToArrowField()
	}
	md := meta.toMetadata()
	return arrow.NewSchema(fields, &md)
}

// errMetaKeyNotFound signals a missing metadata key to parseArrowMetaOrDefault.
type errMetaKeyNotFound string

func (e errMetaKeyNotFound) Error() string {
	return "arrow schema metadata key not found: " + string(e)
}

// parseArrowMeta reads the keys in a fixed order and stops at the first
// missing or malformed one.
func parseArrowMeta(md arrow.Metadata) (arrowMeta, error) {
	var meta arrowMeta

	raw, err := lookupMeta(md, MetaKeyNumKeyColumns)
	if err != nil {
		return meta, err
	}
	if meta.numKeyColumns, err = parseIndex(MetaKeyNumKeyColumns, raw); err != nil {
		return meta, err
	}

	if raw, err = lookupMeta(md, MetaKeyTimestampIndex); err != nil {
		return meta, err
	}
	if meta.timestampIndex, err = parseIndex(MetaKeyTimestampIndex, raw); err != nil {
		return meta, err
	}

	if raw, err = lookupMeta(md, MetaKeyEnableTsidPrimaryKey); err != nil {
		return meta, err
	}
	if meta.enableTsidPrimaryKey, err = strconv.ParseBool(raw); err != nil {
		return meta, invalidMetaValue(MetaKeyEnableTsidPrimaryKey, raw, err)
	}

	if raw, err = lookupMeta(md, MetaKeyVersion); err != nil {
		return meta, err
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return meta, invalidMetaValue(MetaKeyVersion, raw, err)
	}
	meta.version = uint32(v)

	return meta, nil
}

// parseArrowMetaOrDefault falls back to the zero facts when a key is missing,
// since intermediate representations may drop custom metadata. Malformed
// values are still errors.
func parseArrowMetaOrDefault(md arrow.Metadata) (arrowMeta, error) {
	meta, err := parseArrowMeta(md)
	if _, missing := err.(errMetaKeyNotFound); missing {
		log.Printf("schema: [WARN] %v, using default schema metadata", err)
		return arrowMeta{}, nil
	}
	return meta, err
}

func lookupMeta(md arrow.Metadata, key string) (string, error) {
	idx := md.FindKey(key)
	if idx < 0 {
		return "", errMetaKeyNotFound(key)
	}
	return md.Values()[idx], nil
}

func parseIndex(key, raw string) (int, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, invalidMetaValue(key, raw, err)
	}
	return int(v), nil
}

func invalidMetaValue(key, raw string, cause error) error {
	return errors.Wrap(errors.ErrCategorySchema, errors.CodeInvalidArrowMetaValue, "invalid arrow schema metadata value", cause).
		WithDetails(map[string]interface{}{"key": key, "raw_value": raw})
}

func columnsFromArrow(as *arrow.Schema) ([]column.Schema, error) {
	fields := as.Fields()
	columns := make([]column.Schema, len(fields))
	for i, f := range fields {
		col, err := column.FromArrowField(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategorySchema, errors.CodeInvalidArrowField, "invalid arrow field", err).
				WithDetails(map[string]interface{}{"field": f.Name})
		}
		columns[i] = col
	}
	return columns, nil
}

// FromArrow rebuilds a schema from its Arrow form. The input is expected to
// come from ArrowSchema and is not re-validated: if any metadata key is
// missing the schema gets zero key columns, timestamp index 0, no tsid and
// version 0.
func FromArrow(as *arrow.Schema) (*Schema, error) {
	columns, err := columnsFromArrow(as)
	if err != nil {
		return nil, err
	}
	meta, err := parseArrowMetaOrDefault(as.Metadata())
	if err != nil {
		return nil, err
	}
	if meta.numKeyColumns > len(columns) || (len(columns) > 0 && meta.timestampIndex >= len(columns)) {
		return nil, errors.NewSchemaError(errors.CodeInvalidArrowMetaValue, "arrow schema metadata does not match its fields").
			WithDetails(map[string]interface{}{
				"num_fields":      len(columns),
				"num_key_columns": meta.numKeyColumns,
				"timestamp_index": meta.timestampIndex,
			})
	}

	reg := newRegistry(columns)
	tsidIndex := noTsid
	if meta.enableTsidPrimaryKey {
		idx, ok := reg.indexOf(TsidColumnName)
		if !ok {
			return nil, errors.NewSchemaError(errors.CodeInvalidTsidSchema, "tsid primary key enabled but tsid column is missing").
				WithDetails(map[string]interface{}{"column": TsidColumnName})
		}
		tsidIndex = idx
	}

	return newSchema(reg, meta.numKeyColumns, meta.timestampIndex, tsidIndex, meta.enableTsidPrimaryKey, meta.version), nil
}

// FromRecordSchema rebuilds a schema from the Arrow form carried by a record
// schema.
func FromRecordSchema(rs *RecordSchema) (*Schema, error) {
	return FromArrow(rs.ArrowSchema())
}
