package manifest

import (
	"github.com/golang/snappy"

	"github.com/arkilian/tableschema/internal/errors"
	"github.com/arkilian/tableschema/internal/schema"
	"github.com/arkilian/tableschema/internal/wire"
)

// encodeSchema returns the stored form of s: its wire message compressed
// with snappy.
func encodeSchema(s *schema.Schema) ([]byte, error) {
	raw, err := s.ToWire().Marshal()
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeStoreFailed, "failed to encode schema", err)
	}
	return snappy.Encode(nil, raw), nil
}

// decodeSchema is the inverse of encodeSchema. Blobs that fail to decode or
// describe an invalid schema are reported as CORRUPT_SCHEMA.
func decodeSchema(blob []byte) (*schema.Schema, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeCorruptSchema, "snappy decompress failed", err)
	}
	var m wire.TableSchema
	if err := m.Unmarshal(raw); err != nil {
		return nil, errors.NewCatalogError(errors.CodeCorruptSchema, "failed to decode stored schema", err)
	}
	s, err := schema.FromWire(&m)
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeCorruptSchema, "stored schema is invalid", err)
	}
	return s, nil
}
