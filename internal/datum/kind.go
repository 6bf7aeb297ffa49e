// Package datum defines the logical data kinds a column can carry and the
// typed values used when comparing rows by their key columns.
package datum

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
)

// Kind is the logical data kind of a column.
type Kind uint8

const (
	Null Kind = iota
	Timestamp
	Double
	Float
	Varbinary
	String
	UInt64
	UInt32
	UInt16
	UInt8
	Int64
	Int32
	Int16
	Int8
	Boolean
)

var kindNames = [...]string{
	Null:      "null",
	Timestamp: "timestamp",
	Double:    "double",
	Float:     "float",
	Varbinary: "varbinary",
	String:    "string",
	UInt64:    "uint64",
	UInt32:    "uint32",
	UInt16:    "uint16",
	UInt8:     "uint8",
	Int64:     "int64",
	Int32:     "int32",
	Int16:     "int16",
	Int8:      "int8",
	Boolean:   "boolean",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// ParseKind parses a kind name as written in table definition files.
// Matching is case-insensitive; "bool" and "bytes" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "bool":
		return Boolean, nil
	case "bytes", "binary":
		return Varbinary, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return Null, fmt.Errorf("datum: unknown kind %q", s)
}

// IsKeyKind reports whether columns of this kind may be part of the primary key.
// Key kinds have a total order and a fixed-width comparable encoding.
func (k Kind) IsKeyKind() bool {
	switch k {
	case Timestamp, Varbinary, String,
		UInt64, UInt32, UInt16, UInt8,
		Int64, Int32, Int16, Int8,
		Boolean:
		return true
	default:
		return false
	}
}

// FixedSize returns the number of bytes a value of this kind occupies in the
// fixed-width prefix of a contiguous row. Variable-length kinds store a 4 byte
// offset into the trailing string buffer.
func (k Kind) FixedSize() int {
	switch k {
	case Null, UInt8, Int8, Boolean:
		return 1
	case UInt16, Int16:
		return 2
	case Float, UInt32, Int32, Varbinary, String:
		return 4
	case Timestamp, Double, UInt64, Int64:
		return 8
	default:
		panic(fmt.Sprintf("datum: no fixed size for %v", k))
	}
}

// ArrowType returns the Arrow data type used to represent this kind.
func (k Kind) ArrowType() arrow.DataType {
	switch k {
	case Null:
		return arrow.Null
	case Timestamp:
		return arrow.FixedWidthTypes.Timestamp_ms
	case Double:
		return arrow.PrimitiveTypes.Float64
	case Float:
		return arrow.PrimitiveTypes.Float32
	case Varbinary:
		return arrow.BinaryTypes.Binary
	case String:
		return arrow.BinaryTypes.String
	case UInt64:
		return arrow.PrimitiveTypes.Uint64
	case UInt32:
		return arrow.PrimitiveTypes.Uint32
	case UInt16:
		return arrow.PrimitiveTypes.Uint16
	case UInt8:
		return arrow.PrimitiveTypes.Uint8
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Int32:
		return arrow.PrimitiveTypes.Int32
	case Int16:
		return arrow.PrimitiveTypes.Int16
	case Int8:
		return arrow.PrimitiveTypes.Int8
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		panic(fmt.Sprintf("datum: no arrow type for %v", k))
	}
}

// KindFromArrow maps an Arrow data type back to a kind.
// Only millisecond timestamps are accepted, matching ArrowType.
func KindFromArrow(dt arrow.DataType) (Kind, bool) {
	switch dt.ID() {
	case arrow.NULL:
		return Null, true
	case arrow.TIMESTAMP:
		ts, ok := dt.(*arrow.TimestampType)
		if !ok || ts.Unit != arrow.Millisecond {
			return Null, false
		}
		return Timestamp, true
	case arrow.FLOAT64:
		return Double, true
	case arrow.FLOAT32:
		return Float, true
	case arrow.BINARY:
		return Varbinary, true
	case arrow.STRING:
		return String, true
	case arrow.UINT64:
		return UInt64, true
	case arrow.UINT32:
		return UInt32, true
	case arrow.UINT16:
		return UInt16, true
	case arrow.UINT8:
		return UInt8, true
	case arrow.INT64:
		return Int64, true
	case arrow.INT32:
		return Int32, true
	case arrow.INT16:
		return Int16, true
	case arrow.INT8:
		return Int8, true
	case arrow.BOOL:
		return Boolean, true
	default:
		return Null, false
	}
}

// Wire enum values of kinds in the schema exchange protocol.
var wireCodes = [...]int32{
	Null:      0,
	Timestamp: 1,
	Double:    2,
	Varbinary: 3,
	String:    4,
	UInt64:    5,
	Float:     6,
	Int64:     7,
	Int32:     8,
	Int16:     9,
	Int8:      10,
	UInt32:    11,
	UInt16:    12,
	UInt8:     13,
	Boolean:   14,
}

// WireCode returns the protocol enum value of the kind.
func (k Kind) WireCode() int32 {
	return wireCodes[k]
}

// KindFromWire maps a protocol enum value to a kind.
func KindFromWire(code int32) (Kind, bool) {
	for k, c := range wireCodes {
		if c == code {
			return Kind(k), true
		}
	}
	return Null, false
}
