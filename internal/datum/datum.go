package datum

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Datum is a single typed value. The zero value is a null datum.
type Datum struct {
	kind Kind
	i    int64   // Timestamp and signed integers
	u    uint64  // unsigned integers and Boolean
	f    float64 // Double and Float
	b    []byte  // Varbinary and String
}

func NewNull() Datum { return Datum{} }
func NewTimestamp(ms int64) Datum { return Datum{kind: Timestamp, i: ms} }
func NewDouble(v float64) Datum { return Datum{kind: Double, f: v} }
func NewFloat(v float32) Datum { return Datum{kind: Float, f: float64(v)} }
func NewVarbinary(v []byte) Datum { return Datum{kind: Varbinary, b: v} }
func NewString(v string) Datum { return Datum{kind: String, b: []byte(v)} }
func NewUInt64(v uint64) Datum { return Datum{kind: UInt64, u: v} }
func NewUInt32(v uint32) Datum { return Datum{kind: UInt32, u: uint64(v)} }
func NewUInt16(v uint16) Datum { return Datum{kind: UInt16, u: uint64(v)} }
func NewUInt8(v uint8) Datum { return Datum{kind: UInt8, u: uint64(v)} }
func NewInt64(v int64) Datum { return Datum{kind: Int64, i: v} }
func NewInt32(v int32) Datum { return Datum{kind: Int32, i: int64(v)} }
func NewInt16(v int16) Datum { return Datum{kind: Int16, i: int64(v)} }
func NewInt8(v int8) Datum { return Datum{kind: Int8, i: int64(v)} }

// NewBoolean returns a Boolean datum. false orders before true.
func NewBoolean(v bool) Datum {
	d := Datum{kind: Boolean}
	if v {
		d.u = 1
	}
	return d
}

// Kind returns the kind of the value.
func (d Datum) Kind() Kind { return d.kind }

// IsNull reports whether the datum is null.
func (d Datum) IsNull() bool { return d.kind == Null }

// Int returns the value of a Timestamp or signed integer datum.
func (d Datum) Int() int64 { return d.i }

// Uint returns the value of an unsigned integer datum.
func (d Datum) Uint() uint64 { return d.u }

// Float returns the value of a Double or Float datum.
func (d Datum) Float() float64 { return d.f }

// Bytes returns the payload of a Varbinary or String datum.
func (d Datum) Bytes() []byte { return d.b }

// Compare orders two datums of the same kind, returning -1, 0 or +1.
//
// REQUIRES: both datums have the same kind. Comparing different kinds is a
// programming error and panics.
func (d Datum) Compare(o Datum) int {
	if d.kind != o.kind {
		panic(fmt.Sprintf("datum: compare %v with %v", d.kind, o.kind))
	}
	switch d.kind {
	case Null:
		return 0
	case Timestamp, Int64, Int32, Int16, Int8:
		return cmp.Compare(d.i, o.i)
	case UInt64, UInt32, UInt16, UInt8, Boolean:
		return cmp.Compare(d.u, o.u)
	case Double, Float:
		return cmp.Compare(d.f, o.f)
	case Varbinary, String:
		return bytes.Compare(d.b, o.b)
	default:
		panic(fmt.Sprintf("datum: compare invalid kind %v", d.kind))
	}
}

// Equal reports whether two datums have the same kind and value.
func (d Datum) Equal(o Datum) bool {
	return d.kind == o.kind && d.Compare(o) == 0
}

// AppendKey appends an unambiguous byte form of the value to dst. Integers are
// big-endian, floats use their IEEE bits and variable-length values are
// length-prefixed, so distinct values never share an encoding.
func (d Datum) AppendKey(dst []byte) []byte {
	dst = append(dst, byte(d.kind))
	switch d.kind {
	case Null:
	case Timestamp, Int64, Int32, Int16, Int8:
		dst = binary.BigEndian.AppendUint64(dst, uint64(d.i))
	case UInt64, UInt32, UInt16, UInt8, Boolean:
		dst = binary.BigEndian.AppendUint64(dst, d.u)
	case Double, Float:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(d.f))
	case Varbinary, String:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(d.b)))
		dst = append(dst, d.b...)
	}
	return dst
}

// String formats the value for diagnostics.
func (d Datum) String() string {
	switch d.kind {
	case Null:
		return "null"
	case Timestamp, Int64, Int32, Int16, Int8:
		return strconv.FormatInt(d.i, 10)
	case UInt64, UInt32, UInt16, UInt8:
		return strconv.FormatUint(d.u, 10)
	case Boolean:
		return strconv.FormatBool(d.u == 1)
	case Double, Float:
		return strconv.FormatFloat(d.f, 'g', -1, 64)
	case String:
		return strconv.Quote(string(d.b))
	case Varbinary:
		return fmt.Sprintf("%x", d.b)
	default:
		return "invalid"
	}
}

// RowView gives positional access to the values of a row.
type RowView interface {
	ColumnByIndex(i int) Datum
}

// Row is a materialized row of datums.
type Row []Datum

// ColumnByIndex returns the datum at position i. Panics if out of range.
func (r Row) ColumnByIndex(i int) Datum {
	return r[i]
}
