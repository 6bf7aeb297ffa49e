package datum

import (
	"fmt"
	"strconv"
	"time"
)

// Parse converts the text form of a value into a datum of kind k. Timestamps
// accept either milliseconds since the epoch or an RFC 3339 time.
func Parse(k Kind, s string) (Datum, error) {
	switch k {
	case String:
		return NewString(s), nil
	case Varbinary:
		return NewVarbinary([]byte(s)), nil
	case Boolean:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return Datum{}, parseError(k, s, err)
		}
		return NewBoolean(v), nil
	case Timestamp:
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewTimestamp(ms), nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Datum{}, parseError(k, s, err)
		}
		return NewTimestamp(t.UnixMilli()), nil
	case Double, Float:
		bits := 64
		if k == Float {
			bits = 32
		}
		v, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return Datum{}, parseError(k, s, err)
		}
		if k == Float {
			return NewFloat(float32(v)), nil
		}
		return NewDouble(v), nil
	case UInt64, UInt32, UInt16, UInt8:
		v, err := strconv.ParseUint(s, 10, k.FixedSize()*8)
		if err != nil {
			return Datum{}, parseError(k, s, err)
		}
		return Datum{kind: k, u: v}, nil
	case Int64, Int32, Int16, Int8:
		v, err := strconv.ParseInt(s, 10, k.FixedSize()*8)
		if err != nil {
			return Datum{}, parseError(k, s, err)
		}
		return Datum{kind: k, i: v}, nil
	}
	return Datum{}, fmt.Errorf("cannot parse a value of kind %s", k)
}

func parseError(k Kind, s string, err error) error {
	return fmt.Errorf("invalid %s value %q: %w", k, s, err)
}
