package datum

import (
	"bytes"
	"math"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
)

func TestKind_IsKeyKind(t *testing.T) {
	tests := []struct {
		kind Kind
		key  bool
	}{
		{Null, false},
		{Timestamp, true},
		{Double, false},
		{Float, false},
		{Varbinary, true},
		{String, true},
		{UInt64, true},
		{UInt8, true},
		{Int64, true},
		{Int8, true},
		{Boolean, true},
	}

	for _, tt := range tests {
		if tt.kind.IsKeyKind() != tt.key {
			t.Errorf("%v.IsKeyKind()=%v, want %v", tt.kind, tt.kind.IsKeyKind(), tt.key)
		}
	}
}

func TestKind_FixedSize(t *testing.T) {
	tests := []struct {
		kind Kind
		size int
	}{
		{Null, 1},
		{Timestamp, 8},
		{Double, 8},
		{Float, 4},
		{Varbinary, 4},
		{String, 4},
		{UInt64, 8},
		{UInt32, 4},
		{UInt16, 2},
		{UInt8, 1},
		{Int64, 8},
		{Int32, 4},
		{Int16, 2},
		{Int8, 1},
		{Boolean, 1},
	}

	for _, tt := range tests {
		if got := tt.kind.FixedSize(); got != tt.size {
			t.Errorf("%v.FixedSize()=%d, want %d", tt.kind, got, tt.size)
		}
	}
}

func TestKind_ArrowMapping(t *testing.T) {
	for k := Null; k <= Boolean; k++ {
		got, ok := KindFromArrow(k.ArrowType())
		if !ok {
			t.Errorf("%v: arrow type %v not mapped back", k, k.ArrowType())
			continue
		}
		if got != k {
			t.Errorf("%v: mapped back to %v", k, got)
		}
	}

	if _, ok := KindFromArrow(arrow.FixedWidthTypes.Date32); ok {
		t.Error("date32 should not map to a kind")
	}
	if _, ok := KindFromArrow(arrow.FixedWidthTypes.Timestamp_ns); ok {
		t.Error("nanosecond timestamps should not map to a kind")
	}
}

func TestKind_WireMapping(t *testing.T) {
	seen := make(map[int32]bool)
	for k := Null; k <= Boolean; k++ {
		code := k.WireCode()
		if seen[code] {
			t.Fatalf("duplicate wire code %d", code)
		}
		seen[code] = true

		got, ok := KindFromWire(code)
		if !ok || got != k {
			t.Errorf("%v: wire code %d mapped back to %v (ok=%v)", k, code, got, ok)
		}
	}
	if _, ok := KindFromWire(99); ok {
		t.Error("unknown wire code should not map")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"timestamp", Timestamp, false},
		{"STRING", String, false},
		{" uint64 ", UInt64, false},
		{"bool", Boolean, false},
		{"bytes", Varbinary, false},
		{"decimal", Null, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseKind(%q) err=%v, want err=%v", tt.in, err, tt.err)
			continue
		}
		if !tt.err && got != tt.want {
			t.Errorf("ParseKind(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDatum_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Datum
		want int
	}{
		{"null", NewNull(), NewNull(), 0},
		{"timestamp less", NewTimestamp(1000), NewTimestamp(1001), -1},
		{"int64 negative", NewInt64(-5), NewInt64(3), -1},
		{"uint64 large", NewUInt64(math.MaxUint64), NewUInt64(1), 1},
		{"string", NewString("abc"), NewString("abd"), -1},
		{"string prefix", NewString("ab"), NewString("abc"), -1},
		{"varbinary equal", NewVarbinary([]byte{1, 2}), NewVarbinary([]byte{1, 2}), 0},
		{"boolean", NewBoolean(true), NewBoolean(false), 1},
		{"double", NewDouble(1.5), NewDouble(1.5), 0},
		{"double nan", NewDouble(math.NaN()), NewDouble(0), -1},
		{"float", NewFloat(2), NewFloat(1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare()=%d, want %d", got, tt.want)
			}
			if got := tt.b.Compare(tt.a); got != -tt.want {
				t.Errorf("reverse Compare()=%d, want %d", got, -tt.want)
			}
		})
	}
}

func TestDatum_CompareDifferentKindsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("comparing different kinds should panic")
		}
	}()
	NewInt64(1).Compare(NewInt32(1))
}

func TestDatum_AppendKey(t *testing.T) {
	a := NewString("ab").AppendKey(nil)
	a = NewString("c").AppendKey(a)
	b := NewString("a").AppendKey(nil)
	b = NewString("bc").AppendKey(b)
	if bytes.Equal(a, b) {
		t.Error("length prefix should keep concatenated keys distinct")
	}

	if bytes.Equal(NewInt64(1).AppendKey(nil), NewUInt64(1).AppendKey(nil)) {
		t.Error("kinds should be part of the key encoding")
	}
}

func TestRow_ColumnByIndex(t *testing.T) {
	row := Row{NewString("host-1"), NewTimestamp(42)}
	var view RowView = row
	if got := view.ColumnByIndex(1); !got.Equal(NewTimestamp(42)) {
		t.Errorf("got %v, want 42", got)
	}
}
