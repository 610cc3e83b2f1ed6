package delta

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/aolwas/adt/kernel"
)

func TestMapPrimitiveTypes(t *testing.T) {
	tests := []struct {
		name string
		in   kernel.DataType
		want arrow.DataType
	}{
		{name: "string", in: kernel.TypeString, want: arrow.BinaryTypes.String},
		{name: "long", in: kernel.TypeLong, want: arrow.PrimitiveTypes.Int64},
		{name: "integer", in: kernel.TypeInteger, want: arrow.PrimitiveTypes.Int32},
		{name: "short", in: kernel.TypeShort, want: arrow.PrimitiveTypes.Int16},
		{name: "byte", in: kernel.TypeByte, want: arrow.PrimitiveTypes.Int8},
		{name: "float", in: kernel.TypeFloat, want: arrow.PrimitiveTypes.Float32},
		{name: "double", in: kernel.TypeDouble, want: arrow.PrimitiveTypes.Float64},
		{name: "boolean", in: kernel.TypeBoolean, want: arrow.FixedWidthTypes.Boolean},
		{name: "binary", in: kernel.TypeBinary, want: arrow.BinaryTypes.Binary},
		{name: "date", in: kernel.TypeDate, want: arrow.FixedWidthTypes.Date32},
		{
			name: "timestamp",
			in:   kernel.TypeTimestamp,
			want: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"},
		},
		{
			name: "timestamp_ntz",
			in:   kernel.TypeTimestampNTZ,
			want: &arrow.TimestampType{Unit: arrow.Microsecond},
		},
		{
			name: "decimal",
			in:   kernel.DecimalType{Precision: 12, Scale: 3},
			want: &arrow.Decimal128Type{Precision: 12, Scale: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDataType(tt.in)
			if !arrow.TypeEqual(got, tt.want) {
				t.Errorf("MapDataType(%v) = %v, want %v", tt.in, got, tt.want)
			}
			again := MapDataType(tt.in)
			if !arrow.TypeEqual(got, again) {
				t.Errorf("MapDataType(%v) not deterministic: %v then %v", tt.in, got, again)
			}
		})
	}
}

func TestMapNestedTypes(t *testing.T) {
	arr := MapDataType(kernel.ArrayType{Element: kernel.TypeLong, ContainsNull: true})
	wantArr := arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Int64, Nullable: true})
	if !arrow.TypeEqual(arr, wantArr) {
		t.Errorf("array mapping = %v, want %v", arr, wantArr)
	}

	st := MapDataType(kernel.NewStructType(
		kernel.StructField{Name: "x", Type: kernel.TypeDouble, Nullable: true},
		kernel.StructField{Name: "y", Type: kernel.TypeString},
	))
	wantSt := arrow.StructOf(
		arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		arrow.Field{Name: "y", Type: arrow.BinaryTypes.String},
	)
	if !arrow.TypeEqual(st, wantSt) {
		t.Errorf("struct mapping = %v, want %v", st, wantSt)
	}

	m := MapDataType(kernel.MapType{Key: kernel.TypeString, Value: kernel.TypeLong, ValueContainsNull: true})
	mt, ok := m.(*arrow.MapType)
	if !ok {
		t.Fatalf("map mapping = %T, want *arrow.MapType", m)
	}
	if !arrow.TypeEqual(mt.KeyType(), arrow.BinaryTypes.String) {
		t.Errorf("map key = %v, want string", mt.KeyType())
	}
	if mt.KeyField().Nullable {
		t.Error("map key must not be nullable")
	}
	if !arrow.TypeEqual(mt.ItemType(), arrow.PrimitiveTypes.Int64) {
		t.Errorf("map value = %v, want int64", mt.ItemType())
	}
}

func TestMapFieldPreservesNullability(t *testing.T) {
	f := MapField(kernel.StructField{Name: "amount", Type: kernel.TypeDouble, Nullable: true})
	if f.Name != "amount" || !f.Nullable || !arrow.TypeEqual(f.Type, arrow.PrimitiveTypes.Float64) {
		t.Errorf("MapField() = %+v", f)
	}
}

func TestMapUnknownPrimitivePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MapDataType() did not panic on unknown primitive")
		}
	}()
	MapDataType(kernel.PrimitiveType(99))
}
