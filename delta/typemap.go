package delta

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/aolwas/adt/kernel"
)

// MapDataType maps a table-format logical type to its Arrow physical type.
// The mapping is total and deterministic over the types kernel defines;
// encountering an unknown type is a programming error and panics.
func MapDataType(dt kernel.DataType) arrow.DataType {
	switch t := dt.(type) {
	case kernel.PrimitiveType:
		return mapPrimitive(t)
	case kernel.DecimalType:
		return &arrow.Decimal128Type{Precision: t.Precision, Scale: t.Scale}
	case kernel.ArrayType:
		elem := arrow.Field{Name: "item", Type: MapDataType(t.Element), Nullable: t.ContainsNull}
		return arrow.ListOfField(elem)
	case *kernel.StructType:
		fields := make([]arrow.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = MapField(f)
		}
		return arrow.StructOf(fields...)
	case kernel.MapType:
		return arrow.MapOf(MapDataType(t.Key), MapDataType(t.Value))
	}
	panic(fmt.Sprintf("delta: unmapped table format type %v", dt))
}

func mapPrimitive(p kernel.PrimitiveType) arrow.DataType {
	switch p {
	case kernel.TypeString:
		return arrow.BinaryTypes.String
	case kernel.TypeLong:
		return arrow.PrimitiveTypes.Int64
	case kernel.TypeInteger:
		return arrow.PrimitiveTypes.Int32
	case kernel.TypeShort:
		return arrow.PrimitiveTypes.Int16
	case kernel.TypeByte:
		return arrow.PrimitiveTypes.Int8
	case kernel.TypeFloat:
		return arrow.PrimitiveTypes.Float32
	case kernel.TypeDouble:
		return arrow.PrimitiveTypes.Float64
	case kernel.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case kernel.TypeBinary:
		return arrow.BinaryTypes.Binary
	case kernel.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case kernel.TypeTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case kernel.TypeTimestampNTZ:
		return &arrow.TimestampType{Unit: arrow.Microsecond}
	}
	panic(fmt.Sprintf("delta: unmapped primitive type %v", p))
}

// MapField maps one table-format field to an Arrow field, preserving name
// and nullability.
func MapField(f kernel.StructField) arrow.Field {
	return arrow.Field{Name: f.Name, Type: MapDataType(f.Type), Nullable: f.Nullable}
}
