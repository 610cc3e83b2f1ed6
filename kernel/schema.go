package kernel

import "fmt"

// DataType describes a logical column type in the table format's schema.
// It is one of PrimitiveType, DecimalType, ArrayType, StructType, or MapType.
type DataType interface {
	fmt.Stringer

	// dataTypeMarker is a marker method to prevent external implementation.
	dataTypeMarker()
}

// PrimitiveType enumerates the table format's scalar types.
// Decimal is represented separately by DecimalType because it carries
// precision and scale.
type PrimitiveType int

const (
	TypeString PrimitiveType = iota
	TypeLong
	TypeInteger
	TypeShort
	TypeByte
	TypeFloat
	TypeDouble
	TypeBoolean
	TypeBinary
	TypeDate
	TypeTimestamp    // microseconds, UTC-adjusted
	TypeTimestampNTZ // microseconds, no timezone
)

func (p PrimitiveType) dataTypeMarker() {}

func (p PrimitiveType) String() string {
	switch p {
	case TypeString:
		return "string"
	case TypeLong:
		return "long"
	case TypeInteger:
		return "integer"
	case TypeShort:
		return "short"
	case TypeByte:
		return "byte"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBoolean:
		return "boolean"
	case TypeBinary:
		return "binary"
	case TypeDate:
		return "date"
	case TypeTimestamp:
		return "timestamp"
	case TypeTimestampNTZ:
		return "timestamp_ntz"
	}
	return fmt.Sprintf("primitive(%d)", int(p))
}

// DecimalType is a fixed-precision decimal.
type DecimalType struct {
	Precision int32
	Scale     int32
}

func (d DecimalType) dataTypeMarker() {}

func (d DecimalType) String() string {
	return fmt.Sprintf("decimal(%d,%d)", d.Precision, d.Scale)
}

// ArrayType is a variable-length list of a single element type.
type ArrayType struct {
	Element      DataType
	ContainsNull bool
}

func (a ArrayType) dataTypeMarker() {}

func (a ArrayType) String() string {
	return fmt.Sprintf("array<%s>", a.Element)
}

// StructField is one named, typed, optionally nullable field of a struct
// or of a table schema.
type StructField struct {
	Name     string
	Type     DataType
	Nullable bool
}

// StructType is an ordered collection of fields. Table schemas are
// StructType values.
type StructType struct {
	Fields []StructField
}

func (s *StructType) dataTypeMarker() {}

func (s *StructType) String() string {
	out := "struct<"
	for i, f := range s.Fields {
		if i > 0 {
			out += ","
		}
		out += f.Name + ":" + f.Type.String()
	}
	return out + ">"
}

// NewStructType creates a struct type from fields in order.
func NewStructType(fields ...StructField) *StructType {
	return &StructType{Fields: fields}
}

// Field returns the field with the given name, or false if absent.
func (s *StructType) Field(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// MapType is a key/value mapping. Keys are never null; value nullability
// follows ValueContainsNull.
type MapType struct {
	Key               DataType
	Value             DataType
	ValueContainsNull bool
}

func (m MapType) dataTypeMarker() {}

func (m MapType) String() string {
	return fmt.Sprintf("map<%s,%s>", m.Key, m.Value)
}
