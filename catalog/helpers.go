package catalog

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ProjectSchema narrows schema to the given column indices, preserving the
// order of indices. A nil projection returns the schema unchanged.
func ProjectSchema(schema *arrow.Schema, projection []int) (*arrow.Schema, error) {
	if projection == nil {
		return schema, nil
	}
	fields := make([]arrow.Field, 0, len(projection))
	for _, i := range projection {
		if i < 0 || i >= schema.NumFields() {
			return nil, fmt.Errorf("catalog: projection index %d out of range [0, %d)", i, schema.NumFields())
		}
		fields = append(fields, schema.Field(i))
	}
	return arrow.NewSchema(fields, nil), nil
}

// ColumnNames returns the names of the projected columns, or all column
// names when projection is nil.
func ColumnNames(schema *arrow.Schema, projection []int) ([]string, error) {
	s, err := ProjectSchema(schema, projection)
	if err != nil {
		return nil, err
	}
	names := make([]string, s.NumFields())
	for i := range names {
		names[i] = s.Field(i).Name
	}
	return names, nil
}
