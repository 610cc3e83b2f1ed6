package delta

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/aolwas/adt/kernel"
)

// Schemas holds the three schema views derived from one snapshot.
type Schemas struct {
	// Logical is the caller-visible schema: data columns in log order,
	// followed by partition columns in declaration order.
	Logical *arrow.Schema

	// FilePhysical covers only the columns stored inside data files, in log
	// order.
	FilePhysical *arrow.Schema

	// PartitionFields lists partition columns in declaration order, with
	// their mapped Arrow types.
	PartitionFields []arrow.Field
}

// ResolveSchemas splits a snapshot's schema into data and partition halves.
// Every snapshot field ends up in exactly one half; a partition column name
// missing from the schema is a corrupt log and returns an error.
func ResolveSchemas(snapshot kernel.Snapshot) (*Schemas, error) {
	schema := snapshot.Schema()
	partitions := snapshot.PartitionColumns()

	isPartition := make(map[string]bool, len(partitions))
	for _, name := range partitions {
		isPartition[name] = true
	}

	var fileFields []arrow.Field
	for _, f := range schema.Fields {
		if !isPartition[f.Name] {
			fileFields = append(fileFields, MapField(f))
		}
	}

	partitionFields := make([]arrow.Field, 0, len(partitions))
	for _, name := range partitions {
		f, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("delta: partition column %q not in table schema", name)
		}
		partitionFields = append(partitionFields, MapField(f))
	}

	logical := make([]arrow.Field, 0, len(fileFields)+len(partitionFields))
	logical = append(logical, fileFields...)
	logical = append(logical, partitionFields...)

	return &Schemas{
		Logical:         arrow.NewSchema(logical, nil),
		FilePhysical:    arrow.NewSchema(fileFields, nil),
		PartitionFields: partitionFields,
	}, nil
}

// projectReadSchema narrows the snapshot's native schema to the data columns
// a projection touches. Projected partition columns have no file-physical
// counterpart and are omitted; their values come from the log per file. A
// nil projection requests the full native schema.
func projectReadSchema(schema *kernel.StructType, schemas *Schemas, projection []int) (*kernel.StructType, error) {
	if projection == nil {
		return schema, nil
	}
	nData := schemas.FilePhysical.NumFields()
	var fields []kernel.StructField
	for _, i := range projection {
		if i < 0 || i >= schemas.Logical.NumFields() {
			return nil, fmt.Errorf("delta: projection index %d out of range [0, %d)", i, schemas.Logical.NumFields())
		}
		if i >= nData {
			continue
		}
		name := schemas.Logical.Field(i).Name
		f, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("delta: column %q not in table schema", name)
		}
		fields = append(fields, f)
	}
	return kernel.NewStructType(fields...), nil
}
