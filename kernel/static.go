package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StaticEngine is an in-memory Engine implementation holding fixed table
// definitions. It is intended for embedding and tests; it performs no I/O.
type StaticEngine struct {
	mu     sync.RWMutex
	tables map[string]*StaticTable
}

// NewStaticEngine creates an empty static engine.
func NewStaticEngine() *StaticEngine {
	return &StaticEngine{tables: make(map[string]*StaticTable)}
}

// StaticTable is a fixed table definition served by StaticEngine.
type StaticTable struct {
	// Schema is the logical schema including partition columns.
	Schema *StructType

	// PartitionColumns lists partition column names in declaration order.
	PartitionColumns []string

	// Versions maps log versions to the file set visible at that version.
	Versions map[int64][]StaticFile

	// Current is the latest version; used when no version is requested.
	Current int64
}

// StaticFile is one physical file of a StaticTable.
type StaticFile struct {
	// Path is relative to the table root.
	Path string

	// Size in bytes.
	Size int64

	// PartitionValues are string-encoded, keyed by partition column name.
	PartitionValues map[string]string

	// Selection is the file's selection vector; nil means all rows live.
	Selection []bool
}

// RegisterTable binds a table definition to a location. The location is
// normalized to carry a trailing separator, matching Snapshot.TableRoot
// semantics.
func (e *StaticEngine) RegisterTable(location string, table *StaticTable) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tables[withTrailingSlash(location)] = table
}

// Snapshot implements Engine.
func (e *StaticEngine) Snapshot(ctx context.Context, location string, version *int64) (Snapshot, error) {
	e.mu.RLock()
	table, ok := e.tables[withTrailingSlash(location)]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("kernel: no table registered at %q", location)
	}
	v := table.Current
	if version != nil {
		v = *version
	}
	files, ok := table.Versions[v]
	if !ok {
		return nil, fmt.Errorf("kernel: table %q has no version %d", location, v)
	}
	return &staticSnapshot{
		schema:        table.Schema,
		partitionCols: table.PartitionColumns,
		root:          withTrailingSlash(location),
		version:       v,
		files:         files,
	}, nil
}

// NewScan implements Engine. The read schema narrows which columns a file
// reader would decode; the static engine has no file contents, so it only
// validates that every requested field exists.
func (e *StaticEngine) NewScan(ctx context.Context, snapshot Snapshot, readSchema *StructType) (Scan, error) {
	snap, ok := snapshot.(*staticSnapshot)
	if !ok {
		return nil, fmt.Errorf("kernel: snapshot was not produced by this engine")
	}
	for _, f := range readSchema.Fields {
		if _, ok := snap.schema.Field(f.Name); !ok {
			return nil, fmt.Errorf("kernel: read schema field %q not in table schema", f.Name)
		}
	}
	return &staticScan{files: snap.files}, nil
}

type staticSnapshot struct {
	schema        *StructType
	partitionCols []string
	root          string
	version       int64
	files         []StaticFile
}

func (s *staticSnapshot) Schema() *StructType        { return s.schema }
func (s *staticSnapshot) PartitionColumns() []string { return s.partitionCols }
func (s *staticSnapshot) TableRoot() string          { return s.root }
func (s *staticSnapshot) Version() int64             { return s.version }

type staticScan struct {
	files []StaticFile
}

// VisitFiles implements Scan.
func (s *staticScan) VisitFiles(ctx context.Context, visit FileVisitor) error {
	for _, f := range s.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		var dv DeletionVector
		if f.Selection != nil {
			dv = staticDeletionVector(f.Selection)
		}
		visit(FileAdd{
			Path:            f.Path,
			Size:            f.Size,
			DeletionVector:  dv,
			PartitionValues: f.PartitionValues,
		})
	}
	return nil
}

type staticDeletionVector []bool

// Materialize implements DeletionVector.
func (v staticDeletionVector) Materialize(ctx context.Context, tableRoot string) ([]bool, error) {
	out := make([]bool, len(v))
	copy(out, v)
	return out, nil
}

func withTrailingSlash(location string) string {
	if strings.HasSuffix(location, "/") {
		return location
	}
	return location + "/"
}
