package kernel

import (
	"context"
)

// Engine resolves table snapshots and drives log-backed scans.
// Implementations own all log I/O. All methods MUST be goroutine-safe;
// snapshot resolution and scanning are I/O-bound and MUST respect context
// cancellation.
type Engine interface {
	// Snapshot resolves the table at location to a consistent, immutable
	// view. A nil version resolves the latest committed version; a non-nil
	// version pins the snapshot for time travel.
	// Returns an error if the log cannot be opened or the version does not
	// exist. Failures here are not transient; callers surface them as fatal.
	Snapshot(ctx context.Context, location string, version *int64) (Snapshot, error)

	// NewScan constructs a scan over the snapshot restricted to readSchema.
	// readSchema must be a subset of the snapshot's schema; an empty struct
	// requests no file columns (files are still visited, e.g. for
	// partition-only projections).
	NewScan(ctx context.Context, snapshot Snapshot, readSchema *StructType) (Scan, error)
}

// Snapshot is an immutable, versioned view of a table's log at a point in
// time. Snapshots are resolved once per scan request and never mutated.
type Snapshot interface {
	// Schema returns the table's logical schema in declared field order,
	// including partition columns at their declared positions.
	Schema() *StructType

	// PartitionColumns returns partition column names in declaration order.
	// The returned slice is an ordered subset of Schema field names.
	PartitionColumns() []string

	// TableRoot returns the table root location as an absolute URL string
	// with a trailing separator.
	TableRoot() string

	// Version returns the log version this snapshot was resolved at.
	Version() int64
}

// Scan visits the physical files a snapshot logically contains.
type Scan interface {
	// VisitFiles invokes visit once per physical file, in log-replay order.
	// Errors returned here are scan-construction or log-iteration failures;
	// per-file decode problems are the visitor's concern.
	VisitFiles(ctx context.Context, visit FileVisitor) error
}

// FileVisitor receives one file-visitation event per physical file.
type FileVisitor func(file FileAdd)

// FileAdd describes one physical file contributing rows to a snapshot.
type FileAdd struct {
	// Path is the file location relative to the table root.
	Path string

	// Size is the file size in bytes.
	Size int64

	// Stats carries optional per-file statistics from the log.
	Stats *FileStats

	// DeletionVector is the handle to the file's row-level deletion
	// information. Nil when the file carries no deletion vector.
	DeletionVector DeletionVector

	// PartitionValues holds the string-encoded partition column values
	// recorded in the log, keyed by column name.
	PartitionValues map[string]string
}

// FileStats carries optional per-file statistics from the log.
type FileStats struct {
	NumRecords int64
}

// DeletionVector is a handle to a file's row-level deletion information.
type DeletionVector interface {
	// Materialize resolves the selection vector (inverse deletion vector)
	// for the file: true marks a live row, false a logically deleted one,
	// indexed by physical row position. The vector may be shorter than the
	// file's row count; positions beyond its length are live.
	// A nil vector with nil error means no row is deleted.
	Materialize(ctx context.Context, tableRoot string) ([]bool, error)
}
