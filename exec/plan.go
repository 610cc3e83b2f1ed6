// Package exec defines the physical scan plan handed from table providers
// to the execution side, and a reference executor that reads plans into
// Arrow record batches.
//
// A ScanPlan is declarative: it names the physical files a snapshot
// logically contains, the schema stored in those files, per-file partition
// column literals, and optionally a per-file access plan instructing the
// reader to skip, fully scan, or selectively read each row group. The
// executor honors the plan as written; it does not evaluate the pushed-down
// predicate (pushdown is inexact and re-applied by the caller).
package exec

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/scalar"

	"github.com/aolwas/adt/filter"
)

// AccessKind classifies how a physical reader treats one row group.
type AccessKind int

const (
	// AccessScan reads the full row group.
	AccessScan AccessKind = iota

	// AccessSkip does not read the row group at all.
	AccessSkip

	// AccessSelective reads the row group through a row selection.
	AccessSelective
)

func (k AccessKind) String() string {
	switch k {
	case AccessScan:
		return "scan"
	case AccessSkip:
		return "skip"
	case AccessSelective:
		return "selective"
	}
	return "unknown"
}

// RowSelector is one run of consecutive rows that is either selected or
// skipped.
type RowSelector struct {
	RowCount int64
	Skip     bool
}

// SelectRows returns a selector covering n live rows.
func SelectRows(n int64) RowSelector { return RowSelector{RowCount: n} }

// SkipRows returns a selector covering n skipped rows.
func SkipRows(n int64) RowSelector { return RowSelector{RowCount: n, Skip: true} }

// RowSelection is an ordered list of alternating select/skip runs covering
// a row group from its first row.
type RowSelection []RowSelector

// RowSelectionFromMask builds a selection from a per-row liveness mask,
// merging consecutive equal values into runs.
func RowSelectionFromMask(mask []bool) RowSelection {
	var sel RowSelection
	for i := 0; i < len(mask); {
		j := i
		for j < len(mask) && mask[j] == mask[i] {
			j++
		}
		if mask[i] {
			sel = append(sel, SelectRows(int64(j-i)))
		} else {
			sel = append(sel, SkipRows(int64(j-i)))
		}
		i = j
	}
	return sel
}

// NumSelected returns the number of live rows in the selection.
func (s RowSelection) NumSelected() int64 {
	var n int64
	for _, r := range s {
		if !r.Skip {
			n += r.RowCount
		}
	}
	return n
}

// RowGroupAccess is the access decision for one row group. Selection is set
// only when Kind is AccessSelective.
type RowGroupAccess struct {
	Kind      AccessKind
	Selection RowSelection
}

// AccessPlan holds one access decision per row group of a file, in
// row-group order.
type AccessPlan struct {
	RowGroups []RowGroupAccess
}

// PartitionedFile is one physical file contributing rows to a scan.
type PartitionedFile struct {
	// Path is the store-scoped absolute path of the file.
	Path string

	// Size is the file size in bytes.
	Size int64

	// PartitionValues holds one typed literal per partition column, in
	// partition-field order.
	PartitionValues []scalar.Scalar

	// Access instructs the reader how to treat each row group.
	// Nil means every row of the file is live.
	Access *AccessPlan
}

// ScanPlan is the declarative result of planning one table scan.
type ScanPlan struct {
	// ScanID identifies the scan in logs.
	ScanID string

	// FileSchema describes the columns physically stored in files
	// (partition columns excluded).
	FileSchema *arrow.Schema

	// Files lists the physical files in enumeration order.
	Files []PartitionedFile

	// PartitionFields describes partition columns in declaration order.
	PartitionFields []arrow.Field

	// Predicate is the pushed-down filter, always inexact: the caller must
	// re-apply it after scanning.
	Predicate filter.Expression

	// Projection holds indices into the logical schema (file fields
	// followed by partition fields). Nil selects all columns.
	Projection []int

	// Limit caps the number of emitted rows; zero or negative means no
	// limit.
	Limit int64
}

// LogicalSchema returns the caller-visible schema: file columns followed by
// partition columns.
func (p *ScanPlan) LogicalSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, p.FileSchema.NumFields()+len(p.PartitionFields))
	fields = append(fields, p.FileSchema.Fields()...)
	fields = append(fields, p.PartitionFields...)
	return arrow.NewSchema(fields, nil)
}

// OutputSchema returns the logical schema narrowed to the plan's projection.
func (p *ScanPlan) OutputSchema() *arrow.Schema {
	logical := p.LogicalSchema()
	if p.Projection == nil {
		return logical
	}
	fields := make([]arrow.Field, 0, len(p.Projection))
	for _, i := range p.Projection {
		fields = append(fields, logical.Field(i))
	}
	return arrow.NewSchema(fields, nil)
}
