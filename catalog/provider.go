// Package catalog defines the table provider abstraction bridging logical
// table references to physical scan plans.
//
// A Provider wraps one table format (Delta, plain parquet listing, ...) and
// answers three questions for the query engine: what schema the table has,
// which filters it can narrow scans with, and what physical plan a given
// scan request maps to. Providers are registered per format tag through
// Register and resolved from table references through Resolve.
//
// All interfaces are goroutine-safe and support context-based cancellation.
package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/filter"
)

// PushdownSupport classifies how a provider handles one pushed-down filter.
type PushdownSupport int

const (
	// PushdownUnsupported means the provider ignores the filter entirely.
	PushdownUnsupported PushdownSupport = iota

	// PushdownInexact means the provider uses the filter to narrow the scan
	// but may still return non-matching rows; the caller MUST re-apply it.
	PushdownInexact

	// PushdownExact means every returned row satisfies the filter.
	PushdownExact
)

func (s PushdownSupport) String() string {
	switch s {
	case PushdownUnsupported:
		return "unsupported"
	case PushdownInexact:
		return "inexact"
	case PushdownExact:
		return "exact"
	}
	return "unknown"
}

// TimePoint pins a scan to a historical state of the table.
type TimePoint struct {
	// Unit specifies the pin granularity. "version" is the only unit table
	// formats in this module accept.
	Unit string

	// Value is the time point value (format depends on Unit).
	// For Unit="version" it is a base-10 table version number.
	Value string
}

// ScanOptions carries the engine's requirements for one scan.
type ScanOptions struct {
	// Projection holds indices into the provider's Schema().
	// Nil means all columns, in schema order.
	Projection []int

	// Filters are conjunctive predicates the engine would like pushed down.
	// The provider reports per-filter support through
	// SupportsFiltersPushdown; unsupported filters are ignored.
	Filters []filter.Expression

	// Limit is the maximum number of rows to produce.
	// Zero or negative means no limit.
	Limit int64

	// TimePoint pins the scan to a historical table state.
	// Nil scans the current state.
	TimePoint *TimePoint
}

// Provider exposes one table to the query engine.
// Implementations MUST be goroutine-safe.
type Provider interface {
	// Schema returns the logical schema: data columns first, partition
	// columns after, in their respective declaration orders.
	Schema(ctx context.Context) (*arrow.Schema, error)

	// SupportsFiltersPushdown reports, per filter, how the provider would
	// treat it if pushed down. The result has the same length and order as
	// the argument.
	SupportsFiltersPushdown(filters []filter.Expression) []PushdownSupport

	// Scan plans a physical scan satisfying opts against the table state
	// visible at call time. The returned plan is self-contained: executing
	// it does not consult the provider again.
	Scan(ctx context.Context, opts *ScanOptions) (*exec.ScanPlan, error)
}
