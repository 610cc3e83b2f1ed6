// Package delta adapts log-backed Delta tables into scan plans for the
// execution side.
//
// A Table wraps a kernel.Engine and a table location. Each Scan resolves a
// fresh snapshot, maps the snapshot's logical types to Arrow types, narrows
// the log read to the projected data columns, enumerates the snapshot's
// physical files with their partition literals and deletion vectors, plans
// row-group access for files carrying partial deletions, and assembles a
// declarative exec.ScanPlan. The package never writes to a table and never
// caches state across scans.
package delta
