// Package kernel defines the boundary with the transaction-log engine that
// backs Delta-style tables.
//
// The log engine owns the table format's log protocol: commit replay,
// checkpoint handling, snapshot resolution, and deletion-vector decoding.
// This package only describes what adapters consume from it: an immutable
// Snapshot of a table at one point in time, a Scan that visits the physical
// files the snapshot logically contains, and a handle to materialize each
// file's selection vector (the inverse deletion vector).
//
// The package also defines the table format's logical type descriptors
// (primitive, array, struct, map), which adapters map onto engine column
// types.
//
// A static in-memory Engine implementation is provided for embedding and
// tests; production engines are supplied by the embedding application.
package kernel
