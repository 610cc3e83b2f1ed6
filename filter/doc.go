// Package filter provides the expression model shared between the query
// surface and storage adapters.
//
// Filters handed to a provider's Scan are plain expression trees built from
// column references, constants, comparisons, conjunctions, and null-test
// operators. Adapters combine them into a single pushed-down predicate with
// Conjunction and report pushdown support per filter; the engine re-applies
// every filter that was reported as inexact.
//
// # Building expressions
//
//	f := filter.And(
//	    filter.Equal(filter.Column("region"), filter.Literal("eu")),
//	    filter.GreaterThan(filter.Column("amount"), filter.Literal(int64(100))),
//	)
//
// # Encoding
//
// The Encoder renders expressions as SQL-style text. This is used for
// diagnostics (EXPLAIN-style output, debug logs), not for execution:
//
//	enc := filter.NewEncoder(nil)
//	s := enc.Encode(f) // (region = 'eu') AND (amount > 100)
package filter
