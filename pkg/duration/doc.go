// Package duration provides DurationCalculator implementations.
//
// RateTable turns a quantity into a production duration from throughput
// rates (units per hour) keyed by product and line, with per-product and
// global fallbacks. A RateTable is immutable once built and safe to share
// across every cloned plan.
package duration
