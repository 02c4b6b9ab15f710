// Package core provides the domain model and the timing engine for the lines package.
//
// This package contains:
//   - Product, Line and Job data holders
//   - DurationCalculator, the capability computing production durations
//   - Propagate, the chain timing-propagation engine
//   - Plan, a schedule candidate that can be cloned for parallel exploration
//   - Error types for malformed chains and failed duration computations
//
// Derived timestamps are written only by Propagate. Most users should import
// the root package github.com/jdziat/packaging-lines instead of this package
// directly.
package core
