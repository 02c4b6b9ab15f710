// Package security provides validation and limits for the lines package.
//
// This package includes:
//   - Identifier validation for products, lines and jobs
//   - Clamping functions to enforce safe limits on exploration concurrency
//   - Constants defining maximum sizes and counts
//
// Most users should import the root package github.com/jdziat/packaging-lines
// which re-exports these functions.
package security
