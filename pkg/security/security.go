// Package security provides validation and limits for the lines package.
package security

import (
	"errors"
	"strings"
	"unicode"
)

// Security limits and configuration
const (
	// MaxIDLength is the maximum length in bytes for product names, line ids and job ids
	MaxIDLength = 255

	// MaxConcurrency is the hard limit for parallel candidate explorations
	MaxConcurrency = 1000

	// MaxQuantity is the largest quantity a single job may carry
	MaxQuantity = 1 << 30
)

// Validation errors
var (
	ErrInvalidID       = errors.New("lines: invalid identifier (must be non-empty, without control characters)")
	ErrIDTooLong       = errors.New("lines: identifier too long")
	ErrInvalidQuantity = errors.New("lines: quantity out of range")
)

// ValidateID validates an identifier used for a product, line or job
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	if len(id) > MaxIDLength {
		return ErrIDTooLong
	}
	for _, r := range id {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return ErrInvalidID
		}
	}
	return nil
}

// ValidateQuantity checks a job quantity is within [0, MaxQuantity]
func ValidateQuantity(q int) error {
	if q < 0 || q > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}

// ClampConcurrency ensures concurrency is within limits
func ClampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
