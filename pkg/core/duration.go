package core

import (
	"errors"
	"time"
)

// ComputeDuration is the stored duration that asks the job's
// DurationCalculator for the production duration instead.
const ComputeDuration time.Duration = 0

// ErrNoCalculator is returned when a job's duration must be computed but no
// calculator was injected.
var ErrNoCalculator = errors.New("lines: no duration calculator")

// DurationCalculator computes how long producing quantity units of a product
// takes on a line. The line is nil for a job that is not assigned yet.
//
// Implementations must be deterministic and free of side effects: the same
// inputs always give the same duration. Calculators are shared by every
// cloned plan and may be called from several goroutines at once.
type DurationCalculator interface {
	Calculate(product *Product, line *Line, quantity int) (time.Duration, error)
}

// CalculatorFunc adapts a function to a DurationCalculator.
type CalculatorFunc func(product *Product, line *Line, quantity int) (time.Duration, error)

func (f CalculatorFunc) Calculate(product *Product, line *Line, quantity int) (time.Duration, error) {
	return f(product, line, quantity)
}
