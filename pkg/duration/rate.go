package duration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jdziat/packaging-lines/pkg/core"
)

// Errors returned by RateTable.
var (
	ErrUnknownRate     = errors.New("duration: no rate for product")
	ErrInvalidQuantity = errors.New("duration: quantity must be positive")
	ErrInvalidRate     = errors.New("duration: rate must be positive")
	ErrOverflow        = errors.New("duration: result does not fit in a time.Duration")
)

// DefaultGranularity rounds computed durations up to whole minutes.
const DefaultGranularity = time.Minute

type rateKey struct {
	product string
	line    string
}

// RateTable computes durations from units-per-hour throughput rates.
type RateTable struct {
	rates        map[rateKey]float64
	productRates map[string]float64
	defaultRate  float64
	granularity  time.Duration
}

var _ core.DurationCalculator = (*RateTable)(nil)

// Option configures a RateTable.
type Option interface {
	apply(*RateTable)
}

type optionFunc func(*RateTable)

func (f optionFunc) apply(t *RateTable) { f(t) }

// Rate sets the throughput of product on a specific line.
func Rate(product, line string, unitsPerHour float64) Option {
	return optionFunc(func(t *RateTable) {
		t.rates[rateKey{product: product, line: line}] = unitsPerHour
	})
}

// ProductRate sets the throughput of product on any line without a Rate entry.
func ProductRate(product string, unitsPerHour float64) Option {
	return optionFunc(func(t *RateTable) {
		t.productRates[product] = unitsPerHour
	})
}

// DefaultRate sets the throughput used when nothing more specific matches.
func DefaultRate(unitsPerHour float64) Option {
	return optionFunc(func(t *RateTable) {
		t.defaultRate = unitsPerHour
	})
}

// Granularity sets the rounding step. Zero or negative disables rounding.
func Granularity(d time.Duration) Option {
	return optionFunc(func(t *RateTable) {
		t.granularity = d
	})
}

// NewRateTable builds a RateTable. Every configured rate must be positive.
func NewRateTable(opts ...Option) (*RateTable, error) {
	t := &RateTable{
		rates:        make(map[rateKey]float64),
		productRates: make(map[string]float64),
		granularity:  DefaultGranularity,
	}
	for _, opt := range opts {
		opt.apply(t)
	}
	for k, r := range t.rates {
		if !validRate(r) {
			return nil, fmt.Errorf("%w: %s on line %s: %v", ErrInvalidRate, k.product, k.line, r)
		}
	}
	for p, r := range t.productRates {
		if !validRate(r) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRate, p, r)
		}
	}
	if t.defaultRate != 0 && !validRate(t.defaultRate) {
		return nil, fmt.Errorf("%w: default: %v", ErrInvalidRate, t.defaultRate)
	}
	return t, nil
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// RateFor returns the units-per-hour rate that applies to product on line.
// A nil line only matches product and default rates.
func (t *RateTable) RateFor(product *core.Product, line *core.Line) (float64, bool) {
	if line != nil {
		if r, ok := t.rates[rateKey{product: product.Name(), line: line.ID()}]; ok {
			return r, true
		}
	}
	if r, ok := t.productRates[product.Name()]; ok {
		return r, true
	}
	if t.defaultRate > 0 {
		return t.defaultRate, true
	}
	return 0, false
}

// Calculate implements core.DurationCalculator.
func (t *RateTable) Calculate(product *core.Product, line *core.Line, quantity int) (time.Duration, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	rate, ok := t.RateFor(product, line)
	if !ok {
		if line == nil {
			return 0, fmt.Errorf("%w %s", ErrUnknownRate, product.Name())
		}
		return 0, fmt.Errorf("%w %s on line %s", ErrUnknownRate, product.Name(), line.ID())
	}

	f := math.Ceil(float64(quantity) * float64(time.Hour) / rate)
	// float64(MaxInt64) rounds up to 2^63, which is already out of range
	if f >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: %d units at %g per hour", ErrOverflow, quantity, rate)
	}
	d := time.Duration(f)
	if g := t.granularity; g > 0 {
		if rem := d % g; rem != 0 {
			if d > math.MaxInt64-(g-rem) {
				return 0, fmt.Errorf("%w: %d units at %g per hour", ErrOverflow, quantity, rate)
			}
			d += g - rem
		}
	}
	return d, nil
}
