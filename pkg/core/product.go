package core

import (
	"fmt"
	"time"

	"github.com/jdziat/packaging-lines/pkg/security"
)

// Product is immutable reference data shared by every schedule candidate.
type Product struct {
	name           string
	startup        time.Duration
	defaultCleanup time.Duration
	cleanup        map[string]time.Duration // previous product name -> changeover
}

// ProductOption configures a Product.
type ProductOption interface {
	applyProduct(*Product)
}

type productOptionFunc func(*Product)

func (f productOptionFunc) applyProduct(p *Product) { f(p) }

// WithCleanup sets the changeover duration when the previous job on the line
// produced the named product.
func WithCleanup(previous string, d time.Duration) ProductOption {
	return productOptionFunc(func(p *Product) {
		p.cleanup[previous] = d
	})
}

// WithDefaultCleanup sets the changeover used when the previous product has
// no WithCleanup entry.
func WithDefaultCleanup(d time.Duration) ProductOption {
	return productOptionFunc(func(p *Product) {
		p.defaultCleanup = d
	})
}

// WithStartup sets the cost of producing this product first on a line,
// with no previous product. Defaults to zero.
func WithStartup(d time.Duration) ProductOption {
	return productOptionFunc(func(p *Product) {
		p.startup = d
	})
}

// NewProduct creates a Product. Negative durations are rejected.
func NewProduct(name string, opts ...ProductOption) (*Product, error) {
	if err := security.ValidateID(name); err != nil {
		return nil, err
	}
	p := &Product{name: name, cleanup: make(map[string]time.Duration)}
	for _, opt := range opts {
		opt.applyProduct(p)
	}
	if p.startup < 0 || p.defaultCleanup < 0 {
		return nil, fmt.Errorf("%w: product %s", ErrNegativeDuration, name)
	}
	for prev, d := range p.cleanup {
		if d < 0 {
			return nil, fmt.Errorf("%w: product %s after %s", ErrNegativeDuration, name, prev)
		}
	}
	return p, nil
}

// Name returns the unique product name.
func (p *Product) Name() string {
	return p.name
}

// CleanupDuration returns the changeover needed before producing p when the
// line last produced previous. A nil previous means no previous product.
func (p *Product) CleanupDuration(previous *Product) time.Duration {
	if previous == nil {
		return p.startup
	}
	if d, ok := p.cleanup[previous.name]; ok {
		return d
	}
	return p.defaultCleanup
}

func (p *Product) String() string {
	return p.name
}
