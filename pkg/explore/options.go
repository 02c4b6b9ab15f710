package explore

import (
	"log/slog"
	"time"

	"github.com/jdziat/packaging-lines/pkg/security"
)

// Option configures an Explorer.
type Option interface {
	ApplyExplorer(*Explorer)
}

type optionFunc func(*Explorer)

func (f optionFunc) ApplyExplorer(e *Explorer) { f(e) }

// Concurrency sets how many candidates run at once.
// Values are clamped to [1, MaxConcurrency].
func Concurrency(n int) Option {
	return optionFunc(func(e *Explorer) {
		e.config.Concurrency = security.ClampConcurrency(n)
	})
}

// WithVerify enables invariant checks on every successful candidate.
func WithVerify(enabled bool) Option {
	return optionFunc(func(e *Explorer) {
		e.config.Verify = enabled
	})
}

// StopOnError skips the remaining candidates after the first failure.
func StopOnError(enabled bool) Option {
	return optionFunc(func(e *Explorer) {
		e.config.StopOnError = enabled
	})
}

// CandidateTimeout bounds each candidate's context.
func CandidateTimeout(d time.Duration) Option {
	return optionFunc(func(e *Explorer) {
		e.config.CandidateTimeout = d
	})
}

// WithConfig replaces all settings, typically with a loaded Config.
func WithConfig(cfg Config) Option {
	return optionFunc(func(e *Explorer) {
		cfg.Concurrency = security.ClampConcurrency(cfg.Concurrency)
		e.config = cfg
	})
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(e *Explorer) {
		if l != nil {
			e.logger = l
		}
	})
}

// OnOutcome registers a hook called once per finished candidate. Hooks run
// on worker goroutines and must be safe for concurrent use.
func OnOutcome(fn func(Outcome)) Option {
	return optionFunc(func(e *Explorer) {
		e.onOutcome = append(e.onOutcome, fn)
	})
}
