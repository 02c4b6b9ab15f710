package explore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/packaging-lines/pkg/core"
)

// ErrNilPlan is returned by Run when no base plan is given.
var ErrNilPlan = errors.New("explore: nil base plan")

// ErrSkipped marks candidates that never ran because an earlier one failed
// with StopOnError set.
var ErrSkipped = errors.New("explore: candidate skipped")

// Candidate mutates its private copy of the base plan. A returned error
// marks the candidate as failed.
type Candidate func(ctx context.Context, plan *core.Plan) error

// Outcome is the result of one candidate.
type Outcome struct {
	Index   int
	ID      string
	Plan    *core.Plan
	Err     error
	Elapsed time.Duration
}

// OK reports whether the candidate succeeded.
func (o Outcome) OK() bool { return o.Err == nil && o.Plan != nil }

// Explorer runs candidates on cloned plans with a bounded number of
// goroutines.
type Explorer struct {
	config    Config
	logger    *slog.Logger
	onOutcome []func(Outcome)
}

// New creates an explorer.
func New(opts ...Option) *Explorer {
	e := &Explorer{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt.ApplyExplorer(e)
	}
	return e
}

// Config returns the effective settings.
func (e *Explorer) Config() Config { return e.config }

// Run explores every candidate on its own clone of base and returns one
// Outcome per candidate, in candidate order. The base plan is never
// modified. Run returns ctx.Err() if ctx ends before all candidates finish.
func (e *Explorer) Run(ctx context.Context, base *core.Plan, candidates []Candidate) ([]Outcome, error) {
	if base == nil {
		return nil, ErrNilPlan
	}
	outcomes := make([]Outcome, len(candidates))
	if len(candidates) == 0 {
		return outcomes, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan int, len(candidates))
	for i := range candidates {
		work <- i
	}
	close(work)

	workers := min(e.config.Concurrency, len(candidates))
	if workers < 1 {
		workers = 1
	}
	e.logger.Debug("exploring candidates", "candidates", len(candidates), "workers", workers)

	var (
		wg     sync.WaitGroup
		failed sync.Once
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				out := e.explore(runCtx, base, i, candidates[i])
				outcomes[i] = out
				if out.Err != nil && e.config.StopOnError && !errors.Is(out.Err, ErrSkipped) {
					failed.Do(cancel)
				}
				for _, fn := range e.onOutcome {
					fn(out)
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// explore runs a single candidate.
func (e *Explorer) explore(ctx context.Context, base *core.Plan, index int, candidate Candidate) Outcome {
	out := Outcome{Index: index, ID: uuid.New().String()}
	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("%w: %w", ErrSkipped, context.Cause(ctx))
		return out
	}
	if candidate == nil {
		out.Err = fmt.Errorf("explore: candidate %d is nil", index)
		return out
	}

	start := time.Now()
	plan := base.Clone()

	candCtx := ctx
	if e.config.CandidateTimeout > 0 {
		var cancel context.CancelFunc
		candCtx, cancel = context.WithTimeout(ctx, e.config.CandidateTimeout)
		defer cancel()
	}

	err := e.call(candCtx, plan, candidate)
	if err == nil {
		err = candCtx.Err()
	}
	if err == nil && e.config.Verify {
		if verr := plan.Verify(); verr != nil {
			err = fmt.Errorf("explore: candidate %d broke plan invariants: %w", index, verr)
		}
	}
	out.Elapsed = time.Since(start)

	if err != nil {
		out.Err = err
		e.logger.Warn("candidate failed", "candidate", out.ID, "index", index, "error", err)
		return out
	}
	out.Plan = plan
	e.logger.Debug("candidate explored", "candidate", out.ID, "index", index, "elapsed", out.Elapsed)
	return out
}

// call invokes the candidate, converting a panic into an error.
func (e *Explorer) call(ctx context.Context, plan *core.Plan, candidate Candidate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("candidate panicked", "panic", r)
			err = fmt.Errorf("explore: candidate panic: %v", r)
		}
	}()
	return candidate(ctx, plan)
}

// Best returns the successful outcome that sorts first under less.
// It reports false when no candidate succeeded.
func Best(outcomes []Outcome, less func(a, b *core.Plan) bool) (Outcome, bool) {
	var (
		best  Outcome
		found bool
	)
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		if !found || less(o.Plan, best.Plan) {
			best, found = o, true
		}
	}
	return best, found
}

// Successful filters outcomes down to the ones that succeeded.
func Successful(outcomes []Outcome) []Outcome {
	var ok []Outcome
	for _, o := range outcomes {
		if o.OK() {
			ok = append(ok, o)
		}
	}
	return ok
}
