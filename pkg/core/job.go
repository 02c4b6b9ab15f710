// Package core provides the domain model and the chain timing-propagation
// engine for the lines package.
package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/packaging-lines/pkg/security"
)

// Timing holds the derived timestamps of a scheduled job.
// Production starts after cleanup.
type Timing struct {
	StartCleaning   time.Time
	StartProduction time.Time
	End             time.Time
}

// Equal reports whether both timings denote the same instants.
func (t Timing) Equal(o Timing) bool {
	return t.StartCleaning.Equal(o.StartCleaning) &&
		t.StartProduction.Equal(o.StartProduction) &&
		t.End.Equal(o.End)
}

// Job is a production run of a product on a line.
type Job struct {
	id         string
	name       string
	reference  string
	product    *Product
	quantity   int
	duration   time.Duration
	calculator DurationCalculator
	minStart   time.Time
	idealEnd   time.Time
	maxEnd     time.Time
	priority   int // higher number is higher priority
	pinned     bool

	// Chain relations, mutated by the search.
	line     *Line
	previous *Job
	next     *Job

	// Written only by Propagate and NewJob.
	timing    Timing
	scheduled bool
}

// JobOption configures a Job.
type JobOption interface {
	applyJob(*jobSetup)
}

type jobSetup struct {
	job             *Job
	seeded          bool
	startCleaning   time.Time
	startProduction time.Time
}

type jobOptionFunc func(*jobSetup)

func (f jobOptionFunc) applyJob(s *jobSetup) { f(s) }

// WithQuantity sets the number of units to produce.
func WithQuantity(q int) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.quantity = q
	})
}

// WithDuration sets a fixed production duration. ComputeDuration (zero)
// defers to the job's calculator.
func WithDuration(d time.Duration) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.duration = d
	})
}

// WithCalculator injects the calculator used when the duration is
// ComputeDuration.
func WithCalculator(c DurationCalculator) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.calculator = c
	})
}

// WithWindow sets the time window read by scoring. The engine does not
// enforce it.
func WithWindow(minStart, idealEnd, maxEnd time.Time) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.minStart = minStart
		s.job.idealEnd = idealEnd
		s.job.maxEnd = maxEnd
	})
}

// WithPriority sets the priority (higher = more important).
func WithPriority(p int) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.priority = p
	})
}

// Pinned marks the job as fixed in place for the search.
func Pinned() JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.pinned = true
	})
}

// WithReference sets the order reference carried by the input data.
func WithReference(ref string) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.job.reference = ref
	})
}

// Seeded loads an already computed schedule position. The end time is
// derived from startProduction and the duration; nothing is checked against
// the chain until the next Propagate.
func Seeded(startCleaning, startProduction time.Time) JobOption {
	return jobOptionFunc(func(s *jobSetup) {
		s.seeded = true
		s.startCleaning = startCleaning
		s.startProduction = startProduction
	})
}

// NewJob creates an unassigned Job. An empty id is replaced by a random UUID.
func NewJob(id, name string, product *Product, opts ...JobOption) (*Job, error) {
	if id == "" {
		id = uuid.New().String()
	}
	if err := security.ValidateID(id); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: job %s", ErrNilProduct, id)
	}

	s := &jobSetup{job: &Job{id: id, name: name, product: product}}
	for _, opt := range opts {
		opt.applyJob(s)
	}
	j := s.job

	if err := security.ValidateQuantity(j.quantity); err != nil {
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	if err := j.checkDuration(j.duration); err != nil {
		return nil, err
	}
	if s.seeded {
		d, err := j.Duration()
		if err != nil {
			return nil, err
		}
		j.timing = Timing{
			StartCleaning:   s.startCleaning,
			StartProduction: s.startProduction,
			End:             s.startProduction.Add(d),
		}
		j.scheduled = true
	}
	return j, nil
}

func (j *Job) checkDuration(d time.Duration) error {
	if d < 0 {
		return &DurationError{JobID: j.id, Duration: d}
	}
	if d == ComputeDuration && j.calculator == nil {
		return &DurationError{JobID: j.id, Err: ErrNoCalculator}
	}
	return nil
}

func (j *Job) String() string {
	return j.id + "(" + j.product.Name() + ")"
}

// ID returns the stable job id.
func (j *Job) ID() string { return j.id }

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// Reference returns the order reference.
func (j *Job) Reference() string { return j.reference }

// Product returns the product produced by this job.
func (j *Job) Product() *Product { return j.product }

// Quantity returns the number of units to produce.
func (j *Job) Quantity() int { return j.quantity }

// NominalDuration returns the stored duration, which is ComputeDuration for
// calculated jobs.
func (j *Job) NominalDuration() time.Duration { return j.duration }

// MinStartTime returns the earliest wanted start.
func (j *Job) MinStartTime() time.Time { return j.minStart }

// IdealEndTime returns the wanted end.
func (j *Job) IdealEndTime() time.Time { return j.idealEnd }

// MaxEndTime returns the latest acceptable end.
func (j *Job) MaxEndTime() time.Time { return j.maxEnd }

// Priority returns the priority (higher = more important).
func (j *Job) Priority() int { return j.priority }

// Pinned reports whether the search must leave this job in place.
func (j *Job) Pinned() bool { return j.pinned }

// Line returns the assigned line, or nil.
func (j *Job) Line() *Line { return j.line }

// PreviousJob returns the chain predecessor, or nil at the head.
func (j *Job) PreviousJob() *Job { return j.previous }

// NextJob returns the chain successor, or nil at the tail.
func (j *Job) NextJob() *Job { return j.next }

// Duration returns the production duration. For ComputeDuration jobs it asks
// the calculator with the job's current line; a failing calculator or a
// negative result yields a *DurationError.
func (j *Job) Duration() (time.Duration, error) {
	if j.duration != ComputeDuration {
		return j.duration, nil
	}
	if j.calculator == nil {
		return 0, &DurationError{JobID: j.id, Err: ErrNoCalculator}
	}
	d, err := j.calculator.Calculate(j.product, j.line, j.quantity)
	if err != nil {
		return 0, &DurationError{JobID: j.id, Err: err}
	}
	if d < 0 {
		return 0, &DurationError{JobID: j.id, Duration: d}
	}
	return d, nil
}

// Scheduled reports whether the derived timestamps are set.
func (j *Job) Scheduled() bool { return j.scheduled }

// Timing returns the derived timestamps and whether they are set.
func (j *Job) Timing() (Timing, bool) { return j.timing, j.scheduled }

// StartCleaningDateTime returns when cleanup starts; zero when unscheduled.
func (j *Job) StartCleaningDateTime() time.Time { return j.timing.StartCleaning }

// StartProductionDateTime returns when production starts; zero when unscheduled.
func (j *Job) StartProductionDateTime() time.Time { return j.timing.StartProduction }

// EndDateTime returns when production ends; zero when unscheduled.
func (j *Job) EndDateTime() time.Time { return j.timing.End }

// SetLine sets the assigned line and moves the job between the lines'
// member sets. Link it with SetPreviousJob and SetNextJob, then call
// Propagate.
func (j *Job) SetLine(l *Line) {
	if j.line == l {
		return
	}
	if j.line != nil {
		j.line.leave(j)
	}
	if l != nil {
		l.join(j)
	}
	j.line = l
}

// SetPreviousJob sets the chain predecessor. Call Propagate afterwards.
func (j *Job) SetPreviousJob(p *Job) { j.previous = p }

// SetNextJob sets the chain successor.
func (j *Job) SetNextJob(n *Job) { j.next = n }

// SetQuantity changes the quantity. Call Propagate afterwards.
func (j *Job) SetQuantity(q int) error {
	if err := security.ValidateQuantity(q); err != nil {
		return fmt.Errorf("job %s: %w", j.id, err)
	}
	j.quantity = q
	return nil
}

// SetDuration changes the stored duration. Call Propagate afterwards.
func (j *Job) SetDuration(d time.Duration) error {
	if err := j.checkDuration(d); err != nil {
		return err
	}
	j.duration = d
	return nil
}

// SetPriority changes the priority.
func (j *Job) SetPriority(p int) { j.priority = p }

// SetPinned changes the pin flag.
func (j *Job) SetPinned(pinned bool) { j.pinned = pinned }
