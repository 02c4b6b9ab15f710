// Package lines models production lines that run an ordered chain of jobs
// and keeps every job's cleaning, production and end times consistent as
// the chains are edited.
//
// This is the main package users should import. It re-exports the public
// types of the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	soup, _ := lines.NewProduct("soup", lines.WithDefaultCleanup(20*time.Minute))
//	line, _ := lines.NewLine("L1", monday6am)
//	a, _ := lines.NewJob("A", "soup batch", soup, lines.WithDuration(time.Hour))
//	b, _ := lines.NewJob("B", "soup batch", soup, lines.WithDuration(time.Hour))
//	plan, _ := lines.NewPlan([]*lines.Line{line}, []*lines.Job{a, b})
//
//	// Structural edits propagate timing automatically
//	lines.Assign(a, line, 0)
//	lines.Assign(b, line, 1)
//
//	// Try alternatives concurrently on private copies of the plan
//	outcomes, _ := lines.NewExplorer(lines.Concurrency(4)).Run(ctx, plan, candidates)
package lines

import (
	"time"

	"github.com/jdziat/packaging-lines/pkg/core"
	"github.com/jdziat/packaging-lines/pkg/duration"
	"github.com/jdziat/packaging-lines/pkg/explore"
	"github.com/jdziat/packaging-lines/pkg/moves"
	"github.com/jdziat/packaging-lines/pkg/schedule"
	"github.com/jdziat/packaging-lines/pkg/security"
)

type (
	// Product is something a line can make, with its changeover costs.
	Product = core.Product

	// ProductOption configures a Product.
	ProductOption = core.ProductOption

	// Line is a production line running an ordered chain of jobs.
	Line = core.Line

	// LineOption configures a Line.
	LineOption = core.LineOption

	// Relink reports which jobs need propagation after Line.SetJobs.
	Relink = core.Relink

	// Job is one production order.
	Job = core.Job

	// JobOption configures a Job.
	JobOption = core.JobOption

	// Timing holds a job's derived cleaning, production and end times.
	Timing = core.Timing

	// Result describes a single propagation run.
	Result = core.Result

	// Plan is the set of lines and jobs being scheduled.
	Plan = core.Plan

	// DurationCalculator computes a job's production duration.
	DurationCalculator = core.DurationCalculator

	// CalculatorFunc adapts a function to DurationCalculator.
	CalculatorFunc = core.CalculatorFunc

	// ChainError reports a chain that violates its structural invariants.
	ChainError = core.ChainError

	// DurationError reports a failed or invalid duration computation.
	DurationError = core.DurationError

	// Schedule yields line availability times.
	Schedule = schedule.Schedule

	// RateTable computes durations from production rates.
	RateTable = duration.RateTable

	// RateOption configures a RateTable.
	RateOption = duration.Option

	// Move is an applied structural edit that can be undone.
	Move = moves.Move

	// Explorer runs candidates concurrently on cloned plans.
	Explorer = explore.Explorer

	// ExploreOption configures an Explorer.
	ExploreOption = explore.Option

	// ExploreConfig holds explorer settings.
	ExploreConfig = explore.Config

	// Candidate mutates a private copy of a plan.
	Candidate = explore.Candidate

	// Outcome is the result of one candidate.
	Outcome = explore.Outcome
)

// ComputeDuration marks a job whose duration comes from its calculator.
const ComputeDuration = core.ComputeDuration

// Security limits
const (
	MaxIDLength    = security.MaxIDLength
	MaxConcurrency = security.MaxConcurrency
	MaxQuantity    = security.MaxQuantity
)

// Error variables
var (
	ErrInconsistentChain   = core.ErrInconsistentChain
	ErrMissingLineContext  = core.ErrMissingLineContext
	ErrDurationComputation = core.ErrDurationComputation
	ErrNilJob              = core.ErrNilJob
	ErrNilProduct          = core.ErrNilProduct
	ErrJobAssigned         = core.ErrJobAssigned
	ErrNegativeDuration    = core.ErrNegativeDuration
	ErrNoCalculator        = core.ErrNoCalculator
	ErrInvalidID           = core.ErrInvalidID
	ErrIDTooLong           = core.ErrIDTooLong
	ErrInvalidQuantity     = core.ErrInvalidQuantity
	ErrDuplicateID         = core.ErrDuplicateID
	ErrPinned              = moves.ErrPinned
	ErrNotAssigned         = moves.ErrNotAssigned
	ErrIndexOutOfRange     = moves.ErrIndexOutOfRange
	ErrSameJob             = moves.ErrSameJob
	ErrAlreadyUndone       = moves.ErrAlreadyUndone
	ErrUnknownRate         = duration.ErrUnknownRate
	ErrDurationOverflow    = duration.ErrOverflow
	ErrSkipped             = explore.ErrSkipped
)

// NewProduct creates a product.
func NewProduct(name string, opts ...ProductOption) (*Product, error) {
	return core.NewProduct(name, opts...)
}

// NewLine creates a line that becomes available at start.
func NewLine(id string, start time.Time, opts ...LineOption) (*Line, error) {
	return core.NewLine(id, start, opts...)
}

// NewJob creates an unassigned job. An empty id is replaced by a UUID.
func NewJob(id, name string, product *Product, opts ...JobOption) (*Job, error) {
	return core.NewJob(id, name, product, opts...)
}

// NewPlan creates a plan over lines and jobs.
func NewPlan(lines []*Line, jobs []*Job) (*Plan, error) {
	return core.NewPlan(lines, jobs)
}

// Propagate recomputes timing from job to the end of its chain, stopping
// early once a job's timing is unchanged.
func Propagate(job *Job) (Result, error) {
	return core.Propagate(job)
}

// PropagateLine recomputes a whole line from its head.
func PropagateLine(l *Line) (Result, error) {
	return core.PropagateLine(l)
}

// Product option functions

// WithCleanup sets the changeover cost after previous.
func WithCleanup(previous string, d time.Duration) ProductOption {
	return core.WithCleanup(previous, d)
}

// WithDefaultCleanup sets the changeover cost after any unlisted product.
func WithDefaultCleanup(d time.Duration) ProductOption {
	return core.WithDefaultCleanup(d)
}

// WithStartup sets the cost of running the product first on a line.
func WithStartup(d time.Duration) ProductOption {
	return core.WithStartup(d)
}

// Line option functions

// WithLineName sets a display name.
func WithLineName(name string) LineOption {
	return core.WithLineName(name)
}

// AvailableFrom sets the start to the first slot of s after the given moment.
func AvailableFrom(s Schedule, after time.Time) LineOption {
	return core.AvailableFrom(s, after)
}

// Job option functions

// WithQuantity sets the number of units to produce.
func WithQuantity(q int) JobOption {
	return core.WithQuantity(q)
}

// WithDuration sets a fixed production duration.
func WithDuration(d time.Duration) JobOption {
	return core.WithDuration(d)
}

// WithCalculator sets the calculator used when the duration is ComputeDuration.
func WithCalculator(c DurationCalculator) JobOption {
	return core.WithCalculator(c)
}

// WithWindow sets the job's time window.
func WithWindow(minStart, idealEnd, maxEnd time.Time) JobOption {
	return core.WithWindow(minStart, idealEnd, maxEnd)
}

// WithPriority sets the job priority.
func WithPriority(p int) JobOption {
	return core.WithPriority(p)
}

// Pinned marks a job that moves must not relocate.
func Pinned() JobOption {
	return core.Pinned()
}

// WithReference sets an external order reference.
func WithReference(ref string) JobOption {
	return core.WithReference(ref)
}

// Seeded sets initial timing for a job loaded from an existing schedule.
func Seeded(startCleaning, startProduction time.Time) JobOption {
	return core.Seeded(startCleaning, startProduction)
}

// Moves

// Assign inserts an unassigned job into line at index.
func Assign(job *Job, line *Line, index int) (*Move, error) {
	return moves.Assign(job, line, index)
}

// Unassign removes job from its line.
func Unassign(job *Job) (*Move, error) {
	return moves.Unassign(job)
}

// Relocate moves job to index on line.
func Relocate(job *Job, line *Line, index int) (*Move, error) {
	return moves.Relocate(job, line, index)
}

// Swap exchanges the positions of two assigned jobs.
func Swap(a, b *Job) (*Move, error) {
	return moves.Swap(a, b)
}

// Reverse reverses the jobs at positions from..to on line.
func Reverse(line *Line, from, to int) (*Move, error) {
	return moves.Reverse(line, from, to)
}

// Durations

// NewRateTable creates a rate-based DurationCalculator.
func NewRateTable(opts ...RateOption) (*RateTable, error) {
	return duration.NewRateTable(opts...)
}

// Rate sets the units per hour for product on line.
func Rate(product, line string, unitsPerHour float64) RateOption {
	return duration.Rate(product, line, unitsPerHour)
}

// ProductRate sets the units per hour for product on any line.
func ProductRate(product string, unitsPerHour float64) RateOption {
	return duration.ProductRate(product, unitsPerHour)
}

// DefaultRate sets the fallback units per hour.
func DefaultRate(unitsPerHour float64) RateOption {
	return duration.DefaultRate(unitsPerHour)
}

// Exploration

// NewExplorer creates an explorer.
func NewExplorer(opts ...ExploreOption) *Explorer {
	return explore.New(opts...)
}

// LoadExploreConfig reads explorer settings from a YAML file.
func LoadExploreConfig(path string) (*ExploreConfig, error) {
	return explore.Load(path)
}

// Concurrency sets how many candidates run at once.
func Concurrency(n int) ExploreOption {
	return explore.Concurrency(n)
}

// WithVerify enables invariant checks on every successful candidate.
func WithVerify(enabled bool) ExploreOption {
	return explore.WithVerify(enabled)
}

// StopOnError skips the remaining candidates after the first failure.
func StopOnError(enabled bool) ExploreOption {
	return explore.StopOnError(enabled)
}

// CandidateTimeout bounds each candidate's context.
func CandidateTimeout(d time.Duration) ExploreOption {
	return explore.CandidateTimeout(d)
}

// WithExploreConfig applies loaded explorer settings.
func WithExploreConfig(cfg ExploreConfig) ExploreOption {
	return explore.WithConfig(cfg)
}

// Best returns the successful outcome that sorts first under less.
func Best(outcomes []Outcome, less func(a, b *Plan) bool) (Outcome, bool) {
	return explore.Best(outcomes, less)
}

// Schedule functions

// Every creates a calendar with fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a calendar that opens at a specific time each day.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Weekly creates a calendar that opens at a specific day and time each week.
func Weekly(day time.Weekday, hour, minute int) Schedule {
	return schedule.Weekly(day, hour, minute)
}

// Cron creates a calendar from a cron expression.
func Cron(expr string) Schedule {
	return schedule.Cron(expr)
}

// ParseCron parses a cron expression into a calendar.
func ParseCron(expr string) (Schedule, error) {
	return schedule.ParseCron(expr)
}

// ValidateID validates a product, line or job identifier.
func ValidateID(id string) error {
	return security.ValidateID(id)
}

// ClampConcurrency ensures concurrency is within limits.
func ClampConcurrency(n int) int {
	return security.ClampConcurrency(n)
}
