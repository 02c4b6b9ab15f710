package core

import (
	"slices"
	"time"

	"github.com/jdziat/packaging-lines/pkg/schedule"
	"github.com/jdziat/packaging-lines/pkg/security"
)

// Line is a production resource with an ordered chain of jobs.
//
// The chain itself lives in the jobs' previous and next links. A line only
// tracks its members, the jobs whose line is set to it, and derives its
// order by walking the links from the member that has no predecessor.
type Line struct {
	id      string
	name    string
	start   time.Time
	members []*Job
}

// LineOption configures a Line.
type LineOption interface {
	applyLine(*Line)
}

type lineOptionFunc func(*Line)

func (f lineOptionFunc) applyLine(l *Line) { f(l) }

// WithLineName sets a display name. Defaults to the id.
func WithLineName(name string) LineOption {
	return lineOptionFunc(func(l *Line) {
		l.name = name
	})
}

// AvailableFrom sets the start time to the first slot of s after the given
// moment, overriding the start passed to NewLine.
func AvailableFrom(s schedule.Schedule, after time.Time) LineOption {
	return lineOptionFunc(func(l *Line) {
		l.start = s.Next(after)
	})
}

// NewLine creates a Line with no jobs. A zero start is allowed here but any
// attempt to propagate timing through the line fails with ErrMissingLineContext.
func NewLine(id string, start time.Time, opts ...LineOption) (*Line, error) {
	if err := security.ValidateID(id); err != nil {
		return nil, err
	}
	l := &Line{id: id, name: id, start: start}
	for _, opt := range opts {
		opt.applyLine(l)
	}
	return l, nil
}

// ID returns the line id.
func (l *Line) ID() string {
	return l.id
}

// Name returns the display name.
func (l *Line) Name() string {
	return l.name
}

// StartDateTime returns the earliest moment the line is available.
func (l *Line) StartDateTime() time.Time {
	return l.start
}

// SetStartDateTime moves the line's availability. Call Propagate on Head
// afterwards.
func (l *Line) SetStartDateTime(t time.Time) {
	l.start = t
}

// Jobs returns the chain in order, walking the links from the head. On a
// broken chain it returns the part reachable from the head; Check reports
// the breakage.
func (l *Line) Jobs() []*Job {
	jobs, _ := l.walk()
	return jobs
}

// Len returns the chain length.
func (l *Line) Len() int {
	return len(l.Jobs())
}

// Head returns the first job, or nil for an empty line. With more than one
// member lacking a predecessor, the earliest assigned one wins.
func (l *Line) Head() *Job {
	for _, j := range l.members {
		if j.previous == nil {
			return j
		}
	}
	return nil
}

// IndexOf returns the position of job in the chain, or -1.
func (l *Line) IndexOf(job *Job) int {
	if job == nil || job.line != l {
		return -1
	}
	return slices.Index(l.Jobs(), job)
}

// Check reports whether the members form exactly one acyclic chain whose
// links agree in both directions.
func (l *Line) Check() error {
	_, err := l.walk()
	return err
}

// walk follows next links from the head. It never visits more jobs than the
// line has members, so a cycle cannot trap it.
func (l *Line) walk() ([]*Job, error) {
	if len(l.members) == 0 {
		return nil, nil
	}
	head := l.Head()
	if head == nil {
		return nil, &ChainError{LineID: l.id, Reason: "every member has a previous job", Err: ErrInconsistentChain}
	}
	jobs := make([]*Job, 0, len(l.members))
	var prev *Job
	for cur := head; cur != nil; cur = cur.next {
		switch {
		case cur.line != l:
			return jobs, inconsistent(cur, "successor of %s is on line %q", prev.id, lineID(cur.line))
		case cur.previous != prev:
			return jobs, inconsistent(cur, "previous job is %s, expected %s", idOf(cur.previous), idOf(prev))
		case len(jobs) == len(l.members):
			return jobs, inconsistent(cur, "cycle in chain of line %s", l.id)
		}
		jobs = append(jobs, cur)
		prev = cur
	}
	if len(jobs) < len(l.members) {
		for _, j := range l.members {
			if !slices.Contains(jobs, j) {
				return jobs, inconsistent(j, "assigned to line %s but not reachable from head %s", l.id, head.id)
			}
		}
	}
	return jobs, nil
}

// join and leave keep the member list in step with Job.line.
func (l *Line) join(j *Job) {
	if !slices.Contains(l.members, j) {
		l.members = append(l.members, j)
	}
}

func (l *Line) leave(j *Job) {
	if i := slices.Index(l.members, j); i >= 0 {
		l.members = slices.Delete(l.members, i, i+1)
	}
}

// Relink reports what SetJobs changed.
type Relink struct {
	// Heads are the jobs whose line or previous job changed, in chain order.
	// Each needs a Propagate call.
	Heads []*Job

	// Detached are former members that are no longer on this line. Their
	// line and neighbors are cleared; Propagate clears their timing.
	Detached []*Job
}

// SetJobs replaces the chain and rewires line, previous and next on every
// member. Jobs must be unassigned or already on this line; nothing changes
// when validation fails. Former members left out are detached even when the
// chain they formed was broken.
func (l *Line) SetJobs(jobs []*Job) (Relink, error) {
	seen := make(map[*Job]struct{}, len(jobs))
	for _, j := range jobs {
		if j == nil {
			return Relink{}, ErrNilJob
		}
		if _, dup := seen[j]; dup {
			return Relink{}, inconsistent(j, "appears twice on line %s", l.id)
		}
		if j.line != nil && j.line != l {
			return Relink{}, &ChainError{JobID: j.id, LineID: j.line.id, Reason: "cannot join line " + l.id, Err: ErrJobAssigned}
		}
		seen[j] = struct{}{}
	}

	var r Relink
	for _, old := range l.members {
		if _, kept := seen[old]; !kept {
			old.line, old.previous, old.next = nil, nil, nil
			r.Detached = append(r.Detached, old)
		}
	}

	var prev *Job
	for i, j := range jobs {
		if j.line != l || j.previous != prev {
			r.Heads = append(r.Heads, j)
		}
		j.line = l
		j.previous = prev
		if i+1 < len(jobs) {
			j.next = jobs[i+1]
		} else {
			j.next = nil
		}
		prev = j
	}
	l.members = slices.Clone(jobs)
	return r, nil
}

func (l *Line) String() string {
	return l.id
}
