package core

import (
	"errors"
	"fmt"
)

// Plan is one schedule candidate: a set of lines and every job, assigned or
// not. A Plan and its lines and jobs belong to one goroutine at a time; use
// Clone to explore in parallel. Products and calculators are shared.
type Plan struct {
	lines    []*Line
	jobs     []*Job
	lineByID map[string]*Line
	jobByID  map[string]*Job
}

// NewPlan creates a Plan. Every job chained on a line must be listed in jobs.
func NewPlan(lines []*Line, jobs []*Job) (*Plan, error) {
	p := &Plan{
		lines:    lines,
		jobs:     jobs,
		lineByID: make(map[string]*Line, len(lines)),
		jobByID:  make(map[string]*Job, len(jobs)),
	}
	for _, l := range lines {
		if _, dup := p.lineByID[l.id]; dup {
			return nil, fmt.Errorf("%w: line %s", ErrDuplicateID, l.id)
		}
		p.lineByID[l.id] = l
	}
	for _, j := range jobs {
		if j == nil {
			return nil, ErrNilJob
		}
		if _, dup := p.jobByID[j.id]; dup {
			return nil, fmt.Errorf("%w: job %s", ErrDuplicateID, j.id)
		}
		p.jobByID[j.id] = j
	}
	for _, l := range lines {
		for _, j := range l.members {
			if p.jobByID[j.id] != j {
				return nil, inconsistent(j, "chained on line %s but not part of the plan", l.id)
			}
		}
	}
	for _, j := range jobs {
		if j.line != nil && p.lineByID[j.line.id] != j.line {
			return nil, inconsistent(j, "assigned to line %s outside the plan", j.line.id)
		}
	}
	return p, nil
}

// Lines returns the plan's lines. The slice must not be modified.
func (p *Plan) Lines() []*Line { return p.lines }

// Jobs returns every job. The slice must not be modified.
func (p *Plan) Jobs() []*Job { return p.jobs }

// Line looks up a line by id.
func (p *Plan) Line(id string) *Line { return p.lineByID[id] }

// Job looks up a job by id.
func (p *Plan) Job(id string) *Job { return p.jobByID[id] }

// Unassigned returns the jobs that are on no line.
func (p *Plan) Unassigned() []*Job {
	var out []*Job
	for _, j := range p.jobs {
		if j.line == nil {
			out = append(out, j)
		}
	}
	return out
}

// Clone deep-copies lines and jobs, including derived timing. The copy
// shares only immutable products and calculators with p.
func (p *Plan) Clone() *Plan {
	jobs := make(map[*Job]*Job, len(p.jobs))
	c := &Plan{
		lines:    make([]*Line, len(p.lines)),
		jobs:     make([]*Job, len(p.jobs)),
		lineByID: make(map[string]*Line, len(p.lines)),
		jobByID:  make(map[string]*Job, len(p.jobs)),
	}
	for i, j := range p.jobs {
		cp := *j
		c.jobs[i] = &cp
		c.jobByID[cp.id] = &cp
		jobs[j] = &cp
	}
	lines := make(map[*Line]*Line, len(p.lines))
	for i, l := range p.lines {
		cl := &Line{id: l.id, name: l.name, start: l.start, members: make([]*Job, len(l.members))}
		for k, j := range l.members {
			cl.members[k] = jobs[j]
		}
		c.lines[i] = cl
		c.lineByID[cl.id] = cl
		lines[l] = cl
	}
	for _, cp := range c.jobs {
		cp.line = lines[cp.line]
		cp.previous = jobs[cp.previous]
		cp.next = jobs[cp.next]
	}
	return c
}

// PropagateAll recomputes every job, line by line in chain order, and clears
// the timing of unassigned jobs. Use it after loading seeded jobs or after
// editing links directly. A line whose chain is broken stops it before any
// timing on that line changes.
func (p *Plan) PropagateAll() error {
	for _, l := range p.lines {
		chain, err := l.walk()
		if err != nil {
			return err
		}
		for _, j := range chain {
			if _, err := Propagate(j); err != nil {
				return err
			}
		}
	}
	for _, j := range p.jobs {
		if j.line == nil {
			if _, err := Propagate(j); err != nil {
				return err
			}
		}
	}
	return nil
}

// Verify checks chain consistency and that every derived timestamp matches
// its position. It reports all violations joined into one error.
func (p *Plan) Verify() error {
	var errs []error
	for _, l := range p.lines {
		chain, err := l.walk()
		if err != nil {
			// later positions would only repeat the same breakage
			errs = append(errs, err)
			continue
		}
		var prev *Job
		for _, j := range chain {
			start := l.start
			if prev != nil {
				start = prev.timing.End
			} else if start.IsZero() {
				errs = append(errs, &ChainError{LineID: l.id, Reason: "line has jobs but no start time", Err: ErrMissingLineContext})
				break
			}
			want, err := timingAfter(j, prev, start)
			if err != nil {
				errs = append(errs, err)
				break
			}
			if !j.scheduled || !j.timing.Equal(want) {
				errs = append(errs, inconsistent(j, "stale timing"))
			}
			prev = j
		}
	}
	for _, j := range p.jobs {
		if j.line != nil {
			if p.lineByID[j.line.id] != j.line {
				errs = append(errs, inconsistent(j, "assigned to line %s outside the plan", j.line.id))
			}
			continue
		}
		if j.scheduled {
			errs = append(errs, inconsistent(j, "unassigned job has timing"))
		}
		if j.previous != nil || j.next != nil {
			errs = append(errs, inconsistent(j, "unassigned job has chain neighbors"))
		}
	}
	return errors.Join(errs...)
}
