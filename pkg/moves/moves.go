package moves

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jdziat/packaging-lines/pkg/core"
)

// Move errors
var (
	ErrPinned          = errors.New("lines: job is pinned")
	ErrNotAssigned     = errors.New("lines: job is not assigned to a line")
	ErrIndexOutOfRange = errors.New("lines: chain index out of range")
	ErrSameJob         = errors.New("lines: cannot swap a job with itself")
	ErrAlreadyUndone   = errors.New("lines: move already undone")
)

// lineState is the full chain of one line.
type lineState struct {
	line *core.Line
	jobs []*core.Job
}

// Move is an applied change that can be undone once.
type Move struct {
	before []lineState
	after  []lineState
	undone bool
}

// Lines returns the lines the move changed.
func (m *Move) Lines() []*core.Line {
	out := make([]*core.Line, len(m.after))
	for i, s := range m.after {
		out[i] = s.line
	}
	return out
}

// Undo restores the chains and timing from before the move.
func (m *Move) Undo() error {
	if m.undone {
		return ErrAlreadyUndone
	}
	if err := apply(m.before); err != nil {
		return err
	}
	m.undone = true
	return nil
}

// Assign inserts an unassigned job into line at index (0 = head, Len = tail).
func Assign(job *core.Job, line *core.Line, index int) (*Move, error) {
	if err := movable(job); err != nil {
		return nil, err
	}
	if job.Line() != nil {
		return nil, fmt.Errorf("%w: %s is on line %s", core.ErrJobAssigned, job.ID(), job.Line().ID())
	}
	if index < 0 || index > line.Len() {
		return nil, fmt.Errorf("%w: %d on line %s", ErrIndexOutOfRange, index, line.ID())
	}
	return perform(lineState{line: line, jobs: slices.Insert(slices.Clone(line.Jobs()), index, job)})
}

// Unassign removes job from its line.
func Unassign(job *core.Job) (*Move, error) {
	from, i, err := position(job)
	if err != nil {
		return nil, err
	}
	return perform(lineState{line: from, jobs: slices.Delete(slices.Clone(from.Jobs()), i, i+1)})
}

// Relocate moves an assigned job to index on line, which may be its own
// line. The index counts positions with the job already taken out.
func Relocate(job *core.Job, line *core.Line, index int) (*Move, error) {
	from, i, err := position(job)
	if err != nil {
		return nil, err
	}
	rest := slices.Delete(slices.Clone(from.Jobs()), i, i+1)

	if line == from {
		if index < 0 || index > len(rest) {
			return nil, fmt.Errorf("%w: %d on line %s", ErrIndexOutOfRange, index, line.ID())
		}
		return perform(lineState{line: from, jobs: slices.Insert(rest, index, job)})
	}
	if index < 0 || index > line.Len() {
		return nil, fmt.Errorf("%w: %d on line %s", ErrIndexOutOfRange, index, line.ID())
	}
	return perform(
		lineState{line: from, jobs: rest},
		lineState{line: line, jobs: slices.Insert(slices.Clone(line.Jobs()), index, job)},
	)
}

// Swap exchanges the positions of two assigned jobs, on one line or two.
func Swap(a, b *core.Job) (*Move, error) {
	if a == b {
		return nil, ErrSameJob
	}
	la, ia, err := position(a)
	if err != nil {
		return nil, err
	}
	lb, ib, err := position(b)
	if err != nil {
		return nil, err
	}

	if la == lb {
		jobs := slices.Clone(la.Jobs())
		jobs[ia], jobs[ib] = jobs[ib], jobs[ia]
		return perform(lineState{line: la, jobs: jobs})
	}
	ja := slices.Clone(la.Jobs())
	jb := slices.Clone(lb.Jobs())
	ja[ia], jb[ib] = b, a
	return perform(lineState{line: la, jobs: ja}, lineState{line: lb, jobs: jb})
}

// Reverse reverses the chain segment [from, to] of line (2-opt).
func Reverse(line *core.Line, from, to int) (*Move, error) {
	if from < 0 || to >= line.Len() || from >= to {
		return nil, fmt.Errorf("%w: [%d, %d] on line %s", ErrIndexOutOfRange, from, to, line.ID())
	}
	jobs := slices.Clone(line.Jobs())
	for _, j := range jobs[from : to+1] {
		if j.Pinned() {
			return nil, fmt.Errorf("%w: %s", ErrPinned, j.ID())
		}
	}
	slices.Reverse(jobs[from : to+1])
	return perform(lineState{line: line, jobs: jobs})
}

func movable(job *core.Job) error {
	if job == nil {
		return core.ErrNilJob
	}
	if job.Pinned() {
		return fmt.Errorf("%w: %s", ErrPinned, job.ID())
	}
	return nil
}

func position(job *core.Job) (*core.Line, int, error) {
	if err := movable(job); err != nil {
		return nil, 0, err
	}
	l := job.Line()
	if l == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotAssigned, job.ID())
	}
	i := l.IndexOf(job)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: job %s is not in the chain of line %s", core.ErrInconsistentChain, job.ID(), l.ID())
	}
	return l, i, nil
}

// perform applies the target chains, reverting them when propagation fails.
func perform(after ...lineState) (*Move, error) {
	before := make([]lineState, len(after))
	for i, s := range after {
		before[i] = lineState{line: s.line, jobs: slices.Clone(s.line.Jobs())}
	}
	if err := apply(after); err != nil {
		if rerr := apply(before); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}
	return &Move{before: before, after: after}, nil
}

// apply sets every line to its target chain and propagates each job whose
// line or predecessor changed.
func apply(states []lineState) error {
	target := make(map[*core.Job]*core.Line)
	for _, s := range states {
		for _, j := range s.jobs {
			if _, dup := target[j]; dup {
				return fmt.Errorf("%w: job %s targeted twice", core.ErrInconsistentChain, j.ID())
			}
			target[j] = s.line
			if cur := j.Line(); cur != nil && !touches(states, cur) {
				return fmt.Errorf("%w: %s is on line %s", core.ErrJobAssigned, j.ID(), cur.ID())
			}
		}
	}

	heads := make(map[*core.Job]struct{})
	var loose []*core.Job
	collect := func(r core.Relink) {
		for _, h := range r.Heads {
			heads[h] = struct{}{}
		}
		loose = append(loose, r.Detached...)
	}

	// jobs bound for another line leave their current one first
	for _, s := range states {
		cur := s.line.Jobs()
		keep := make([]*core.Job, 0, len(cur))
		for _, j := range cur {
			if t, ok := target[j]; !ok || t == s.line {
				keep = append(keep, j)
			}
		}
		if len(keep) == len(cur) {
			continue
		}
		r, err := s.line.SetJobs(keep)
		if err != nil {
			return err
		}
		collect(r)
	}
	for _, s := range states {
		r, err := s.line.SetJobs(s.jobs)
		if err != nil {
			return err
		}
		collect(r)
	}

	for _, j := range loose {
		if j.Line() == nil {
			if _, err := core.Propagate(j); err != nil {
				return err
			}
		}
	}
	for _, s := range states {
		for _, j := range s.line.Jobs() {
			if _, ok := heads[j]; !ok {
				continue
			}
			if _, err := core.Propagate(j); err != nil {
				return err
			}
		}
	}
	return nil
}

func touches(states []lineState, l *core.Line) bool {
	for _, s := range states {
		if s.line == l {
			return true
		}
	}
	return false
}
