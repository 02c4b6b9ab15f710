package core

import "time"

// Result describes one Propagate call.
type Result struct {
	// Steps is the number of jobs recomputed, including the one found
	// unchanged when Fixpoint is set.
	Steps int

	// Fixpoint is set when propagation stopped on a job whose timing did
	// not change.
	Fixpoint bool

	// Cleared is set when the job was unassigned and its timing was removed.
	Cleared bool
}

type pendingTiming struct {
	job    *Job
	timing Timing
}

// Propagate recomputes the timing of job after its line or previous job
// changed, and cascades forward through the chain until a job's timing is
// unchanged or the chain ends.
//
// An unassigned job only has its timing cleared; the job that took its old
// place must be propagated separately. The whole segment is computed before
// anything is written, so on error no timestamp changes.
//
// Propagate keeps no state between calls. It is safe to run concurrently on
// plans that share no Line or Job.
func Propagate(job *Job) (Result, error) {
	if job == nil {
		return Result{}, ErrNilJob
	}
	line := job.line
	if line == nil {
		if !job.scheduled {
			return Result{}, nil
		}
		job.timing = Timing{}
		job.scheduled = false
		return Result{Steps: 1, Cleared: true}, nil
	}

	if line.start.IsZero() {
		return Result{}, &ChainError{LineID: line.id, Reason: "cannot schedule " + job.id, Err: ErrMissingLineContext}
	}
	if prev := job.previous; prev != nil {
		switch {
		case prev.next != job:
			return Result{}, inconsistent(job, "previous job %s does not link back", prev.id)
		case prev.line != line:
			return Result{}, inconsistent(job, "previous job %s is on line %q", prev.id, lineID(prev.line))
		case !prev.scheduled:
			return Result{}, inconsistent(job, "previous job %s has no timing", prev.id)
		}
	}

	var buf [16]pendingTiming
	pending := buf[:0]
	var res Result

	slow := job
	cur := job
	for {
		var startCleaning time.Time
		switch {
		case cur.previous == nil:
			startCleaning = line.start
		case len(pending) == 0:
			startCleaning = cur.previous.timing.End
		default:
			startCleaning = pending[len(pending)-1].timing.End
		}

		t, err := timingAfter(cur, cur.previous, startCleaning)
		if err != nil {
			return Result{}, err
		}
		res.Steps++
		if cur.scheduled && cur.timing.Equal(t) {
			res.Fixpoint = true
			break
		}
		pending = append(pending, pendingTiming{job: cur, timing: t})

		next := cur.next
		if next == nil {
			break
		}
		if next.previous != cur {
			return Result{}, inconsistent(next, "previous job is %s, expected %s", idOf(next.previous), cur.id)
		}
		if next.line != line {
			return Result{}, inconsistent(next, "successor of %s is on line %q", cur.id, lineID(next.line))
		}
		// tortoise moves every other step; meeting the hare means a cycle
		if res.Steps%2 == 0 {
			slow = slow.next
		}
		if next == slow {
			return Result{}, inconsistent(next, "cycle in chain of line %s", line.id)
		}
		cur = next
	}

	for _, p := range pending {
		p.job.timing = p.timing
		p.job.scheduled = true
	}
	return res, nil
}

// PropagateLine propagates from the head of l. Use it after SetStartDateTime.
// A line whose members do not form one chain is an error.
func PropagateLine(l *Line) (Result, error) {
	if err := l.Check(); err != nil {
		return Result{}, err
	}
	head := l.Head()
	if head == nil {
		return Result{}, nil
	}
	return Propagate(head)
}

// timingAfter derives a job's timing from its predecessor and the moment
// cleanup can start.
func timingAfter(job, previous *Job, startCleaning time.Time) (Timing, error) {
	d, err := job.Duration()
	if err != nil {
		return Timing{}, err
	}
	startProduction := startCleaning.Add(job.product.CleanupDuration(productOf(previous)))
	return Timing{
		StartCleaning:   startCleaning,
		StartProduction: startProduction,
		End:             startProduction.Add(d),
	}, nil
}

func productOf(j *Job) *Product {
	if j == nil {
		return nil
	}
	return j.product
}

func idOf(j *Job) string {
	if j == nil {
		return "<nil>"
	}
	return j.id
}
