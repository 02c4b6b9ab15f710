package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/packaging-lines/pkg/schedule"
)

func TestNewLine(t *testing.T) {
	l, err := NewLine("L1", t0, WithLineName("Filler 1"))
	require.NoError(t, err)

	assert.Equal(t, "L1", l.ID())
	assert.Equal(t, "Filler 1", l.Name())
	assert.Equal(t, "L1", l.String())
	assert.Equal(t, t0, l.StartDateTime())
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Head())
}

func TestNewLine_InvalidID(t *testing.T) {
	_, err := NewLine(" ", t0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNewLine_AvailableFrom(t *testing.T) {
	friday := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
	l, err := NewLine("L1", time.Time{}, AvailableFrom(schedule.Cron("0 6 * * 1-5"), friday))
	require.NoError(t, err)

	// next weekday shift start is Monday 06:00
	assert.Equal(t, time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC), l.StartDateTime())
}

func TestLine_SetJobs_Links(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	a := newTestJob(t, "A", p, time.Hour)
	b := newTestJob(t, "B", p, time.Hour)
	c := newTestJob(t, "C", p, time.Hour)

	r, err := l.SetJobs([]*Job{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []*Job{a, b, c}, r.Heads)
	assert.Empty(t, r.Detached)

	assert.Equal(t, []*Job{a, b, c}, l.Jobs())
	assert.Same(t, a, l.Head())
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 1, l.IndexOf(b))

	assert.Same(t, l, b.Line())
	assert.Nil(t, a.PreviousJob())
	assert.Same(t, b, a.NextJob())
	assert.Same(t, a, b.PreviousJob())
	assert.Same(t, c, b.NextJob())
	assert.Nil(t, c.NextJob())
}

func TestLine_SetJobs_ReportsOnlyChangedHeads(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	a := newTestJob(t, "A", p, time.Hour)
	b := newTestJob(t, "B", p, time.Hour)
	c := newTestJob(t, "C", p, time.Hour)
	d := newTestJob(t, "D", p, time.Hour)
	chainJobs(t, l, a, b, c, d)

	// swap B and C
	r, err := l.SetJobs([]*Job{a, c, b, d})
	require.NoError(t, err)
	assert.Equal(t, []*Job{c, b, d}, r.Heads)
	assert.Empty(t, r.Detached)
}

func TestLine_SetJobs_DetachesDroppedJobs(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	a := newTestJob(t, "A", p, time.Hour)
	b := newTestJob(t, "B", p, time.Hour)
	c := newTestJob(t, "C", p, time.Hour)
	chainJobs(t, l, a, b, c)

	r, err := l.SetJobs([]*Job{a, c})
	require.NoError(t, err)
	assert.Equal(t, []*Job{c}, r.Heads)
	assert.Equal(t, []*Job{b}, r.Detached)

	assert.Nil(t, b.Line())
	assert.Nil(t, b.PreviousJob())
	assert.Nil(t, b.NextJob())
	assert.True(t, b.Scheduled(), "timing is cleared by Propagate, not SetJobs")
	assert.Equal(t, -1, l.IndexOf(b))
}

func TestLine_SetJobs_CopiesInput(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	a := newTestJob(t, "A", p, time.Hour)
	b := newTestJob(t, "B", p, time.Hour)

	in := []*Job{a, b}
	_, err := l.SetJobs(in)
	require.NoError(t, err)
	in[0] = b

	assert.Same(t, a, l.Head())
}

func TestLine_SetJobs_RejectsDuplicates(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	a := newTestJob(t, "A", p, time.Hour)

	_, err := l.SetJobs([]*Job{a, a})
	assert.ErrorIs(t, err, ErrInconsistentChain)
	assert.Nil(t, a.Line(), "nothing changes on error")
}

func TestLine_SetJobs_RejectsJobOnOtherLine(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	m := newTestLine(t, "M", t0)
	a := newTestJob(t, "A", p, time.Hour)
	b := newTestJob(t, "B", p, time.Hour)
	chainJobs(t, m, a)

	_, err := l.SetJobs([]*Job{b, a})
	assert.ErrorIs(t, err, ErrJobAssigned)
	assert.Nil(t, b.Line())
	assert.Same(t, m, a.Line())
}

func TestLine_SetJobs_RejectsNil(t *testing.T) {
	l := newTestLine(t, "L", t0)
	_, err := l.SetJobs([]*Job{nil})
	assert.ErrorIs(t, err, ErrNilJob)
}

func TestLine_SetLineMovesMembership(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	m := newTestLine(t, "M", t0)
	a := newTestJob(t, "A", p, time.Hour)

	a.SetLine(l)
	assert.Same(t, a, l.Head())
	assert.Equal(t, 0, l.IndexOf(a))

	a.SetLine(m)
	assert.Nil(t, l.Head())
	assert.Equal(t, 0, l.Len())
	assert.Same(t, a, m.Head())

	a.SetLine(nil)
	assert.Equal(t, 0, m.Len())
	assert.NoError(t, m.Check())
}

func TestLine_Check(t *testing.T) {
	tests := []struct {
		name  string
		link  func(a, b, u *Job)
		wants string
	}{
		{
			name: "two heads",
			link: func(a, b, u *Job) {
				a.SetNextJob(nil)
				b.SetPreviousJob(nil)
			},
			wants: "job B: assigned to line L but not reachable from head A",
		},
		{
			name: "no head",
			link: func(a, b, u *Job) {
				a.SetPreviousJob(b)
				b.SetNextJob(a)
			},
			wants: "line L: every member has a previous job",
		},
		{
			name:  "tail links back to head",
			link:  func(a, b, u *Job) { b.SetNextJob(a) },
			wants: "job A: previous job is <nil>, expected B",
		},
		{
			name:  "successor off the line",
			link:  func(a, b, u *Job) { b.SetNextJob(u) },
			wants: `job U: successor of B is on line ""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProduct(t, "P")
			l := newTestLine(t, "L", t0)
			a := newTestJob(t, "A", p, time.Hour)
			b := newTestJob(t, "B", p, time.Hour)
			u := newTestJob(t, "U", p, time.Hour)
			chainJobs(t, l, a, b)
			require.NoError(t, l.Check())

			tt.link(a, b, u)
			err := l.Check()
			require.ErrorIs(t, err, ErrInconsistentChain)
			assert.Contains(t, err.Error(), tt.wants)
			assert.LessOrEqual(t, len(l.Jobs()), 2)
		})
	}
}

func TestLine_SetJobs_RepairsBrokenChain(t *testing.T) {
	p := newTestProduct(t, "P")
	l := newTestLine(t, "L", t0)
	a := newTestJob(t, "A", p, time.Hour)
	b := newTestJob(t, "B", p, time.Hour)
	c := newTestJob(t, "C", p, time.Hour)
	chainJobs(t, l, a, b, c)
	a.SetNextJob(nil)

	r, err := l.SetJobs([]*Job{c, a})
	require.NoError(t, err)
	assert.Equal(t, []*Job{b}, r.Detached, "unreachable members are detached too")
	assert.Equal(t, []*Job{c, a}, l.Jobs())
	assert.NoError(t, l.Check())
}
