package moves

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/packaging-lines/pkg/core"
)

var t0 = time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)

type fixture struct {
	plan *core.Plan
}

// newFixture builds lines L1..L<lines> with jobs spread round-robin and a
// few unassigned jobs. Changeovers differ per product pair so that order
// matters.
func newFixture(t *testing.T, lines, jobs, unassigned int) *fixture {
	t.Helper()
	names := []string{"soup", "sauce", "juice", "puree"}
	products := make([]*core.Product, len(names))
	for i, n := range names {
		var opts []core.ProductOption
		for k, prev := range names {
			if k != i {
				opts = append(opts, core.WithCleanup(prev, time.Duration(10*(i+1)+k)*time.Minute))
			}
		}
		opts = append(opts, core.WithStartup(time.Duration(i)*5*time.Minute))
		p, err := core.NewProduct(n, opts...)
		require.NoError(t, err)
		products[i] = p
	}

	ls := make([]*core.Line, lines)
	chains := make([][]*core.Job, lines)
	for i := range ls {
		l, err := core.NewLine(fmt.Sprintf("L%d", i+1), t0.Add(time.Duration(i)*30*time.Minute))
		require.NoError(t, err)
		ls[i] = l
	}
	var all []*core.Job
	for i := 0; i < jobs+unassigned; i++ {
		j, err := core.NewJob(fmt.Sprintf("J%02d", i), "", products[i%len(products)],
			core.WithDuration(time.Duration(30+15*(i%5))*time.Minute))
		require.NoError(t, err)
		all = append(all, j)
		if i < jobs {
			chains[i%lines] = append(chains[i%lines], j)
		}
	}
	for i, l := range ls {
		r, err := l.SetJobs(chains[i])
		require.NoError(t, err)
		for _, h := range r.Heads {
			_, err := core.Propagate(h)
			require.NoError(t, err)
		}
	}
	plan, err := core.NewPlan(ls, all)
	require.NoError(t, err)
	require.NoError(t, plan.Verify())
	return &fixture{plan: plan}
}

type jobState struct {
	line   string
	index  int
	timing core.Timing
	ok     bool
}

type snapshot map[string]jobState

func takeSnapshot(p *core.Plan) snapshot {
	s := make(snapshot)
	for _, j := range p.Jobs() {
		timing, ok := j.Timing()
		line, index := "", -1
		if l := j.Line(); l != nil {
			line, index = l.ID(), l.IndexOf(j)
		}
		s[j.ID()] = jobState{line: line, index: index, timing: timing, ok: ok}
	}
	return s
}

func requireSameSnapshot(t *testing.T, want, got snapshot) {
	t.Helper()
	require.Len(t, got, len(want))
	for id, w := range want {
		g := got[id]
		assert.Equal(t, w.line, g.line, "line of %s", id)
		assert.Equal(t, w.index, g.index, "index of %s", id)
		assert.Equal(t, w.ok, g.ok, "scheduled %s", id)
		assert.True(t, w.timing.Equal(g.timing), "timing of %s: want %+v got %+v", id, w.timing, g.timing)
	}
}

func TestAssign(t *testing.T) {
	f := newFixture(t, 2, 4, 1)
	l1 := f.plan.Line("L1")
	u := f.plan.Job("J04")
	before := takeSnapshot(f.plan)

	m, err := Assign(u, l1, 1)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())

	assert.Same(t, l1, u.Line())
	assert.Equal(t, 1, l1.IndexOf(u))
	assert.Equal(t, l1.Jobs()[0].EndDateTime(), u.StartCleaningDateTime())
	assert.Equal(t, []*core.Line{l1}, m.Lines())

	require.NoError(t, m.Undo())
	require.NoError(t, f.plan.Verify())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestAssign_Errors(t *testing.T) {
	f := newFixture(t, 2, 4, 1)
	l1 := f.plan.Line("L1")

	_, err := Assign(f.plan.Job("J00"), l1, 0)
	assert.ErrorIs(t, err, core.ErrJobAssigned)

	_, err = Assign(f.plan.Job("J04"), l1, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	f.plan.Job("J04").SetPinned(true)
	_, err = Assign(f.plan.Job("J04"), l1, 0)
	assert.ErrorIs(t, err, ErrPinned)

	_, err = Assign(nil, l1, 0)
	assert.ErrorIs(t, err, core.ErrNilJob)
}

func TestUnassign(t *testing.T) {
	f := newFixture(t, 1, 3, 0)
	l := f.plan.Line("L1")
	head := f.plan.Job("J00")
	second := f.plan.Job("J01")
	before := takeSnapshot(f.plan)

	m, err := Unassign(head)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())

	assert.Nil(t, head.Line())
	assert.False(t, head.Scheduled())
	assert.Same(t, second, l.Head())
	assert.Equal(t, l.StartDateTime(), second.StartCleaningDateTime())
	// first on the line now pays the startup cost instead of a changeover
	assert.Equal(t, second.Product().CleanupDuration(nil), second.StartProductionDateTime().Sub(second.StartCleaningDateTime()))

	require.NoError(t, m.Undo())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestUnassign_NotAssigned(t *testing.T) {
	f := newFixture(t, 1, 1, 1)
	_, err := Unassign(f.plan.Job("J01"))
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestRelocate_SameLine(t *testing.T) {
	f := newFixture(t, 1, 4, 0)
	l := f.plan.Line("L1")
	j := f.plan.Job("J00")
	before := takeSnapshot(f.plan)

	m, err := Relocate(j, l, 3)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())
	assert.Equal(t, 3, l.IndexOf(j))
	assert.Equal(t, "J01", l.Head().ID())

	require.NoError(t, m.Undo())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestRelocate_OtherLine(t *testing.T) {
	f := newFixture(t, 2, 6, 0)
	l1, l2 := f.plan.Line("L1"), f.plan.Line("L2")
	j := f.plan.Job("J02") // second on L1
	before := takeSnapshot(f.plan)

	m, err := Relocate(j, l2, 0)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())

	assert.Same(t, l2, j.Line())
	assert.Same(t, j, l2.Head())
	assert.Equal(t, l2.StartDateTime(), j.StartCleaningDateTime())
	assert.Equal(t, 2, l1.Len())
	assert.Equal(t, 4, l2.Len())

	require.NoError(t, m.Undo())
	require.NoError(t, f.plan.Verify())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestRelocate_IndexOutOfRange(t *testing.T) {
	f := newFixture(t, 2, 4, 0)
	_, err := Relocate(f.plan.Job("J00"), f.plan.Line("L1"), 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = Relocate(f.plan.Job("J00"), f.plan.Line("L2"), 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSwap_SameLine(t *testing.T) {
	f := newFixture(t, 1, 5, 0)
	l := f.plan.Line("L1")
	a, b := f.plan.Job("J01"), f.plan.Job("J03")
	before := takeSnapshot(f.plan)

	m, err := Swap(a, b)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())
	assert.Equal(t, 3, l.IndexOf(a))
	assert.Equal(t, 1, l.IndexOf(b))

	require.NoError(t, m.Undo())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestSwap_AcrossLines(t *testing.T) {
	f := newFixture(t, 2, 6, 0)
	a, b := f.plan.Job("J00"), f.plan.Job("J05")
	before := takeSnapshot(f.plan)

	m, err := Swap(a, b)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())
	assert.Equal(t, "L2", a.Line().ID())
	assert.Equal(t, "L1", b.Line().ID())

	require.NoError(t, m.Undo())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestSwap_Errors(t *testing.T) {
	f := newFixture(t, 1, 3, 1)
	a := f.plan.Job("J00")

	_, err := Swap(a, a)
	assert.ErrorIs(t, err, ErrSameJob)

	_, err = Swap(a, f.plan.Job("J03"))
	assert.ErrorIs(t, err, ErrNotAssigned)

	f.plan.Job("J01").SetPinned(true)
	_, err = Swap(a, f.plan.Job("J01"))
	assert.ErrorIs(t, err, ErrPinned)
}

func TestReverse(t *testing.T) {
	f := newFixture(t, 1, 6, 0)
	l := f.plan.Line("L1")
	before := takeSnapshot(f.plan)

	m, err := Reverse(l, 1, 4)
	require.NoError(t, err)
	require.NoError(t, f.plan.Verify())

	ids := make([]string, 0, l.Len())
	for _, j := range l.Jobs() {
		ids = append(ids, j.ID())
	}
	assert.Equal(t, []string{"J00", "J04", "J03", "J02", "J01", "J05"}, ids)

	require.NoError(t, m.Undo())
	requireSameSnapshot(t, before, takeSnapshot(f.plan))
}

func TestReverse_Errors(t *testing.T) {
	f := newFixture(t, 1, 4, 0)
	l := f.plan.Line("L1")

	_, err := Reverse(l, 2, 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Reverse(l, 0, 4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	f.plan.Job("J02").SetPinned(true)
	_, err = Reverse(l, 1, 3)
	assert.ErrorIs(t, err, ErrPinned)
}

func TestMove_UndoTwice(t *testing.T) {
	f := newFixture(t, 1, 2, 1)
	m, err := Assign(f.plan.Job("J02"), f.plan.Line("L1"), 0)
	require.NoError(t, err)

	require.NoError(t, m.Undo())
	assert.ErrorIs(t, m.Undo(), ErrAlreadyUndone)
}

func TestMove_PropagationFailureReverts(t *testing.T) {
	p, err := core.NewProduct("P")
	require.NoError(t, err)
	broken, err := core.NewLine("broken", time.Time{})
	require.NoError(t, err)
	j, err := core.NewJob("J", "", p, core.WithDuration(time.Hour))
	require.NoError(t, err)

	m, err := Assign(j, broken, 0)
	require.ErrorIs(t, err, core.ErrMissingLineContext)
	assert.Nil(t, m)
	assert.Nil(t, j.Line())
	assert.Equal(t, 0, broken.Len())
	assert.False(t, j.Scheduled())
}

func TestMove_PinnedNeighborsStillShift(t *testing.T) {
	f := newFixture(t, 1, 3, 1)
	pinned := f.plan.Job("J02")
	pinned.SetPinned(true)
	was := pinned.StartCleaningDateTime()

	_, err := Assign(f.plan.Job("J03"), f.plan.Line("L1"), 0)
	require.NoError(t, err)

	assert.True(t, pinned.StartCleaningDateTime().After(was))
	require.NoError(t, f.plan.Verify())
}

// TestRandomMoves applies random moves, checks every invariant after each,
// then undoes them all and expects the original plan back.
func TestRandomMoves(t *testing.T) {
	f := newFixture(t, 3, 18, 4)
	rng := rand.New(rand.NewSource(42))
	original := takeSnapshot(f.plan)
	jobs := f.plan.Jobs()
	lines := f.plan.Lines()

	var applied []*Move
	for i := 0; i < 500; i++ {
		var m *Move
		var err error
		j := jobs[rng.Intn(len(jobs))]
		l := lines[rng.Intn(len(lines))]

		switch rng.Intn(5) {
		case 0:
			if j.Line() == nil {
				m, err = Assign(j, l, rng.Intn(l.Len()+1))
			}
		case 1:
			if j.Line() != nil {
				m, err = Unassign(j)
			}
		case 2:
			if j.Line() != nil {
				n := l.Len()
				if l == j.Line() {
					n--
				}
				m, err = Relocate(j, l, rng.Intn(n+1))
			}
		case 3:
			k := jobs[rng.Intn(len(jobs))]
			if j != k && j.Line() != nil && k.Line() != nil {
				m, err = Swap(j, k)
			}
		case 4:
			if l.Len() >= 2 {
				from := rng.Intn(l.Len() - 1)
				to := from + 1 + rng.Intn(l.Len()-from-1)
				m, err = Reverse(l, from, to)
			}
		}
		require.NoError(t, err, "step %d", i)
		if m == nil {
			continue
		}
		applied = append(applied, m)
		require.NoError(t, f.plan.Verify(), "step %d", i)
		for _, job := range jobs {
			require.Equal(t, job.Line() != nil, job.Scheduled(), "assignment invariant for %s", job.ID())
		}
	}
	require.NotEmpty(t, applied)

	for i := len(applied) - 1; i >= 0; i-- {
		require.NoError(t, applied[i].Undo())
	}
	require.NoError(t, f.plan.Verify())
	requireSameSnapshot(t, original, takeSnapshot(f.plan))
}

func TestSwap_ChainBuiltFromLinks(t *testing.T) {
	p, err := core.NewProduct("P")
	require.NoError(t, err)
	l, err := core.NewLine("L", t0)
	require.NoError(t, err)
	a, err := core.NewJob("A", "", p, core.WithDuration(time.Hour))
	require.NoError(t, err)
	b, err := core.NewJob("B", "", p, core.WithDuration(2*time.Hour))
	require.NoError(t, err)

	a.SetLine(l)
	b.SetLine(l)
	a.SetNextJob(b)
	b.SetPreviousJob(a)
	_, err = core.Propagate(a)
	require.NoError(t, err)

	m, err := Swap(a, b)
	require.NoError(t, err)
	assert.Equal(t, []*core.Job{b, a}, l.Jobs())
	assert.Equal(t, t0.Add(3*time.Hour), a.EndDateTime())

	require.NoError(t, m.Undo())
	assert.Equal(t, []*core.Job{a, b}, l.Jobs())
	assert.Equal(t, t0.Add(3*time.Hour), b.EndDateTime())
	assert.Same(t, a, b.PreviousJob())
}
