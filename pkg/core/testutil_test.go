package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// t0 is the start of every test line unless stated otherwise.
var t0 = time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)

func newTestProduct(t *testing.T, name string, opts ...ProductOption) *Product {
	t.Helper()
	p, err := NewProduct(name, opts...)
	require.NoError(t, err)
	return p
}

func newTestLine(t *testing.T, id string, start time.Time) *Line {
	t.Helper()
	l, err := NewLine(id, start)
	require.NoError(t, err)
	return l
}

func newTestJob(t *testing.T, id string, p *Product, d time.Duration, opts ...JobOption) *Job {
	t.Helper()
	j, err := NewJob(id, "job "+id, p, append([]JobOption{WithDuration(d)}, opts...)...)
	require.NoError(t, err)
	return j
}

// chainJobs puts jobs on l in order and propagates every reported head.
func chainJobs(t *testing.T, l *Line, jobs ...*Job) {
	t.Helper()
	r, err := l.SetJobs(jobs)
	require.NoError(t, err)
	for _, j := range r.Detached {
		_, err := Propagate(j)
		require.NoError(t, err)
	}
	for _, j := range r.Heads {
		_, err := Propagate(j)
		require.NoError(t, err)
	}
}

func timingOf(j *Job) Timing {
	t, _ := j.Timing()
	return t
}
