package animator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepCount(t *testing.T) {
	cases := []struct {
		name     string
		cur, to  int
		expected int
	}{
		{name: "forward", cur: 3, to: 8, expected: 5},
		{name: "wraps past GO", cur: 35, to: 2, expected: 7},
		{name: "same tile is a lap", cur: 10, to: 10, expected: 40},
		{name: "one behind", cur: 5, to: 4, expected: 39},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StepCount(tc.cur, tc.to))
		})
	}
}

func run(a *Animator, j Job) []StepResult {
	var out []StepResult
	for {
		r := a.Step(j.PlayerID, j.ID)
		out = append(out, r)
		if r.Arrived || r.Stale {
			return out
		}
	}
}

func TestWrapAroundVisitsEveryTile(t *testing.T) {
	a := New()
	steps := run(a, a.Start("p", 35, 2))

	require.Len(t, steps, 7)
	var tiles []int
	for _, s := range steps {
		tiles = append(tiles, s.Index)
	}
	assert.Equal(t, []int{36, 37, 38, 39, 0, 1, 2}, tiles)
	assert.True(t, steps[6].Arrived)
	assert.Equal(t, 0, a.Len())
}

func TestFullLap(t *testing.T) {
	a := New()
	steps := run(a, a.Start("p", 10, 10))
	require.Len(t, steps, 40)
	assert.Equal(t, 10, steps[39].Index)
	for _, s := range steps[:39] {
		assert.False(t, s.Arrived)
	}
}

func TestSupersededJobGoesStale(t *testing.T) {
	a := New()
	old := a.Start("p", 0, 10)
	a.Step("p", old.ID)
	a.Step("p", old.ID)

	// second job starts from wherever the token is shown
	next := a.Start("p", 2, 5)

	assert.True(t, a.Step("p", old.ID).Stale, "old hop must be dropped")

	arrivals := 0
	for _, r := range run(a, next) {
		if r.Arrived {
			arrivals++
			assert.Equal(t, 5, r.Index)
		}
	}
	assert.Equal(t, 1, arrivals)
	assert.True(t, a.Step("p", old.ID).Stale)
}

func TestJobsArePerPlayer(t *testing.T) {
	a := New()
	ja := a.Start("a", 0, 2)
	jb := a.Start("b", 0, 1)

	assert.False(t, a.Step("a", ja.ID).Arrived)
	assert.True(t, a.Step("b", jb.ID).Arrived)
	assert.True(t, a.Step("a", ja.ID).Arrived)
}

func TestCancel(t *testing.T) {
	a := New()
	j := a.Start("p", 0, 3)
	assert.True(t, a.Cancel("p"))
	assert.False(t, a.Cancel("p"))
	assert.True(t, a.Step("p", j.ID).Stale)

	_, ok := a.Active("p")
	assert.False(t, ok)
}
