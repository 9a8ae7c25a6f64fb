package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collectMilestones(total, steps int) []int {
	p := NewProgress(total, steps)
	var out []int
	for i := 0; i < total; i++ {
		var (
			percent int
			fired   bool
		)
		p, percent, fired = p.Advance(i)
		if fired {
			out = append(out, percent)
		}
	}
	return out
}

func TestProgress_Checkpoints(t *testing.T) {
	assert.Equal(t, []int{0, 25, 50, 75, 100}, NewProgress(100, 4).Checkpoints())
	assert.Equal(t, []int{0, 3, 6, 9}, NewProgress(10, 3).Checkpoints())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, NewProgress(2, 5).Checkpoints(), "spacing floors to 1")
}

func TestProgress_Monotonic(t *testing.T) {
	testCases := []struct {
		name  string
		total int
		steps int
	}{
		{name: "evenly divisible", total: 100, steps: 20},
		{name: "remainder", total: 107, steps: 20},
		{name: "total equals steps", total: 20, steps: 20},
		{name: "one step", total: 9, steps: 1},
		{name: "max steps", total: 1000, steps: MaxProgressSteps},
		{name: "prime total", total: 9973, steps: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := collectMilestones(tc.total, tc.steps)

			assert.Len(t, got, tc.steps)
			for i := 1; i < len(got); i++ {
				assert.Greater(t, got[i], got[i-1])
			}
			assert.Equal(t, 100, got[len(got)-1])
		})
	}
}

func TestProgress_ShortInput(t *testing.T) {
	got := collectMilestones(3, 20)

	// One milestone per byte when there are fewer bytes than steps.
	assert.Equal(t, []int{5, 10, 15}, got)
}

func TestProgress_AdvanceCatchesUpAtSameIndex(t *testing.T) {
	p := NewProgress(4, 10)

	var got []int
	for {
		next, percent, fired := p.Advance(3)
		if !fired {
			break
		}
		got = append(got, percent)
		p = next
	}

	// Checkpoints 0, 1, 2 and 3 are all reached at index 3.
	assert.Equal(t, []int{10, 20, 30, 40}, got)
	assert.Equal(t, 4, p.Fired())
	assert.False(t, p.Done())
}

func TestProgress_ValueSemantics(t *testing.T) {
	p := NewProgress(10, 2)

	next, _, fired := p.Advance(0)

	assert.True(t, fired)
	assert.Equal(t, 0, p.Fired(), "receiver must not change")
	assert.Equal(t, 1, next.Fired())
	assert.Equal(t, 50, next.Percent())
}

func TestProgress_DoneStopsFiring(t *testing.T) {
	p := NewProgress(2, 1)
	p, _, _ = p.Advance(0)

	_, _, fired := p.Advance(1000)

	assert.True(t, p.Done())
	assert.False(t, fired)
}
