package codec

// Progress is the milestone state of one transform pass. It is a value: Advance
// returns the next state instead of mutating the receiver, so a pass can be
// replayed or inspected at any point.
//
// A pass over total bytes with steps milestones places checkpoints at
// max(1, total/steps)*i for i in 0..steps. The checkpoint at steps*(spacing)
// marks the end of the range and never fires, so at most steps milestones
// fire and the last one reports 100.
type Progress struct {
	spacing int
	steps   int
	fired   int
}

// NewProgress prepares milestone tracking for a pass over total bytes.
func NewProgress(total, steps int) Progress {
	if steps < 1 {
		steps = 1
	}
	spacing := total / steps
	if spacing < 1 {
		spacing = 1
	}
	return Progress{spacing: spacing, steps: steps}
}

// Checkpoints returns the steps+1 checkpoint positions in increasing order.
func (p Progress) Checkpoints() []int {
	points := make([]int, p.steps+1)
	for i := range points {
		points[i] = p.spacing * i
	}
	return points
}

// Advance reports whether processing byte index reaches the next unconsumed
// checkpoint. When it does, the returned state has consumed that checkpoint and
// percent is the share of milestones fired so far. Calling Advance again with
// the same index fires the following checkpoint if index has reached it too.
func (p Progress) Advance(index int) (next Progress, percent int, fired bool) {
	if p.Done() || index < p.spacing*p.fired {
		return p, 0, false
	}
	p.fired++
	return p, p.Percent(), true
}

// Fired returns how many milestones have fired.
func (p Progress) Fired() int {
	return p.fired
}

// Percent returns the percentage reported by the latest milestone.
func (p Progress) Percent() int {
	return p.fired * 100 / p.steps
}

// Done reports whether every milestone has fired.
func (p Progress) Done() bool {
	return p.fired >= p.steps
}
