package game

import "fmt"

// Chart is the unified model every format adapter converges to.
// It is immutable after load; the simulator and the judge share it
// read-only.
type Chart struct {
	Name        string
	Level       string
	Charter     string // presentation only
	Composer    string // presentation only
	Illustrator string // presentation only

	Offset float64 // global time shift aligning audio and notes
	Aspect float64 // intended width / height

	Lines []*Line
}

// Start is the chart-space time the first frame is simulated at.
const Start = 0.0

// Duration returns the time the last note or control point settles.
func (c *Chart) Duration() float64 {
	end := 0.0
	for _, l := range c.Lines {
		for _, n := range l.Notes {
			if n.TimeEnd > end {
				end = n.TimeEnd
			}
		}
		for _, seq := range l.sequences() {
			if len(seq) > 0 && seq[len(seq)-1].Time > end {
				end = seq[len(seq)-1].Time
			}
		}
	}
	return end
}

// NoteCount returns the number of judgable notes.
func (c *Chart) NoteCount() int {
	count := 0
	for _, l := range c.Lines {
		for _, n := range l.Notes {
			if !n.Fake {
				count++
			}
		}
	}
	return count
}

// Validate enforces the model invariants the adapters must establish.
// A chart that fails here never reaches the simulator.
func (c *Chart) Validate() error {
	if len(c.Lines) == 0 {
		return fmt.Errorf("chart has no judge lines")
	}
	for i, l := range c.Lines {
		if err := l.Validate(Start); nil != err {
			return fmt.Errorf("line %d: %w", i, err)
		}
		if l.Parent != NoParent && (l.Parent < 0 || l.Parent >= len(c.Lines)) {
			return fmt.Errorf("line %d attached to invalid line %d", i, l.Parent)
		}
		// attachment chains must terminate
		for p, hops := l.Parent, 0; p >= 0 && p < len(c.Lines); p, hops = c.Lines[p].Parent, hops+1 {
			if hops >= len(c.Lines) {
				return fmt.Errorf("line %d attachment chain is cyclic", i)
			}
		}
		for j, n := range l.Notes {
			if n.Line != i {
				return fmt.Errorf("line %d note %d back-references line %d", i, j, n.Line)
			}
		}
	}
	return nil
}
