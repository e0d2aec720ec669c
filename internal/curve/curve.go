package curve

import (
	"fmt"
	"sort"
)

// ControlPoint is one knot of a piecewise curve. The easing applies to
// the segment starting at this point and running to the next one.
type ControlPoint struct {
	Time   float64
	Value  float64
	Easing Easing
}

// Sequence is a time-sorted run of control points. Two points at the
// same time encode an instantaneous jump to the later point's value.
type Sequence []ControlPoint

// Constant is the one-point sequence holding v forever.
func Constant(v float64) Sequence {
	return Sequence{{Value: v}}
}

// Eval returns the curve value at time t. Before the first point the
// first value is returned, after the last the last value; there is no
// extrapolation.
func (s Sequence) Eval(t float64) float64 {
	if len(s) == 0 {
		return 0
	}
	if t <= s[0].Time {
		return s[0].Value
	}
	if t >= s[len(s)-1].Time {
		return s[len(s)-1].Value
	}
	// First point strictly after t; its predecessor starts the segment.
	i := sort.Search(len(s), func(i int) bool { return s[i].Time > t })
	p, q := s[i-1], s[i]
	if q.Time == p.Time {
		return q.Value
	}
	k := p.Easing.At((t - p.Time) / (q.Time - p.Time))
	return p.Value + k*(q.Value-p.Value)
}

// integration steps for eased (non-linear) segments
const integralSteps = 16

func segmentIntegral(p, q ControlPoint, from, to float64) float64 {
	if to <= from {
		return 0
	}
	if p.Easing == Linear || p.Value == q.Value {
		// trapezoid is exact
		a := p.Value + (from-p.Time)/(q.Time-p.Time)*(q.Value-p.Value)
		b := p.Value + (to-p.Time)/(q.Time-p.Time)*(q.Value-p.Value)
		return (a + b) / 2 * (to - from)
	}
	// fixed-step midpoint rule, deterministic for replays
	h := (to - from) / integralSteps
	sum := 0.0
	for i := 0; i < integralSteps; i++ {
		m := from + h*(float64(i)+0.5)
		k := p.Easing.At((m - p.Time) / (q.Time - p.Time))
		sum += p.Value + k*(q.Value-p.Value)
	}
	return sum * h
}

// Integral returns the signed area under the curve between from and to.
// Used to turn a speed curve into travel distance.
func (s Sequence) Integral(from, to float64) float64 {
	if len(s) == 0 {
		return 0
	}
	if to < from {
		return -s.Integral(to, from)
	}
	total := 0.0
	first, last := s[0], s[len(s)-1]
	if from < first.Time {
		hi := first.Time
		if to < hi {
			hi = to
		}
		total += first.Value * (hi - from)
	}
	if to > last.Time {
		lo := last.Time
		if from > lo {
			lo = from
		}
		total += last.Value * (to - lo)
	}
	for i := 0; i+1 < len(s); i++ {
		p, q := s[i], s[i+1]
		if q.Time <= from || p.Time >= to || q.Time == p.Time {
			continue
		}
		lo, hi := p.Time, q.Time
		if from > lo {
			lo = from
		}
		if to < hi {
			hi = to
		}
		total += segmentIntegral(p, q, lo, hi)
	}
	return total
}

// Validate checks the sortedness and coverage invariant: non-empty,
// times non-decreasing, first point at or before start.
func (s Sequence) Validate(start float64) error {
	if len(s) == 0 {
		return fmt.Errorf("empty control point sequence")
	}
	if s[0].Time > start {
		return fmt.Errorf("first control point at %v, after start %v", s[0].Time, start)
	}
	for i := range s {
		if i > 0 && s[i].Time < s[i-1].Time {
			return fmt.Errorf("control point %d at %v before predecessor at %v", i, s[i].Time, s[i-1].Time)
		}
		if !s[i].Easing.Valid() {
			return fmt.Errorf("control point %d has unknown easing %d", i, s[i].Easing)
		}
	}
	return nil
}

// Cover prepends a clamp point so the sequence starts at or before t.
func (s Sequence) Cover(t float64) Sequence {
	if len(s) == 0 || s[0].Time <= t {
		return s
	}
	return append(Sequence{{Time: t, Value: s[0].Value}}, s...)
}

// Sort orders the points by time, keeping the relative order of points
// that share a time so authored jumps survive.
func (s Sequence) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time < s[j].Time })
}
