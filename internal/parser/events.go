package parser

import (
	"sort"

	"github.com/ChickenPige0n/prpr/internal/curve"
	"github.com/ChickenPige0n/prpr/internal/game"
)

// appendEvent emits the control points for one authored event: an eased
// segment from (t0, v0) to (t1, v1). The previous value is held across
// any gap since the prior event, and a differing start value becomes an
// explicit double point, the model's instantaneous jump.
func appendEvent(seq curve.Sequence, t0, t1, v0, v1 float64, easing curve.Easing) curve.Sequence {
	if n := len(seq); n > 0 {
		last := seq[n-1]
		if t0 > last.Time && v0 != last.Value {
			seq = append(seq, curve.ControlPoint{Time: t0, Value: last.Value})
		}
	}
	seq = append(seq, curve.ControlPoint{Time: t0, Value: v0, Easing: easing})
	if t1 > t0 || v1 != v0 {
		seq = append(seq, curve.ControlPoint{Time: t1, Value: v1})
	}
	return seq
}

// appendStep emits an instantaneous change to v at time t.
func appendStep(seq curve.Sequence, t, v float64) curve.Sequence {
	if n := len(seq); n > 0 && seq[n-1].Value != v {
		seq = append(seq, curve.ControlPoint{Time: t, Value: seq[n-1].Value})
	}
	return append(seq, curve.ControlPoint{Time: t, Value: v})
}

// finish establishes the sortedness/coverage invariant on an adapter's
// raw output, falling back to a constant when the source had no events.
func finish(seq curve.Sequence, def float64) curve.Sequence {
	if len(seq) == 0 {
		return curve.Constant(def)
	}
	seq.Sort()
	return seq.Cover(game.Start)
}

// mergeSum flattens stacked event layers into one sequence by sampling
// the layer sum at the union of every layer's knot times. Jumps inside
// stacked layers degrade to their post-jump value.
func mergeSum(layers []curve.Sequence, def float64) curve.Sequence {
	live := layers[:0]
	for _, l := range layers {
		if len(l) > 0 {
			live = append(live, l)
		}
	}
	if len(live) == 0 {
		return curve.Constant(def)
	}
	if len(live) == 1 {
		return finish(live[0], def)
	}
	times := []float64{}
	for _, l := range live {
		for _, p := range l {
			times = append(times, p.Time)
		}
	}
	sort.Float64s(times)
	merged := curve.Sequence{}
	for i, t := range times {
		if i > 0 && t == times[i-1] {
			continue
		}
		sum := 0.0
		for _, l := range live {
			sum += l.Eval(t)
		}
		merged = append(merged, curve.ControlPoint{Time: t, Value: sum})
	}
	return merged.Cover(game.Start)
}
