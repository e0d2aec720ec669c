// Package judge matches input events, or synthesizes perfect input in
// autoplay, against note timing windows, and owns the combo/score state
// of one play session. It mutates only its own state; the chart is
// shared read-only with the simulator.
package judge

import (
	"math"
	"sort"

	"github.com/ChickenPige0n/prpr/internal/game"
)

// Options are the session policy knobs. The host supplies them once at
// construction; this package does not read configuration itself.
type Options struct {
	Autoplay bool
	// XTolerance is the spatial matching tolerance along a line's
	// local axis, in normalized screen units.
	XTolerance float64
	// Afterglow is how long a judged note stays visible, in seconds.
	// The simulator reads it through JudgedAt.
	Afterglow float64
}

// DefaultOptions returns the tolerances players expect.
func DefaultOptions() Options {
	return Options{XTolerance: 0.21, Afterglow: 0.5}
}

// Judgment is one state-machine transition, recorded in order. Two runs
// over the same chart and input stream produce identical sequences.
type Judgment struct {
	Line    int
	Note    int
	Outcome game.Outcome
	Time    float64
}

type noteState struct {
	outcome  game.Outcome
	judgedAt float64
	grade    game.Outcome // head grade a held note resolves to
	touch    int          // owning touch while held
}

type touchPoint struct {
	x, y float64
}

type heldRef struct {
	line, note int
}

// Judge is the judgment engine for one session. Single-writer: the host
// must serialize input delivery and time advancement into one stream.
type Judge struct {
	chart *game.Chart
	opts  Options

	states  [][]noteState
	cursors []int
	held    []heldRef
	touches map[int]touchPoint

	combo    int
	maxCombo int
	counts   [8]int
	total    int
	log      []Judgment

	maxBad float64
	time   float64
}

// New binds a judge to a chart for one session.
func New(chart *game.Chart, opts Options) *Judge {
	j := &Judge{
		chart:   chart,
		opts:    opts,
		states:  make([][]noteState, len(chart.Lines)),
		cursors: make([]int, len(chart.Lines)),
		touches: map[int]touchPoint{},
		total:   chart.NoteCount(),
	}
	for i, l := range chart.Lines {
		j.states[i] = make([]noteState, len(l.Notes))
		for _, n := range l.Notes {
			if n.Window.Bad > j.maxBad {
				j.maxBad = n.Window.Bad
			}
		}
	}
	return j
}

// Reset rewinds the session to its initial state, keeping the chart.
func (j *Judge) Reset() {
	*j = *New(j.chart, j.opts)
}

// Outcome returns the judgment state of one note.
func (j *Judge) Outcome(line, note int) game.Outcome {
	return j.states[line][note].outcome
}

// JudgedAt returns the time a note's current outcome was assigned.
func (j *Judge) JudgedAt(line, note int) float64 {
	return j.states[line][note].judgedAt
}

// Cursor returns the index of the first note on a line that is neither
// judged nor currently held. It only moves forward.
func (j *Judge) Cursor(line int) int {
	return j.cursors[line]
}

func (j *Judge) Combo() int    { return j.combo }
func (j *Judge) MaxCombo() int { return j.maxCombo }

// Count returns how many notes resolved to the given outcome.
func (j *Judge) Count(o game.Outcome) int {
	return j.counts[o]
}

// Log returns the judgment sequence so far. Callers must not mutate it.
func (j *Judge) Log() []Judgment {
	return j.log
}

// Finished reports whether every judgable note has a terminal outcome.
func (j *Judge) Finished() bool {
	judged := 0
	for o := game.Perfect; o <= game.HoldBreak; o++ {
		if o.Terminal() {
			judged += j.counts[o]
		}
	}
	return judged >= j.total
}

// Update advances the session to time t, consuming this frame's input
// events. In autoplay the input stream is ignored entirely.
func (j *Judge) Update(t float64, inputs []game.Input) {
	if t < j.time {
		t = j.time
	}
	if !j.opts.Autoplay {
		sort.SliceStable(inputs, func(a, b int) bool { return inputs[a].Time < inputs[b].Time })
		for i := range inputs {
			in := inputs[i]
			if in.Time > t {
				in.Time = t
			}
			j.advance(in.Time)
			j.apply(in)
		}
	}
	j.advance(t)
	j.time = t
}

// record applies one state transition, with its combo effect.
func (j *Judge) record(line, note int, o game.Outcome, at float64) {
	st := &j.states[line][note]
	st.outcome = o
	st.judgedAt = at
	j.log = append(j.log, Judgment{Line: line, Note: note, Outcome: o, Time: at})
	if o == game.Held {
		return
	}
	j.counts[o]++
	if o.BreaksCombo() {
		j.combo = 0
		return
	}
	j.combo++
	if j.combo > j.maxCombo {
		j.maxCombo = j.combo
	}
}

// advance resolves everything that happens up to time t with no input:
// autoplay hits, drag/flick proximity hits, hold completion, misses.
func (j *Judge) advance(t float64) {
	for li := range j.chart.Lines {
		j.advanceLine(li, t)
	}
	j.resolveHeld(t)
	for li := range j.chart.Lines {
		j.bumpCursor(li)
	}
}

func (j *Judge) advanceLine(li int, t float64) {
	line := j.chart.Lines[li]
	for ni := j.cursors[li]; ni < len(line.Notes); ni++ {
		n := line.Notes[ni]
		if n.Time > t {
			break
		}
		st := &j.states[li][ni]
		if n.Fake || st.outcome != game.Unjudged {
			continue
		}
		if j.opts.Autoplay {
			if n.Kind == game.Hold {
				st.grade = game.Perfect
				st.touch = -1
				j.record(li, ni, game.Held, n.Time)
				j.held = append(j.held, heldRef{li, ni})
			} else {
				j.record(li, ni, game.Perfect, n.Time)
			}
			continue
		}
		switch n.Kind {
		case game.Drag, game.Flick:
			// judged by proximity once their time arrives
			if j.anyTouchNear(li, n, t) {
				j.record(li, ni, game.Perfect, n.Time)
				continue
			}
		}
		if t > n.Time+n.Window.Bad {
			j.record(li, ni, game.Miss, n.Time+n.Window.Bad)
		}
	}
}

// resolveHeld completes holds whose end time has passed. In manual play
// the head grade carries through; release handling may already have
// broken them.
func (j *Judge) resolveHeld(t float64) {
	kept := j.held[:0]
	for _, h := range j.held {
		n := j.chart.Lines[h.line].Notes[h.note]
		st := &j.states[h.line][h.note]
		if st.outcome != game.Held {
			continue
		}
		if t < n.TimeEnd {
			kept = append(kept, h)
			continue
		}
		j.record(h.line, h.note, st.grade, n.TimeEnd)
	}
	j.held = kept
}

// bumpCursor moves a line's cursor past notes that need no further
// scanning: judged ones, held ones, and fakes.
func (j *Judge) bumpCursor(li int) {
	notes := j.chart.Lines[li].Notes
	for c := j.cursors[li]; c < len(notes); c++ {
		st := j.states[li][c]
		if !notes[c].Fake && (st.outcome == game.Unjudged) {
			j.cursors[li] = c
			return
		}
	}
	j.cursors[li] = len(notes)
}

func (j *Judge) apply(in game.Input) {
	switch in.Kind {
	case game.Press:
		j.touches[in.ID] = touchPoint{in.X, in.Y}
		j.matchPress(in)
	case game.Move:
		j.touches[in.ID] = touchPoint{in.X, in.Y}
	case game.Release:
		if _, ok := j.touches[in.ID]; !ok {
			return // release without press is a defensive no-op
		}
		delete(j.touches, in.ID)
		if !in.Synthetic {
			j.breakHolds(in)
		}
	}
}

// matchPress finds the best not-yet-judged tap or hold head for a press
// event. Ties on start time fall to the spatially closest note; a press
// that matches nothing is simply consumed.
func (j *Judge) matchPress(in game.Input) {
	bestLine, bestNote := -1, -1
	bestTime := math.Inf(1)
	bestDist := math.Inf(1)
	for li := range j.chart.Lines {
		notes := j.chart.Lines[li].Notes
		for ni := j.cursors[li]; ni < len(notes); ni++ {
			n := notes[ni]
			if n.Time-in.Time > j.maxBad {
				break
			}
			st := j.states[li][ni]
			if n.Fake || st.outcome != game.Unjudged {
				continue
			}
			if n.Kind != game.Tap && n.Kind != game.Hold {
				continue
			}
			dt := math.Abs(in.Time - n.Time)
			limit := n.Window.Bad
			if n.Kind == game.Hold {
				// a hold head outside the good window is not worth
				// starting; it would only break
				limit = n.Window.Good
			}
			if dt > limit {
				continue
			}
			dist := math.Abs(j.localX(li, in.Time, in.X, in.Y) - n.PosX)
			if dist > j.opts.XTolerance {
				continue
			}
			if n.Time < bestTime || (n.Time == bestTime && dist < bestDist) {
				bestLine, bestNote = li, ni
				bestTime, bestDist = n.Time, dist
			}
		}
	}
	if bestLine < 0 {
		return
	}
	n := j.chart.Lines[bestLine].Notes[bestNote]
	dt := math.Abs(in.Time - n.Time)
	grade := game.Bad
	switch {
	case dt <= n.Window.Perfect:
		grade = game.Perfect
	case dt <= n.Window.Good:
		grade = game.Good
	}
	if n.Kind == game.Hold {
		st := &j.states[bestLine][bestNote]
		st.grade = grade
		st.touch = in.ID
		j.record(bestLine, bestNote, game.Held, in.Time)
		j.held = append(j.held, heldRef{bestLine, bestNote})
		j.bumpCursor(bestLine)
		return
	}
	j.record(bestLine, bestNote, grade, in.Time)
	j.bumpCursor(bestLine)
}

// breakHolds breaks any hold owned by a released touch, unless release
// landed within the hold's tail tolerance.
func (j *Judge) breakHolds(in game.Input) {
	for _, h := range j.held {
		st := &j.states[h.line][h.note]
		if st.outcome != game.Held || st.touch != in.ID {
			continue
		}
		n := j.chart.Lines[h.line].Notes[h.note]
		if in.Time >= n.TimeEnd-n.Window.Good {
			continue // close enough, completion happens at end time
		}
		j.record(h.line, h.note, game.HoldBreak, in.Time)
	}
}

// anyTouchNear reports whether any active touch sits within the spatial
// tolerance of the note at time t.
func (j *Judge) anyTouchNear(li int, n *game.Note, t float64) bool {
	for _, tp := range j.touches {
		if math.Abs(j.localX(li, t, tp.x, tp.y)-n.PosX) <= j.opts.XTolerance {
			return true
		}
	}
	return false
}

// localX projects a screen point onto a line's local axis at time t,
// composing any attachment chain's translation.
func (j *Judge) localX(li int, t, x, y float64) float64 {
	l := j.chart.Lines[li]
	cx, cy := l.X.Eval(t), l.Y.Eval(t)
	for p := l.Parent; p != game.NoParent; p = j.chart.Lines[p].Parent {
		pl := j.chart.Lines[p]
		cx += pl.X.Eval(t)
		cy += pl.Y.Eval(t)
	}
	rot := l.Rotate.Eval(t) * math.Pi / 180
	return (x-cx)*math.Cos(rot) + (y-cy)*math.Sin(rot)
}
