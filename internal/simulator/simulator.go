// Package simulator computes, for a playback time, the screen-space
// transform of every judge line and the position and visibility of
// every nearby note. It is a pure function of the chart, the time, and
// the judgment state; it keeps no state of its own, so the host may
// evaluate lines concurrently.
package simulator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ChickenPige0n/prpr/internal/game"
)

// Outcomes is the read-only view of judgment state the simulator needs
// to decide visibility. A nil view treats every note as unjudged.
type Outcomes interface {
	Outcome(line, note int) game.Outcome
	JudgedAt(line, note int) float64
}

// Options are the host's rendering policy knobs.
type Options struct {
	// SpeedScale multiplies every note's travel speed.
	SpeedScale float64
	// Afterglow is how long judged notes stay on screen, in seconds.
	Afterglow float64
	// ShowLateMisses keeps drawing unjudged notes past their widest
	// window, so a passing miss is visible instead of silently dropped.
	ShowLateMisses bool
	// Horizon culls notes further than this from their line, in
	// normalized units.
	Horizon float64
}

func DefaultOptions() Options {
	return Options{SpeedScale: 1, Afterglow: 0.5, ShowLateMisses: true, Horizon: 3}
}

// Transform is one judge line's state at the frame time.
type Transform struct {
	X, Y   float64
	Rotate float64 // degrees
	Alpha  float64
	// Scale is the accumulated speed integral since chart start, the
	// "floor position" notes are laid out against.
	Scale  float64
	Matrix mgl64.Mat3 // local frame to screen
}

// NoteSprite is one note's renderable state at the frame time.
type NoteSprite struct {
	Line, Note int
	Kind       game.NoteKind
	Fake       bool
	Outcome    game.Outcome
	Visible    bool
	X, Y       float64 // head position
	EndX, EndY float64 // hold tail, equal to head for other kinds
}

// FrameState is everything the external renderer needs for one frame.
type FrameState struct {
	Time  float64
	Lines []Transform
	Notes []NoteSprite
}

func lineTransform(chart *game.Chart, li int, t float64) Transform {
	l := chart.Lines[li]
	x, y := l.X.Eval(t), l.Y.Eval(t)
	// attachment composes translation only
	for p := l.Parent; p != game.NoParent; p = chart.Lines[p].Parent {
		pl := chart.Lines[p]
		x += pl.X.Eval(t)
		y += pl.Y.Eval(t)
	}
	rot := l.Rotate.Eval(t)
	return Transform{
		X:      x,
		Y:      y,
		Rotate: rot,
		Alpha:  l.Alpha.Eval(t),
		Scale:  l.Speed.Integral(game.Start, t),
		Matrix: mgl64.Translate2D(x, y).Mul3(mgl64.HomogRotate2D(rot * math.Pi / 180)),
	}
}

func noteVisible(n *game.Note, o game.Outcome, judgedAt, t float64, opts Options) bool {
	if n.Fake {
		return t <= n.TimeEnd
	}
	if o.Terminal() {
		return t <= judgedAt+opts.Afterglow
	}
	if o == game.Unjudged && t > n.Time+n.Window.Bad {
		return opts.ShowLateMisses
	}
	return true
}

// Session carries per-line retirement watermarks across frames, so a
// frame's note scan tracks the live window instead of the whole chart.
// Time must advance monotonically within one session, which the clock
// guarantees.
type Session struct {
	chart *game.Chart
	first []int // index of the first possibly-live note per line
}

func NewSession(chart *game.Chart) *Session {
	return &Session{chart: chart, first: make([]int, len(chart.Lines))}
}

// Frame simulates the whole chart at time t. The stateless form for
// one-shot evaluation; hosts rendering every frame use a Session.
func Frame(chart *game.Chart, out Outcomes, t float64, opts Options) FrameState {
	return NewSession(chart).Frame(out, t, opts)
}

func (s *Session) Frame(out Outcomes, t float64, opts Options) FrameState {
	chart := s.chart
	fs := FrameState{Time: t, Lines: make([]Transform, len(chart.Lines))}
	for li := range chart.Lines {
		fs.Lines[li] = lineTransform(chart, li, t)
	}
	for li, l := range chart.Lines {
		tr := &fs.Lines[li]
		lineVisible := tr.Alpha > 0
		prefix := true
		for ni := s.first[li]; ni < len(l.Notes); ni++ {
			n := l.Notes[ni]
			o := game.Unjudged
			judgedAt := 0.0
			if out != nil && !n.Fake {
				o = out.Outcome(li, ni)
				judgedAt = out.JudgedAt(li, ni)
			}
			// retired notes never come back; a contiguous retired
			// prefix moves the watermark
			retired := (o.Terminal() && t > judgedAt+opts.Afterglow) ||
				(n.Fake && t > n.TimeEnd)
			if retired {
				if prefix {
					s.first[li] = ni + 1
				}
				continue
			}
			prefix = false
			head := travel(l, n, t, n.Time, opts)
			if o == game.Held {
				head = 0 // a held head rides the line
			}
			if n.Time > t && math.Abs(head) > opts.Horizon {
				// later notes only sit further out; speed curves are
				// non-negative in the supported formats
				break
			}
			sprite := NoteSprite{
				Line:    li,
				Note:    ni,
				Kind:    n.Kind,
				Fake:    n.Fake,
				Outcome: o,
				Visible: lineVisible && math.Abs(head) <= opts.Horizon && noteVisible(n, o, judgedAt, t, opts),
			}
			hx, hy := project(tr.Matrix, n.PosX, head)
			sprite.X, sprite.Y = hx, hy
			sprite.EndX, sprite.EndY = hx, hy
			if n.Kind == game.Hold {
				tail := travel(l, n, t, n.TimeEnd, opts)
				sprite.EndX, sprite.EndY = project(tr.Matrix, n.PosX, tail)
				if t > n.TimeEnd {
					sprite.Visible = false
				}
			}
			fs.Notes = append(fs.Notes, sprite)
		}
	}
	return fs
}

// travel integrates the line's speed curve from the frame time to the
// note's target time, signed by the note's side.
func travel(l *game.Line, n *game.Note, t, target float64, opts Options) float64 {
	d := l.Speed.Integral(t, target) * opts.SpeedScale * n.Speed
	if !n.Above {
		return -d
	}
	return d
}

func project(m mgl64.Mat3, x, y float64) (float64, float64) {
	v := m.Mul3x1(mgl64.Vec3{x, y, 1})
	return v.X(), v.Y()
}
