package game

// NoteKind is the input gesture a note asks for.
type NoteKind uint8

const (
	Tap NoteKind = iota
	Hold
	Drag
	Flick
)

func (k NoteKind) String() string {
	switch k {
	case Tap:
		return "tap"
	case Hold:
		return "hold"
	case Drag:
		return "drag"
	case Flick:
		return "flick"
	}
	return "unknown"
}

// Outcome is the judgment state of a note. Held is the only
// non-terminal judged state; a hold resolves out of it at its end time
// or on premature release.
type Outcome uint8

const (
	Unjudged Outcome = iota
	Perfect
	Good
	Bad
	Miss
	Held
	HoldBreak
)

func (o Outcome) String() string {
	switch o {
	case Unjudged:
		return "unjudged"
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	case Bad:
		return "bad"
	case Miss:
		return "miss"
	case Held:
		return "held"
	case HoldBreak:
		return "holdbreak"
	}
	return "unknown"
}

// Terminal reports whether the note is done being judged.
func (o Outcome) Terminal() bool {
	return o != Unjudged && o != Held
}

// BreaksCombo reports whether the outcome resets the combo counter.
func (o Outcome) BreaksCombo() bool {
	return o == Bad || o == Miss || o == HoldBreak
}

// Window is a hit-window class: the timing tolerances, in seconds,
// around a note's start time.
type Window struct {
	Perfect float64
	Good    float64
	Bad     float64
}

// StandardWindow matches the tolerances players expect from the source
// formats' default difficulty semantics.
var StandardWindow = Window{Perfect: 0.08, Good: 0.16, Bad: 0.22}

// StrictWindow is the tightened class some formats assign to challenge
// difficulties.
var StrictWindow = Window{Perfect: 0.04, Good: 0.075, Bad: 0.18}

// Note is a single timed input target. It belongs to exactly one judge
// line, referenced by index into the chart's line collection.
type Note struct {
	Kind    NoteKind
	Time    float64 // seconds
	TimeEnd float64 // equal to Time for non-hold kinds
	PosX    float64 // lane offset in the line's local frame
	Above   bool    // which face of the line it approaches from
	Speed   float64 // approach speed multiplier
	Fake    bool    // drawn but never judged
	Window  Window
	Line    int
}
