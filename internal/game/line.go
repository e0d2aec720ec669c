package game

import (
	"fmt"
	"sort"

	"github.com/ChickenPige0n/prpr/internal/curve"
)

// NoParent marks a line that moves in chart space rather than relative
// to another line.
const NoParent = -1

// Line is a judge line: five motion curves and the notes that travel
// along and are judged against it.
type Line struct {
	X      curve.Sequence // normalized [-1, 1]
	Y      curve.Sequence // normalized [-1, 1]
	Rotate curve.Sequence // degrees
	Alpha  curve.Sequence // [0, 1], negative means hidden
	Speed  curve.Sequence // note travel speed, units per second

	Notes  []*Note
	Parent int // line index this one is attached to, or NoParent
}

func (l *Line) sequences() map[string]curve.Sequence {
	return map[string]curve.Sequence{
		"x":      l.X,
		"y":      l.Y,
		"rotate": l.Rotate,
		"alpha":  l.Alpha,
		"speed":  l.Speed,
	}
}

// Validate checks the control-point invariants of every channel and the
// time ordering of every note.
func (l *Line) Validate(start float64) error {
	for name, seq := range l.sequences() {
		if err := seq.Validate(start); nil != err {
			return fmt.Errorf("%s channel: %w", name, err)
		}
	}
	for i, n := range l.Notes {
		if n.TimeEnd < n.Time {
			return fmt.Errorf("note %d ends at %v before it starts at %v", i, n.TimeEnd, n.Time)
		}
		if n.Kind != Hold && n.TimeEnd != n.Time {
			return fmt.Errorf("note %d is a %v with a duration", i, n.Kind)
		}
	}
	return nil
}

// SortNotes orders the line's notes by start time, as the judgment
// cursor requires.
func (l *Line) SortNotes() {
	sort.SliceStable(l.Notes, func(i, j int) bool {
		return l.Notes[i].Time < l.Notes[j].Time
	})
}
