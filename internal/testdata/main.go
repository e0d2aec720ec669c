// Package testdata builds small synthetic charts for tests.
package testdata

import (
	"github.com/ChickenPige0n/prpr/internal/curve"
	"github.com/ChickenPige0n/prpr/internal/game"
)

// FlatLine returns a motionless judge line through the origin with a
// unit speed curve, owning the given notes.
func FlatLine(notes ...*game.Note) *game.Line {
	l := &game.Line{
		X:      curve.Constant(0),
		Y:      curve.Constant(0),
		Rotate: curve.Constant(0),
		Alpha:  curve.Constant(1),
		Speed:  curve.Constant(1),
		Parent: game.NoParent,
		Notes:  notes,
	}
	l.SortNotes()
	return l
}

// Tap returns a judgable tap at the given time on line 0.
func Tap(t float64) *game.Note {
	return &game.Note{
		Kind:    game.Tap,
		Time:    t,
		TimeEnd: t,
		Speed:   1,
		Above:   true,
		Window:  game.StandardWindow,
	}
}

// Hold returns a judgable hold spanning [start, end] on line 0.
func Hold(start, end float64) *game.Note {
	return &game.Note{
		Kind:    game.Hold,
		Time:    start,
		TimeEnd: end,
		Speed:   1,
		Above:   true,
		Window:  game.StandardWindow,
	}
}

// Chart wraps lines into a validated single chart.
func Chart(lines ...*game.Line) *game.Chart {
	for li, l := range lines {
		for _, n := range l.Notes {
			n.Line = li
		}
	}
	return &game.Chart{
		Name:   "synthetic",
		Aspect: 16.0 / 9,
		Lines:  lines,
	}
}

// TwoNoteChart is the canonical end-to-end scenario: a tap at 1.0s and
// a hold from 2.0s to 3.0s on one motionless line.
func TwoNoteChart() *game.Chart {
	return Chart(FlatLine(Tap(1.0), Hold(2.0, 3.0)))
}
