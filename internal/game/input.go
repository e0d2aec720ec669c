package game

// InputKind distinguishes the phases of one touch or press.
type InputKind uint8

const (
	Press InputKind = iota
	Move
	Release
)

func (k InputKind) String() string {
	switch k {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	}
	return "unknown"
}

// Input is one discrete event from the host's input abstraction.
// Coordinates are in the same normalized space the simulator outputs.
type Input struct {
	Kind InputKind
	ID   int // pointer/finger identity, stable across a press
	X, Y float64
	Time float64 // seconds, same clock as the chart

	// Synthetic marks a release the host fabricated because its input
	// device cannot report one. It ends the touch but carries no player
	// intent, so it must not break holds.
	Synthetic bool
}
