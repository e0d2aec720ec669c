// Package score persists play sessions: the raw input stream, its
// rate, and the score it produced, keyed by a digest of the chart.
// Replays are re-judged from the stored inputs, which is only sound
// because the judgment engine is deterministic.
package score

import (
	"github.com/ChickenPige0n/prpr/internal/game"
	"github.com/ChickenPige0n/prpr/internal/judge"
)

// Store is the persistence boundary for session results.
type Store interface {
	Init() error
	Deinit()

	// Save the input stream and result of one session
	Save(chart *game.Chart, record *Record) error

	// Load every stored session for the chart
	Load(chart *game.Chart) ([]Record, error)

	// Best returns the highest-scoring stored session, if any
	Best(chart *game.Chart) (*Record, error)
}

// Record is one stored session.
type Record struct {
	Sum    string
	Rate   float64
	Score  int
	Inputs []game.Input
}

// Replay re-judges a stored session against its chart. Two replays of
// the same record produce identical judgment sequences and scores.
func Replay(chart *game.Chart, record *Record, opts judge.Options) *judge.Judge {
	j := judge.New(chart, opts)
	for i := range record.Inputs {
		in := record.Inputs[i]
		j.Update(in.Time, []game.Input{in})
	}
	j.Update(chart.Duration()+game.StandardWindow.Bad, nil)
	return j
}
