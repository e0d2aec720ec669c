package judge

import (
	"math"

	"github.com/ChickenPige0n/prpr/internal/game"
)

// Scoring weights: accuracy is worth 900k, sustained combo 100k, so a
// full-combo all-perfect run lands exactly on 1,000,000. Goods keep 65%
// of their accuracy value; bads, misses and broken holds keep nothing.
// Monotonic in grade quality and combo length, and a pure function of
// the judgment sequence.
const (
	accuracyWeight = 900000.0
	comboWeight    = 100000.0
	goodValue      = 0.65
	maxScore       = accuracyWeight + comboWeight
)

// Accuracy returns the grade-weighted hit ratio in [0, 1].
func (j *Judge) Accuracy() float64 {
	if j.total == 0 {
		return 1
	}
	perfect := float64(j.counts[game.Perfect])
	good := float64(j.counts[game.Good])
	return (perfect + goodValue*good) / float64(j.total)
}

// Score returns the current integer score.
func (j *Judge) Score() int {
	if j.total == 0 {
		return int(maxScore)
	}
	s := accuracyWeight*j.Accuracy() + comboWeight*float64(j.maxCombo)/float64(j.total)
	return int(math.Round(s))
}

// Summary is the session result handed to the caller at session end.
type Summary struct {
	Score    int
	Accuracy float64
	MaxCombo int
	Perfect  int
	Good     int
	Bad      int
	Miss     int
	Breaks   int
	Total    int
}

// Summarize snapshots the final result.
func (j *Judge) Summarize() Summary {
	return Summary{
		Score:    j.Score(),
		Accuracy: j.Accuracy(),
		MaxCombo: j.maxCombo,
		Perfect:  j.counts[game.Perfect],
		Good:     j.counts[game.Good],
		Bad:      j.counts[game.Bad],
		Miss:     j.counts[game.Miss],
		Breaks:   j.counts[game.HoldBreak],
		Total:    j.total,
	}
}

// FullCombo reports whether nothing so far has broken the combo.
func (j *Judge) FullCombo() bool {
	return j.counts[game.Bad] == 0 && j.counts[game.Miss] == 0 && j.counts[game.HoldBreak] == 0
}
