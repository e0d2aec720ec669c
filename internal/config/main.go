package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Directory      = kingpin.Arg("directory", "Song/chart directory").Required().ExistingDir()
	Format         = kingpin.Flag("format", "Chart format (rpe, pgr, pec); detected when empty").Short('f').Default("").String()
	Rate           = kingpin.Flag("rate", "Playback speed").Default("1.0").Short('r').Float64()
	Offset         = kingpin.Flag("offset", "Global audio offset").Default("0ms").Short('o').Duration()
	Delay          = kingpin.Flag("delay", "Start delay").Default("1.5s").Short('d').Duration()
	FramePeriod    = kingpin.Flag("frame-period", "Render frame period").Default("4ms").Short('p').Duration()
	Autoplay       = kingpin.Flag("autoplay", "Judge every note perfect with no input").Default("false").Bool()
	AdjustTime     = kingpin.Flag("adjust-time", "Drift-compensated audio clock").Default("true").Bool()
	SpeedScale     = kingpin.Flag("speed", "Global note speed multiplier").Default("1.0").Short('s').Float64()
	Aspect         = kingpin.Flag("aspect", "Playfield aspect ratio override; 0 keeps the chart's").Default("0").Float64()
	ShowLateMisses = kingpin.Flag("show-late-misses", "Keep drawing unjudged notes past their window").Default("true").Bool()
	Keys           = kingpin.Flag("keys", "Lane keys, left to right").Default("asdfjkl;").String()
)

// KeyLane maps a pressed rune onto a normalized x position, spreading
// the configured keys evenly across the playfield.
func KeyLane(r rune) (float64, bool) {
	keys := []rune(*Keys)
	for i, c := range keys {
		if r == c {
			span := float64(len(keys))
			return (float64(i)+0.5)/span*2 - 1, true
		}
	}
	return 0, false
}

func init() {
	kingpin.Version("0.3.0")
	kingpin.Parse()
}
