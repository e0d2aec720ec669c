package parser

import "sort"

// bpmChange is one entry of a format's tempo list, keyed in beats.
type bpmChange struct {
	Beat float64
	BPM  float64

	seconds float64 // absolute time at Beat, filled by newBPMTable
}

// bpmTable integrates a tempo list into an absolute-time mapping so
// beat-based events can be emitted in seconds.
type bpmTable []bpmChange

func newBPMTable(changes []bpmChange) bpmTable {
	t := make(bpmTable, len(changes))
	copy(t, changes)
	sort.SliceStable(t, func(i, j int) bool { return t[i].Beat < t[j].Beat })
	if len(t) == 0 {
		return t
	}
	t[0].seconds = 0
	for i := 1; i < len(t); i++ {
		prev := t[i-1]
		t[i].seconds = prev.seconds + (t[i].Beat-prev.Beat)*60/prev.BPM
	}
	return t
}

func (t bpmTable) valid() bool {
	if len(t) == 0 {
		return false
	}
	for _, c := range t {
		if c.BPM <= 0 {
			return false
		}
	}
	return true
}

// seconds converts an absolute beat position into seconds.
func (t bpmTable) seconds(beat float64) float64 {
	i := sort.Search(len(t), func(i int) bool { return t[i].Beat > beat })
	if i == 0 {
		return (beat - t[0].Beat) * 60 / t[0].BPM
	}
	c := t[i-1]
	return c.seconds + (beat-c.Beat)*60/c.BPM
}
