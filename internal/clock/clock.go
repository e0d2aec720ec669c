// Package clock derives authoritative simulation time from the audio
// backend's coarsely sampled playback position. Judgment tolerances are
// tens of milliseconds; polling the backend raw produces stutter at its
// quantization boundaries, so the adjusted mode extrapolates with a
// smoothed audio-to-wall-clock rate between samples.
package clock

import "math"

const (
	// low-pass weight for fresh rate observations
	rateAlpha = 0.1
	minRate   = 0.5
	maxRate   = 2.0

	// a backward step larger than this is a seek, not jitter
	seekThreshold = 1.0
)

// Synchronizer turns (audio position, wall clock) sample pairs into a
// smooth, monotonic simulation time. It is owned by one session and is
// fed one snapshot per frame; anomalies are absorbed, never surfaced.
type Synchronizer struct {
	offset float64 // global time shift, subtracted from audio time
	adjust bool

	started   bool
	baseAudio float64
	baseWall  float64
	rate      float64
	last      float64
}

// New returns a synchronizer. offset is the chart's global offset plus
// any user correction; adjust enables drift compensation.
func New(offset float64, adjust bool) *Synchronizer {
	return &Synchronizer{offset: offset, adjust: adjust, rate: 1, last: math.Inf(-1)}
}

// Reset re-arms the synchronizer for a restarted session.
func (s *Synchronizer) Reset() {
	s.started = false
	s.rate = 1
	s.last = math.Inf(-1)
}

// Rate returns the current audio-seconds-per-wall-second estimate.
func (s *Synchronizer) Rate() float64 {
	return s.rate
}

// Update feeds a fresh sample pair. Stalled positions keep the previous
// anchor so Now keeps extrapolating; small backward steps are absorbed;
// large ones re-anchor as a seek.
func (s *Synchronizer) Update(audio, wall float64) {
	if !s.started {
		s.started = true
		s.baseAudio, s.baseWall = audio, wall
		return
	}
	if audio == s.baseAudio {
		return
	}
	if audio < s.baseAudio {
		if s.baseAudio-audio < seekThreshold {
			return
		}
		s.baseAudio, s.baseWall = audio, wall
		s.last = math.Inf(-1)
		return
	}
	if wall > s.baseWall {
		observed := (audio - s.baseAudio) / (wall - s.baseWall)
		s.rate += rateAlpha * (observed - s.rate)
		if s.rate < minRate {
			s.rate = minRate
		} else if s.rate > maxRate {
			s.rate = maxRate
		}
	}
	// snap back to the true audio position
	s.baseAudio, s.baseWall = audio, wall
}

// Now returns simulation time at the given wall clock reading. In the
// simple mode it is the last audio position shifted by the offset; in
// the adjusted mode elapsed wall time scaled by the rate estimate is
// added. Time never steps backward within a session.
func (s *Synchronizer) Now(wall float64) float64 {
	t := s.baseAudio
	if s.adjust {
		t += (wall - s.baseWall) * s.rate
	}
	t -= s.offset
	if t < s.last {
		return s.last
	}
	s.last = t
	return t
}
