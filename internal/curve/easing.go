package curve

import "math"

// Easing selects the interpolation shape of one control-point segment.
// The set is closed: it is exactly the family the supported chart
// formats can express.
type Easing uint8

const (
	Linear Easing = iota
	SineOut
	SineIn
	QuadOut
	QuadIn
	SineInOut
	QuadInOut
	CubicOut
	CubicIn
	QuartOut
	QuartIn
	CubicInOut
	QuartInOut
	QuintOut
	QuintIn
	ExpoOut
	ExpoIn
	CircOut
	CircIn
	BackOut
	BackIn
	CircInOut
	BackInOut
	ElasticOut
	ElasticIn
	BounceOut
	BounceIn
	BounceInOut
	ElasticInOut

	easingCount
)

const (
	backC1 = 1.70158
	backC3 = backC1 + 1
	elastc = 2 * math.Pi / 3
)

func flip(f func(float64) float64) func(float64) float64 {
	return func(t float64) float64 { return 1 - f(1-t) }
}

func inOut(in, out func(float64) float64) func(float64) float64 {
	return func(t float64) float64 {
		if t < 0.5 {
			return in(t*2) / 2
		}
		return 0.5 + out(t*2-1)/2
	}
}

func sineIn(t float64) float64    { return 1 - math.Cos(t*math.Pi/2) }
func quadIn(t float64) float64    { return t * t }
func cubicIn(t float64) float64   { return t * t * t }
func quartIn(t float64) float64   { return t * t * t * t }
func quintIn(t float64) float64   { return t * t * t * t * t }
func circIn(t float64) float64    { return 1 - math.Sqrt(1-t*t) }
func backIn(t float64) float64    { return backC3*t*t*t - backC1*t*t }

func expoIn(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(2, 10*t-10)
}

func elasticIn(t float64) float64 {
	if t <= 0 || t >= 1 {
		return math.Min(math.Max(t, 0), 1)
	}
	return -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*elastc)
}

func bounceOut(t float64) float64 {
	const n, d = 7.5625, 2.75
	switch {
	case t < 1/d:
		return n * t * t
	case t < 2/d:
		t -= 1.5 / d
		return n*t*t + 0.75
	case t < 2.5/d:
		t -= 2.25 / d
		return n*t*t + 0.9375
	default:
		t -= 2.625 / d
		return n*t*t + 0.984375
	}
}

// The dispatch table is indexed by Easing. Order matters; keep it in
// sync with the constants above.
var easings = [easingCount]func(float64) float64{
	Linear:       func(t float64) float64 { return t },
	SineOut:      flip(sineIn),
	SineIn:       sineIn,
	QuadOut:      flip(quadIn),
	QuadIn:       quadIn,
	SineInOut:    inOut(sineIn, flip(sineIn)),
	QuadInOut:    inOut(quadIn, flip(quadIn)),
	CubicOut:     flip(cubicIn),
	CubicIn:      cubicIn,
	QuartOut:     flip(quartIn),
	QuartIn:      quartIn,
	CubicInOut:   inOut(cubicIn, flip(cubicIn)),
	QuartInOut:   inOut(quartIn, flip(quartIn)),
	QuintOut:     flip(quintIn),
	QuintIn:      quintIn,
	ExpoOut:      flip(expoIn),
	ExpoIn:       expoIn,
	CircOut:      flip(circIn),
	CircIn:       circIn,
	BackOut:      flip(backIn),
	BackIn:       backIn,
	CircInOut:    inOut(circIn, flip(circIn)),
	BackInOut:    inOut(backIn, flip(backIn)),
	ElasticOut:   flip(elasticIn),
	ElasticIn:    elasticIn,
	BounceOut:    bounceOut,
	BounceIn:     flip(bounceOut),
	BounceInOut:  inOut(flip(bounceOut), bounceOut),
	ElasticInOut: inOut(elasticIn, flip(elasticIn)),
}

// At evaluates the easing at progress t in [0, 1]. Unknown kinds fall
// back to linear so a corrupted value can never panic mid-frame.
func (e Easing) At(t float64) float64 {
	if e >= easingCount {
		e = Linear
	}
	return easings[e](t)
}

func (e Easing) Valid() bool {
	return e < easingCount
}
