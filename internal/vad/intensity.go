package vad

import "math"

// Intensity measures how far t lies from the neutral center, scaled by two
// and capped at 1. The neutral center has intensity 0.
func Intensity(t Triple) float64 {
	dv := t.Valence - Center
	da := t.Arousal - Center
	dd := t.Dominance - Center
	distance := math.Sqrt(dv*dv + da*da + dd*dd)
	return math.Min(1, distance*2)
}
