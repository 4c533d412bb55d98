// Package vad models emotional state as a point in Valence-Arousal-Dominance
// space and provides the pure functions that normalize, classify and measure
// such points.
package vad

import (
	"fmt"
	"math"

	"github.com/muesli/clusters"
)

// Center is the neutral value of every VAD dimension.
const Center = 0.5

// Triple is a point in VAD space. Each dimension lies in [0, 1] once clamped.
type Triple struct {
	Valence   float64 `json:"valence"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
}

// Neutral is the center of the VAD cube, used whenever no signal is available.
var Neutral = Triple{Valence: Center, Arousal: Center, Dominance: Center}

// Clamp returns a copy of t with every dimension forced into [0, 1].
// NaN components resolve to the neutral center.
func (t Triple) Clamp() Triple {
	return Triple{
		Valence:   clamp01(t.Valence),
		Arousal:   clamp01(t.Arousal),
		Dominance: clamp01(t.Dominance),
	}
}

// Coordinates returns t as a coordinate vector (valence, arousal, dominance).
func (t Triple) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{t.Valence, t.Arousal, t.Dominance}
}

// String formats t with two decimals per dimension.
func (t Triple) String() string {
	return fmt.Sprintf("V=%.2f A=%.2f D=%.2f", t.Valence, t.Arousal, t.Dominance)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return Center
	}
	return math.Max(0, math.Min(1, x))
}
