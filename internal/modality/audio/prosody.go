package audio

import (
	"math"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Prosody holds the acoustic features extracted by the speech service.
type Prosody struct {
	PitchMean  float64 `json:"pitch_mean"`
	PitchStd   float64 `json:"pitch_std"`
	EnergyMean float64 `json:"energy_mean"`
	EnergyStd  float64 `json:"energy_std"`
	SpeechRate float64 `json:"speech_rate"`
	Duration   float64 `json:"duration"`
}

// featureScale normalizes raw feature values before weighting.
const featureScale = 1000

type prosodyWeight struct {
	value  func(Prosody) float64
	weight vad.Triple
}

// Duration carries no weight.
var prosodyWeights = []prosodyWeight{
	{value: func(p Prosody) float64 { return p.PitchMean }, weight: vad.Triple{Valence: 0.3, Arousal: 0.4, Dominance: 0.2}},
	{value: func(p Prosody) float64 { return p.PitchStd }, weight: vad.Triple{Valence: 0.1, Arousal: 0.3, Dominance: 0.1}},
	{value: func(p Prosody) float64 { return p.EnergyMean }, weight: vad.Triple{Valence: 0.2, Arousal: 0.5, Dominance: 0.3}},
	{value: func(p Prosody) float64 { return p.EnergyStd }, weight: vad.Triple{Valence: 0.1, Arousal: 0.4, Dominance: 0.2}},
	{value: func(p Prosody) float64 { return p.SpeechRate }, weight: vad.Triple{Valence: 0.2, Arousal: 0.3, Dominance: 0.4}},
}

// ProsodyToVAD starts from the neutral center and pushes each dimension up by
// the weighted, normalized feature values. The result is clamped.
func ProsodyToVAD(p Prosody) vad.Triple {
	t := vad.Neutral
	for _, w := range prosodyWeights {
		x := w.value(p) / featureScale
		if math.IsNaN(x) {
			continue
		}
		x = math.Max(0, math.Min(1, x))
		t.Valence += w.weight.Valence * x
		t.Arousal += w.weight.Arousal * x
		t.Dominance += w.weight.Dominance * x
	}
	return t.Clamp()
}
