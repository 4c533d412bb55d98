// Package fusion combines per-modality VAD estimates into a single emotional
// state using confidence-weighted averaging.
package fusion

import (
	"fmt"
	"math"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Modality identifies an input channel.
type Modality string

const (
	Face  Modality = "face"
	Audio Modality = "audio"
	Text  Modality = "text"
)

// Modalities lists every modality in fusion order.
var Modalities = []Modality{Face, Audio, Text}

// Confidence weight bounds. Confidence scales a modality's base weight but a
// present modality never drops below the floor.
const (
	MinConfidenceWeight = 0.1
	MaxConfidenceWeight = 1.0
)

// Estimate is one modality's view of the emotional state.
type Estimate struct {
	VAD        vad.Triple `json:"vad_score"`
	Confidence float64    `json:"confidence"`
	Available  bool       `json:"available"`
	Label      string     `json:"label,omitempty"`
}

// Weights holds the base weight of each modality.
type Weights struct {
	Face  float64 `json:"face" mapstructure:"face"`
	Audio float64 `json:"audio" mapstructure:"audio"`
	Text  float64 `json:"text" mapstructure:"text"`
}

// DefaultWeights favours the face channel.
var DefaultWeights = Weights{Face: 0.4, Audio: 0.3, Text: 0.3}

// For returns the base weight of m.
func (w Weights) For(m Modality) float64 {
	switch m {
	case Face:
		return w.Face
	case Audio:
		return w.Audio
	case Text:
		return w.Text
	default:
		return 0
	}
}

// Validate reports whether every weight is finite and non-negative.
func (w Weights) Validate() error {
	for _, m := range Modalities {
		b := w.For(m)
		if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
			return fmt.Errorf("invalid %s weight %v", m, b)
		}
	}
	return nil
}

// ConfidenceWeight clamps a confidence into [MinConfidenceWeight, MaxConfidenceWeight].
// NaN resolves to the floor.
func ConfidenceWeight(confidence float64) float64 {
	if math.IsNaN(confidence) {
		return MinConfidenceWeight
	}
	return math.Max(MinConfidenceWeight, math.Min(MaxConfidenceWeight, confidence))
}

// Result is the outcome of a fusion.
type Result struct {
	FinalVAD            vad.Triple           `json:"final_vad"`
	EmotionTag          vad.Tag              `json:"emotion_tag"`
	AvailableModalities []Modality           `json:"available_modalities"`
	ModalityWeights     map[Modality]float64 `json:"fusion_weights"`
	TotalWeight         float64              `json:"total_weight"`
	Success             bool                 `json:"success"`
	Error               string               `json:"error,omitempty"`
}

// Failed reports a neutral result carrying err.
func Failed(err error) Result {
	return Result{
		FinalVAD:            vad.Neutral,
		EmotionTag:          vad.TagNeutral,
		AvailableModalities: []Modality{},
		ModalityWeights:     map[Modality]float64{Face: 0, Audio: 0, Text: 0},
		Success:             false,
		Error:               err.Error(),
	}
}
