package fusion

import (
	"fmt"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Engine fuses modality estimates. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	weights  Weights
	classify func(vad.Triple) vad.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides the base modality weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.Validate() == nil {
			e.weights = w
		}
	}
}

// NewEngine creates an engine with DefaultWeights.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:  DefaultWeights,
		classify: vad.Classify,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the engine's base weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Fuse combines the available estimates. A nil estimate, one with
// Available=false, or one whose modality has zero base weight is excluded. With no usable weight the result is the
// neutral center with Success=true. Fuse never panics; unexpected faults are
// reported as Success=false with a neutral result.
func (e *Engine) Fuse(face, audio, text *Estimate) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failed(fmt.Errorf("fusion failed: %v", r))
		}
	}()

	inputs := map[Modality]*Estimate{Face: face, Audio: audio, Text: text}

	type part struct {
		vad    vad.Triple
		weight float64
	}
	var parts []part

	res = Result{
		AvailableModalities: []Modality{},
		ModalityWeights:     map[Modality]float64{Face: 0, Audio: 0, Text: 0},
		Success:             true,
	}

	for _, m := range Modalities {
		est := inputs[m]
		if est == nil || !est.Available {
			continue
		}
		w := e.weights.For(m) * ConfidenceWeight(est.Confidence)
		if w <= 0 {
			continue
		}
		res.AvailableModalities = append(res.AvailableModalities, m)
		res.ModalityWeights[m] = w
		res.TotalWeight += w
		parts = append(parts, part{vad: est.VAD.Clamp(), weight: w})
	}

	if res.TotalWeight <= 0 {
		res.FinalVAD = vad.Neutral
		res.EmotionTag = vad.TagNeutral
		return res
	}

	// Normalizing each weight first keeps a lone modality's vector intact.
	var fused vad.Triple
	for _, p := range parts {
		share := p.weight / res.TotalWeight
		fused.Valence += share * p.vad.Valence
		fused.Arousal += share * p.vad.Arousal
		fused.Dominance += share * p.vad.Dominance
	}

	res.FinalVAD = fused.Clamp()
	res.EmotionTag = e.classify(res.FinalVAD)
	return res
}
