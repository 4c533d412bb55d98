package fusion

import "github.com/justestif/go-affect-fusion/internal/vad"

// DefaultConfidence applies to a submitted score that omits its confidence.
const DefaultConfidence = 0.5

// Scores is a set of raw per-modality VAD scores as submitted by clients.
// VAD maps are untyped and go through vad.Normalize.
type Scores struct {
	FaceVAD         map[string]any `json:"face_vad"`
	AudioVAD        map[string]any `json:"audio_vad"`
	TextVAD         map[string]any `json:"text_vad"`
	FaceConfidence  *float64       `json:"face_confidence"`
	AudioConfidence *float64       `json:"audio_confidence"`
	TextConfidence  *float64       `json:"text_confidence"`
}

// Estimates converts s into estimates ready for Engine.Fuse. A missing or
// empty VAD map leaves that modality nil.
func (s Scores) Estimates() (face, audio, text *Estimate) {
	return rawEstimate(s.FaceVAD, s.FaceConfidence),
		rawEstimate(s.AudioVAD, s.AudioConfidence),
		rawEstimate(s.TextVAD, s.TextConfidence)
}

func rawEstimate(raw map[string]any, confidence *float64) *Estimate {
	if len(raw) == 0 {
		return nil
	}
	c := DefaultConfidence
	if confidence != nil {
		c = *confidence
	}
	return &Estimate{VAD: vad.Normalize(raw), Confidence: c, Available: true}
}
