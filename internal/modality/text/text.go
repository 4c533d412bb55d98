// Package text scores free text against an emotion lexicon and projects the
// result onto VAD.
package text

import (
	"context"
	"errors"
	"strings"

	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("empty text provided")

// NeutralEmotion is reported when no lexicon word matched.
const NeutralEmotion = "neutral"

// Analysis is the lexicon scoring of one text.
type Analysis struct {
	Text             string             `json:"text"`
	DominantEmotion  string             `json:"dominant_emotion"`
	EmotionIntensity float64            `json:"emotion_intensity"`
	EmotionScores    map[string]float64 `json:"emotion_scores"`
	MatchedWords     []string           `json:"matched_words"`
	TotalWords       int                `json:"total_words"`
	MatchedCount     int                `json:"matched_count"`
	VAD              vad.Triple         `json:"vad_score"`
}

// Analyzer scores text with a lexicon. It is safe for concurrent use.
type Analyzer struct {
	lexicon *Lexicon
}

// NewAnalyzer creates an analyzer. A nil lexicon matches nothing.
func NewAnalyzer(l *Lexicon) *Analyzer {
	if l == nil {
		l = EmptyLexicon()
	}
	return &Analyzer{lexicon: l}
}

// Analyze tokenizes on whitespace and averages each emotion's flags over the
// matched words carrying that emotion. The dominant emotion is the highest
// average, earliest column first on ties.
func (a *Analyzer) Analyze(text string) (*Analysis, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}

	emotions := a.lexicon.emotions
	sums := make([]float64, len(emotions))
	counts := make([]int, len(emotions))
	matched := []string{}

	for _, w := range words {
		row, ok := a.lexicon.Lookup(w)
		if !ok {
			continue
		}
		matched = append(matched, w)
		for i, flag := range row {
			sums[i] += float64(flag)
			if flag > 0 {
				counts[i]++
			}
		}
	}

	scores := make(map[string]float64, len(emotions))
	dominant, intensity := NeutralEmotion, 0.0
	for i, e := range emotions {
		avg := 0.0
		if counts[i] > 0 {
			avg = sums[i] / float64(counts[i])
		}
		scores[e] = avg
		if avg > intensity {
			dominant, intensity = e, avg
		}
	}

	return &Analysis{
		Text:             text,
		DominantEmotion:  dominant,
		EmotionIntensity: intensity,
		EmotionScores:    scores,
		MatchedWords:     matched,
		TotalWords:       len(words),
		MatchedCount:     len(matched),
		VAD:              ScoresToVAD(emotions, scores),
	}, nil
}

// ScoresToVAD averages the lexicon emotion prototypes weighted by score.
// Emotions without a prototype are ignored. With no positive score the
// result is neutral.
func ScoresToVAD(emotions []string, scores map[string]float64) vad.Triple {
	var sum vad.Triple
	total := 0.0
	for _, e := range emotions {
		score := scores[e]
		proto, ok := vad.LexiconEmotions[e]
		if score <= 0 || !ok {
			continue
		}
		total += score
		sum.Valence += score * proto.Valence
		sum.Arousal += score * proto.Arousal
		sum.Dominance += score * proto.Dominance
	}
	if total == 0 {
		return vad.Neutral
	}
	return vad.Triple{
		Valence:   sum.Valence / total,
		Arousal:   sum.Arousal / total,
		Dominance: sum.Dominance / total,
	}.Clamp()
}

// Modality implements modality.Estimator.
func (a *Analyzer) Modality() fusion.Modality {
	return fusion.Text
}

// Estimate implements modality.Estimator. Confidence is the emotion intensity.
func (a *Analyzer) Estimate(ctx context.Context, in modality.Input) (*modality.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := a.Analyze(in.Text)
	if err != nil {
		return nil, err
	}
	return &modality.Observation{
		Modality: fusion.Text,
		Estimate: fusion.Estimate{
			VAD:        res.VAD,
			Confidence: res.EmotionIntensity,
			Available:  true,
			Label:      res.DominantEmotion,
		},
		Detail: res,
	}, nil
}
