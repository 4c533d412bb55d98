package vad

import (
	"math"
	"slices"
)

// FaceLabels projects the face classifier's expression labels onto VAD.
var FaceLabels = map[string]Triple{
	"Angry":    {Valence: 0.2, Arousal: 0.9, Dominance: 0.8},
	"Disgust":  {Valence: 0.1, Arousal: 0.7, Dominance: 0.6},
	"Fear":     {Valence: 0.1, Arousal: 0.9, Dominance: 0.2},
	"Happy":    {Valence: 0.9, Arousal: 0.7, Dominance: 0.8},
	"Sad":      {Valence: 0.2, Arousal: 0.3, Dominance: 0.2},
	"Surprise": {Valence: 0.6, Arousal: 0.8, Dominance: 0.5},
	"Neutral":  {Valence: 0.5, Arousal: 0.3, Dominance: 0.5},
}

// LexiconEmotions projects the NRC lexicon emotion categories onto VAD.
var LexiconEmotions = map[string]Triple{
	"joy":          {Valence: 0.9, Arousal: 0.7, Dominance: 0.8},
	"trust":        {Valence: 0.8, Arousal: 0.4, Dominance: 0.6},
	"anticipation": {Valence: 0.7, Arousal: 0.6, Dominance: 0.7},
	"surprise":     {Valence: 0.6, Arousal: 0.8, Dominance: 0.5},
	"anger":        {Valence: 0.2, Arousal: 0.9, Dominance: 0.8},
	"disgust":      {Valence: 0.1, Arousal: 0.7, Dominance: 0.6},
	"fear":         {Valence: 0.1, Arousal: 0.9, Dominance: 0.2},
	"sadness":      {Valence: 0.2, Arousal: 0.3, Dominance: 0.2},
}

// LabelVAD looks up a label in a prototype table. Unknown labels return the
// neutral center and false.
func LabelVAD(table map[string]Triple, label string) (Triple, bool) {
	t, ok := table[label]
	if !ok {
		return Neutral, false
	}
	return t, true
}

// NearestLabel returns the label in table whose prototype lies closest to t.
// Ties resolve alphabetically so the answer is stable. An empty table yields "".
func NearestLabel(t Triple, table map[string]Triple) string {
	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	point := t.Coordinates()
	best, bestDist := "", math.Inf(1)
	for _, label := range labels {
		d := point.Distance(table[label].Coordinates())
		if d < bestDist {
			best, bestDist = label, d
		}
	}
	return best
}
