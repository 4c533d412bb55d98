// Package strategy maps an emotion tag and VAD point to a coping strategy
// with personalized recommendations.
package strategy

import (
	"fmt"
	"slices"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

// VAD thresholds that trigger strategy overlays.
const (
	highArousal   = 0.7
	lowArousal    = 0.3
	lowValence    = 0.3
	highDominance = 0.7
)

// Intensity thresholds that pick the recommendation flavour.
const (
	UrgentIntensity = 0.7
	StableIntensity = 0.3
)

// Strategy is a set of coping techniques for an emotional state.
type Strategy struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Techniques         []string `json:"techniques"`
	Exercises          []string `json:"exercises"`
	Resources          []string `json:"resources"`
	Focus              string   `json:"focus,omitempty"`
	PriorityTechniques []string `json:"priority_techniques,omitempty"`
}

// Clone returns a deep copy of s.
func (s Strategy) Clone() Strategy {
	s.Techniques = slices.Clone(s.Techniques)
	s.Exercises = slices.Clone(s.Exercises)
	s.Resources = slices.Clone(s.Resources)
	s.PriorityTechniques = slices.Clone(s.PriorityTechniques)
	return s
}

// Result is the outcome of mapping a tag and VAD point to a strategy.
type Result struct {
	Success                     bool       `json:"success"`
	Error                       string     `json:"error,omitempty"`
	EmotionTag                  vad.Tag    `json:"emotion_tag"`
	VAD                         vad.Triple `json:"vad_score"`
	Intensity                   float64    `json:"intensity"`
	Strategy                    Strategy   `json:"strategy"`
	PersonalizedRecommendations []string   `json:"personalized_recommendations"`
	NextSteps                   []string   `json:"next_steps"`
}

// Base returns a fresh copy of the base strategy for tag and whether the tag
// was known. Unknown tags receive the neutral strategy.
func Base(tag vad.Tag) (Strategy, bool) {
	s, ok := templates[tag]
	if !ok {
		s = templates[vad.TagNeutral]
	}
	return s.Clone(), ok
}

// Tags lists the tags that have a dedicated strategy.
func Tags() []vad.Tag {
	return []vad.Tag{vad.TagAngry, vad.TagSad, vad.TagAnxious, vad.TagHappy, vad.TagNeutral}
}

// Adjust applies VAD overlays to base and returns the result. base is
// copied first so the caller's value is never modified.
//
// Arousal overlays replace the priority list; valence and dominance overlays
// extend it. Each overlay overwrites the focus, so the last applicable one
// names it.
func Adjust(base Strategy, t vad.Triple) Strategy {
	s := base.Clone()

	apply := func(o overlay, extend bool) {
		s.Focus = fmt.Sprintf("%s - %s", base.Name, o.focus)
		if extend && s.PriorityTechniques != nil {
			s.PriorityTechniques = append(s.PriorityTechniques, o.priority...)
			return
		}
		s.PriorityTechniques = slices.Clone(o.priority)
	}

	switch {
	case t.Arousal > highArousal:
		apply(highArousalOverlay, false)
	case t.Arousal < lowArousal:
		apply(lowArousalOverlay, false)
	}
	if t.Valence < lowValence {
		apply(lowValenceOverlay, true)
	}
	if t.Dominance > highDominance {
		apply(highDominanceOverlay, true)
	}

	return s
}

// Recommendations returns intensity- and tag-specific advice lines.
func Recommendations(tag vad.Tag, intensity float64) []string {
	var out []string
	switch {
	case intensity > UrgentIntensity:
		out = append(out, urgentRecommendations...)
	case intensity < StableIntensity:
		out = append(out, stableRecommendations...)
	}
	if line, ok := tagRecommendations[tag]; ok {
		out = append(out, line)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// NextSteps returns the ordered follow-up plan.
func NextSteps() []string {
	return slices.Clone(nextSteps)
}
