package vad

// Tag is a coarse categorical label derived from a VAD point.
type Tag string

// Tags produced by Classify.
const (
	TagExcited   Tag = "excited"
	TagHappy     Tag = "happy"
	TagAngry     Tag = "angry"
	TagSad       Tag = "sad"
	TagSurprised Tag = "surprised"
	TagCalm      Tag = "calm"
	TagNeutral   Tag = "neutral"
)

// TagAnxious is never produced by Classify. It exists as a strategy and
// prompt key so clients that send it directly are still served.
const TagAnxious Tag = "anxious"

// Classification thresholds.
const (
	highValence = 0.7
	midValence  = 0.4
	lowValence  = 0.3
	highArousal = 0.6
)

// Classify maps a VAD point to a Tag using the valence/arousal plane.
// Dominance is ignored. The first matching row wins:
//
//   - valence > 0.7, arousal > 0.6       = excited
//   - valence > 0.7, arousal <= 0.6      = happy
//   - valence <= 0.3, arousal > 0.6      = angry
//   - valence <= 0.3, arousal <= 0.6     = sad
//   - 0.4 < valence <= 0.7, arousal > 0.6  = surprised
//   - 0.4 < valence <= 0.7, arousal <= 0.6 = calm
//   - otherwise (0.3 < valence <= 0.4)   = neutral
//
// Values exactly on a threshold fall to the lower branch.
func Classify(t Triple) Tag {
	v, a := t.Valence, t.Arousal
	aroused := a > highArousal

	switch {
	case v > highValence && aroused:
		return TagExcited
	case v > highValence:
		return TagHappy
	case v <= lowValence && aroused:
		return TagAngry
	case v <= lowValence:
		return TagSad
	case v > midValence && aroused:
		return TagSurprised
	case v > midValence:
		return TagCalm
	default:
		return TagNeutral
	}
}

// Tags returns every tag Classify can produce, in decision order.
func Tags() []Tag {
	return []Tag{TagExcited, TagHappy, TagAngry, TagSad, TagSurprised, TagCalm, TagNeutral}
}

// ParseTag converts a wire string to a Tag. Empty input becomes neutral;
// anything else is passed through unchanged so downstream lookups can decide
// how to treat unknown tags.
func ParseTag(s string) Tag {
	if s == "" {
		return TagNeutral
	}
	return Tag(s)
}

// Describe returns a one-line human description of a tag for reports.
func Describe(tag Tag) string {
	switch tag {
	case TagExcited:
		return "High energy with strongly positive feeling"
	case TagHappy:
		return "Positive and settled"
	case TagAngry:
		return "Negative feeling with high activation"
	case TagSad:
		return "Negative feeling with low activation"
	case TagSurprised:
		return "Mildly positive with a spike of activation"
	case TagCalm:
		return "Mildly positive and relaxed"
	case TagAnxious:
		return "Tense and worried"
	default:
		return "No strong emotional signal"
	}
}
