package strategy

import (
	"fmt"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Mapper produces strategy results. It is stateless and safe for concurrent use.
type Mapper struct {
	intensity func(vad.Triple) float64
}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{intensity: vad.Intensity}
}

// Map resolves tag to a base strategy, adjusts it for t and attaches
// recommendations and next steps. Map never panics; on an internal fault it
// returns Success=false with the neutral strategy.
//
// The tag is reported back as given even when it fell back to neutral.
func (m *Mapper) Map(tag vad.Tag, t vad.Triple) (res Result) {
	t = t.Clamp()

	defer func() {
		if r := recover(); r != nil {
			neutral, _ := Base(vad.TagNeutral)
			res = Result{
				Success:                     false,
				Error:                       fmt.Sprintf("strategy mapping failed: %v", r),
				EmotionTag:                  tag,
				VAD:                         t,
				Strategy:                    neutral,
				PersonalizedRecommendations: []string{},
				NextSteps:                   []string{},
			}
		}
	}()

	base, _ := Base(tag)
	intensity := m.intensity(t)

	return Result{
		Success:                     true,
		EmotionTag:                  tag,
		VAD:                         t,
		Intensity:                   intensity,
		Strategy:                    Adjust(base, t),
		PersonalizedRecommendations: Recommendations(tag, intensity),
		NextSteps:                   NextSteps(),
	}
}
