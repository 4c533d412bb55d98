package strategy

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

func TestBase(t *testing.T) {
	for _, tag := range Tags() {
		s, ok := Base(tag)
		if !ok {
			t.Errorf("Base(%q) not found", tag)
		}
		if s.Name == "" || len(s.Techniques) != 5 || len(s.Exercises) != 3 || len(s.Resources) != 3 {
			t.Errorf("Base(%q) incomplete: %+v", tag, s)
		}
	}

	neutral, _ := Base(vad.TagNeutral)
	for _, tag := range []vad.Tag{vad.TagExcited, vad.TagCalm, vad.TagSurprised, vad.Tag("bogus")} {
		s, ok := Base(tag)
		if ok {
			t.Errorf("Base(%q) reported known", tag)
		}
		if !reflect.DeepEqual(s, neutral) {
			t.Errorf("Base(%q) = %q, want neutral strategy", tag, s.Name)
		}
	}
}

func TestAdjust(t *testing.T) {
	base, _ := Base(vad.TagAngry)

	tests := []struct {
		name         string
		vad          vad.Triple
		wantFocus    string
		wantPriority []string
	}{
		{
			name: "no overlay",
			vad:  vad.Neutral,
		},
		{
			name:         "high arousal",
			vad:          vad.Triple{Valence: 0.5, Arousal: 0.8, Dominance: 0.5},
			wantFocus:    base.Name + " - relaxation and calming",
			wantPriority: highArousalOverlay.priority,
		},
		{
			name:         "low arousal",
			vad:          vad.Triple{Valence: 0.5, Arousal: 0.2, Dominance: 0.5},
			wantFocus:    base.Name + " - activation and motivation",
			wantPriority: lowArousalOverlay.priority,
		},
		{
			name:         "low valence alone sets priority",
			vad:          vad.Triple{Valence: 0.2, Arousal: 0.5, Dominance: 0.5},
			wantFocus:    base.Name + " - encouraging positive thinking",
			wantPriority: lowValenceOverlay.priority,
		},
		{
			name:      "high arousal then low valence extends",
			vad:       vad.Triple{Valence: 0.2, Arousal: 0.9, Dominance: 0.5},
			wantFocus: base.Name + " - encouraging positive thinking",
			wantPriority: append(append([]string{}, highArousalOverlay.priority...),
				lowValenceOverlay.priority...),
		},
		{
			name:      "all three overlays",
			vad:       vad.Triple{Valence: 0.1, Arousal: 0.1, Dominance: 0.9},
			wantFocus: base.Name + " - cooperation and empathy",
			wantPriority: append(append(append([]string{}, lowArousalOverlay.priority...),
				lowValenceOverlay.priority...), highDominanceOverlay.priority...),
		},
		{
			name:         "boundaries do not trigger",
			vad:          vad.Triple{Valence: 0.3, Arousal: 0.7, Dominance: 0.7},
			wantFocus:    "",
			wantPriority: nil,
		},
		{
			name:         "arousal exactly 0.3 is not low",
			vad:          vad.Triple{Valence: 0.5, Arousal: 0.3, Dominance: 0.5},
			wantFocus:    "",
			wantPriority: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjust(base, tt.vad)
			if got.Focus != tt.wantFocus {
				t.Errorf("Focus = %q, want %q", got.Focus, tt.wantFocus)
			}
			if !reflect.DeepEqual(got.PriorityTechniques, tt.wantPriority) {
				t.Errorf("PriorityTechniques = %v, want %v", got.PriorityTechniques, tt.wantPriority)
			}
		})
	}
}

func TestAdjustDoesNotMutateTemplates(t *testing.T) {
	before, _ := Base(vad.TagSad)
	beforeOverlay := append([]string{}, highArousalOverlay.priority...)

	for i := 0; i < 3; i++ {
		s, _ := Base(vad.TagSad)
		adjusted := Adjust(s, vad.Triple{Valence: 0.1, Arousal: 0.9, Dominance: 0.9})
		adjusted.Techniques[0] = "changed"
	}

	after, _ := Base(vad.TagSad)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("template changed: %+v", after)
	}
	if after.Focus != "" || after.PriorityTechniques != nil {
		t.Errorf("template gained overlay: %+v", after)
	}
	if !reflect.DeepEqual(beforeOverlay, highArousalOverlay.priority) {
		t.Errorf("overlay priority changed: %v", highArousalOverlay.priority)
	}
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name      string
		tag       vad.Tag
		intensity float64
		want      int
		contains  string
	}{
		{name: "urgent angry", tag: vad.TagAngry, intensity: 0.9, want: 3, contains: "immediately"},
		{name: "stable sad", tag: vad.TagSad, intensity: 0.1, want: 3, contains: "long-term"},
		{name: "moderate anxious", tag: vad.TagAnxious, intensity: 0.5, want: 1, contains: "this moment"},
		{name: "moderate happy", tag: vad.TagHappy, intensity: 0.5, want: 0},
		{name: "boundary 0.7 is moderate", tag: vad.TagExcited, intensity: 0.7, want: 0},
		{name: "boundary 0.3 is moderate", tag: vad.TagCalm, intensity: 0.3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendations(tt.tag, tt.intensity)
			if got == nil {
				t.Fatal("Recommendations() = nil, want non-nil")
			}
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d: %v", len(got), tt.want, got)
			}
			if tt.contains != "" && !strings.Contains(strings.Join(got, " "), tt.contains) {
				t.Errorf("Recommendations() = %v, want mention of %q", got, tt.contains)
			}
		})
	}
}

func TestMap(t *testing.T) {
	m := NewMapper()

	got := m.Map(vad.TagAngry, vad.Triple{Valence: 0.2, Arousal: 0.9, Dominance: 0.8})

	if !got.Success {
		t.Fatalf("Success = false: %s", got.Error)
	}
	if got.EmotionTag != vad.TagAngry {
		t.Errorf("EmotionTag = %q", got.EmotionTag)
	}
	if got.Strategy.Name != "Anger management" {
		t.Errorf("Strategy.Name = %q", got.Strategy.Name)
	}
	if !strings.HasSuffix(got.Strategy.Focus, "cooperation and empathy") {
		t.Errorf("Focus = %q", got.Strategy.Focus)
	}
	if len(got.Strategy.PriorityTechniques) != 9 {
		t.Errorf("PriorityTechniques = %v, want 9 entries", got.Strategy.PriorityTechniques)
	}
	if len(got.PersonalizedRecommendations) != 3 {
		t.Errorf("PersonalizedRecommendations = %v", got.PersonalizedRecommendations)
	}
	if len(got.NextSteps) != 6 || !strings.HasPrefix(got.NextSteps[0], "1.") {
		t.Errorf("NextSteps = %v", got.NextSteps)
	}
}

func TestMapFallsBackToNeutral(t *testing.T) {
	m := NewMapper()
	point := vad.Triple{Valence: 0.9, Arousal: 0.8, Dominance: 0.8}

	excited := m.Map(vad.TagExcited, point)
	neutral := m.Map(vad.TagNeutral, point)

	if !excited.Success {
		t.Fatalf("Success = false: %s", excited.Error)
	}
	if !reflect.DeepEqual(excited.Strategy, neutral.Strategy) {
		t.Errorf("Strategy = %+v, want %+v", excited.Strategy, neutral.Strategy)
	}
	if excited.EmotionTag != vad.TagExcited {
		t.Errorf("EmotionTag = %q, want excited", excited.EmotionTag)
	}
}

func TestMapClampsVAD(t *testing.T) {
	got := NewMapper().Map(vad.TagHappy, vad.Triple{Valence: 4, Arousal: -2, Dominance: 0.5})
	if got.VAD != (vad.Triple{Valence: 1, Arousal: 0, Dominance: 0.5}) {
		t.Errorf("VAD = %v", got.VAD)
	}
	if got.Intensity > 1 {
		t.Errorf("Intensity = %v, want <= 1", got.Intensity)
	}
}

func TestMapRecoversPanic(t *testing.T) {
	m := NewMapper()
	m.intensity = func(vad.Triple) float64 { panic("boom") }

	got := m.Map(vad.TagSad, vad.Neutral)

	if got.Success {
		t.Error("Success = true, want false")
	}
	if !strings.Contains(got.Error, "boom") {
		t.Errorf("Error = %q", got.Error)
	}
	neutral, _ := Base(vad.TagNeutral)
	if got.Strategy.Name != neutral.Name {
		t.Errorf("Strategy.Name = %q, want %q", got.Strategy.Name, neutral.Name)
	}
}

func TestMapConcurrentIsolation(t *testing.T) {
	m := NewMapper()
	calm := vad.Triple{Valence: 0.5, Arousal: 0.5, Dominance: 0.5}
	stormy := vad.Triple{Valence: 0.1, Arousal: 0.9, Dominance: 0.9}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got := m.Map(vad.TagSad, calm)
			if got.Strategy.Focus != "" || len(got.Strategy.PriorityTechniques) != 0 {
				t.Errorf("calm call saw overlay: %+v", got.Strategy)
			}
		}()
		go func() {
			defer wg.Done()
			got := m.Map(vad.TagSad, stormy)
			if len(got.Strategy.PriorityTechniques) != 9 {
				t.Errorf("stormy call priorities = %v", got.Strategy.PriorityTechniques)
			}
		}()
	}
	wg.Wait()
}
