package report

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/justestif/go-affect-fusion/internal/advice"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/modality/audio"
	"github.com/justestif/go-affect-fusion/internal/modality/face"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
	"github.com/justestif/go-affect-fusion/web"
)

func sampleData() Data {
	final := vad.Triple{Valence: 0.36, Arousal: 0.18, Dominance: 0.54}
	res := fusion.NewEngine().Fuse(
		&fusion.Estimate{VAD: vad.Triple{Valence: 0.6, Arousal: 0.3, Dominance: 0.9}, Confidence: 1, Available: true},
		nil,
		&fusion.Estimate{VAD: vad.Triple{Valence: 0, Arousal: 0, Dominance: 0}, Confidence: 1, Available: true},
	)
	mapped := strategy.NewMapper().Map(res.EmotionTag, final)

	col := modality.Collection{
		Face: &modality.Observation{
			Estimate: fusion.Estimate{VAD: vad.FaceLabels["Happy"], Confidence: 0.9, Available: true, Label: "Happy"},
			Detail:   &face.Result{Emotion: "Happy", Confidence: 0.9, Probabilities: map[string]float64{"Happy": 0.9, "Sad": 0.05, "Angry": 0.03, "Fear": 0.02}},
		},
		Audio: modality.Unavailable(fusion.Audio, errors.New("speech service unavailable")),
		Text: &modality.Observation{
			Estimate: fusion.Estimate{VAD: vad.Neutral, Confidence: 0.5, Available: true},
			Detail:   &text.Analysis{DominantEmotion: "joy", EmotionIntensity: 0.5, TotalWords: 4, MatchedCount: 1},
		},
	}

	return Data{
		ID:         "analysis-1",
		CreatedAt:  time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Fusion:     res,
		Intensity:  vad.Intensity(res.FinalVAD),
		Modalities: Sections(col),
		Strategy:   &mapped,
		Advice:     &advice.Advice{Response: "Take a <slow> breath.", FollowUpQuestion: "What helps you relax?", Model: "canned"},
	}
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer(web.Templates())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	d := sampleData()
	rep, err := r.Render(d)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if rep.ContentType != ContentType {
		t.Errorf("ContentType = %q", rep.ContentType)
	}
	if rep.Filename != "emotion_report_20260304_050607.html" {
		t.Errorf("Filename = %q", rep.Filename)
	}

	html := string(rep.Content)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Multimodal Emotion Analysis Report",
		string(d.Fusion.EmotionTag),
		"face, text",
		"High",
		"Facial expression",
		"P(Happy)",
		"Not available: speech service unavailable",
		d.Strategy.Strategy.Name,
		"Take a &lt;slow&gt; breath.",
		"What helps you relax?",
		"analysis-1",
		"hsl(",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(html, "ZgotmplZ") {
		t.Error("report contains escaped unsafe value")
	}

	decoded, err := base64.StdEncoding.DecodeString(rep.Base64())
	if err != nil || string(decoded) != html {
		t.Errorf("Base64() does not round trip: %v", err)
	}
	if rep.Size() != len(rep.Content) {
		t.Errorf("Size() = %d", rep.Size())
	}
}

func TestRenderer_MinimalData(t *testing.T) {
	r, err := NewRenderer(web.Templates())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	rep, err := r.Render(Data{Fusion: fusion.Failed(errors.New("boom"))})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := string(rep.Content)
	if !strings.Contains(html, "Fusion failed: boom") {
		t.Error("report missing fusion failure")
	}
	if !strings.Contains(html, "Moderate") {
		t.Error("report missing reliability")
	}
	if !strings.Contains(rep.Filename, "20260101_000000") {
		t.Errorf("Filename = %q", rep.Filename)
	}
}

func TestNewTemplates_Errors(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
	}{
		{name: "no pages", fs: fstest.MapFS{"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)}}},
		{name: "bad syntax", fs: fstest.MapFS{"pages/report.html": {Data: []byte(`{{define "content"}}{{.Broken`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTemplates(tt.fs); err == nil {
				t.Error("NewTemplates() error = nil, want error")
			}
		})
	}
}

func TestTemplates_RenderUnknownPage(t *testing.T) {
	tmpl, err := NewTemplates(fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}[{{template "content" .}}]{{end}}`)},
		"pages/hello.html":  {Data: []byte(`{{define "content"}}{{join . "-"}}{{end}}`)},
	})
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}

	var b strings.Builder
	if err := tmpl.Render(&b, "hello", []string{"a", "b"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if b.String() != "[a-b]" {
		t.Errorf("Render() = %q", b.String())
	}
	if err := tmpl.Render(&b, "missing", nil); err == nil {
		t.Error("Render(missing) error = nil")
	}
}

func TestSectionFor(t *testing.T) {
	tests := []struct {
		name      string
		m         fusion.Modality
		obs       *modality.Observation
		available bool
		wantRow   string
	}{
		{name: "nil observation", m: fusion.Face, obs: nil},
		{name: "skipped", m: fusion.Text, obs: modality.Unavailable(fusion.Text, nil)},
		{
			name: "audio transcript truncated",
			m:    fusion.Audio,
			obs: &modality.Observation{
				Estimate: fusion.Estimate{Available: true},
				Detail:   &audio.Result{Transcript: strings.Repeat("x", 60), Language: "en"},
			},
			available: true,
			wantRow:   strings.Repeat("x", 50) + "...",
		},
		{
			name:      "unknown detail",
			m:         fusion.Text,
			obs:       &modality.Observation{Estimate: fusion.Estimate{Available: true, Label: "calm", Confidence: 0.4}},
			available: true,
			wantRow:   "calm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SectionFor(tt.m, tt.obs)
			if s.Available != tt.available {
				t.Errorf("Available = %v, want %v", s.Available, tt.available)
			}
			if tt.wantRow == "" {
				return
			}
			found := false
			for _, r := range s.Rows {
				if r.Value == tt.wantRow {
					found = true
				}
			}
			if !found {
				t.Errorf("Rows = %v, want value %q", s.Rows, tt.wantRow)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := join([]fusion.Modality{fusion.Face, fusion.Text}, ", "); got != "face, text" {
		t.Errorf("join() = %q", got)
	}
	if got := join(nil, ","); got != "" {
		t.Errorf("join(nil) = %q", got)
	}
}
