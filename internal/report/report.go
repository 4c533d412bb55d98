// Package report renders an analysis as a self-contained HTML document.
package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/justestif/go-affect-fusion/internal/advice"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/modality/audio"
	"github.com/justestif/go-affect-fusion/internal/modality/face"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// ContentType is the media type of rendered reports.
const ContentType = "text/html; charset=utf-8"

// maxTranscript is the number of transcript runes shown in a report.
const maxTranscript = 50

// Row is one label/value line of a modality table.
type Row struct {
	Label string
	Value string
}

// Section describes one modality in the report.
type Section struct {
	Title     string
	Available bool
	Error     string
	VAD       vad.Triple
	Rows      []Row
}

// Data is everything a report shows.
type Data struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	Fusion     fusion.Result
	Intensity  float64
	Modalities []Section
	Strategy   *strategy.Result
	Advice     *advice.Advice
}

// Reliability summarises how many modalities backed the fusion.
func (d Data) Reliability() string {
	if len(d.Fusion.AvailableModalities) >= 2 {
		return "High"
	}
	return "Moderate"
}

// Report is a rendered document.
type Report struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// Base64 returns the content base64-encoded.
func (r *Report) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Content)
}

// Size returns the content length in bytes.
func (r *Report) Size() int {
	return len(r.Content)
}

// Renderer renders reports from templates.
type Renderer struct {
	templates *Templates
	now       func() time.Time
}

// NewRenderer loads templates from templatesFS.
func NewRenderer(templatesFS fs.FS) (*Renderer, error) {
	t, err := NewTemplates(templatesFS)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t, now: time.Now}, nil
}

// Render renders d. Missing title and timestamp are filled in.
func (r *Renderer) Render(d Data) (*Report, error) {
	if d.Title == "" {
		d.Title = "Multimodal Emotion Analysis Report"
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now()
	}

	var buf bytes.Buffer
	if err := r.templates.Render(&buf, "report", d); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	return &Report{
		Filename:    fmt.Sprintf("emotion_report_%s.html", d.CreatedAt.Format("20060102_150405")),
		ContentType: ContentType,
		Content:     buf.Bytes(),
	}, nil
}

// Sections builds report sections for the face, audio and text observations
// in that order.
func Sections(col modality.Collection) []Section {
	sections := make([]Section, 0, len(fusion.Modalities))
	for _, m := range fusion.Modalities {
		sections = append(sections, SectionFor(m, col.Get(m)))
	}
	return sections
}

// SectionFor describes a single observation.
func SectionFor(m fusion.Modality, obs *modality.Observation) Section {
	s := Section{Title: sectionTitle(m)}
	if !obs.Available() {
		if obs != nil && obs.Err != nil {
			s.Error = obs.Err.Error()
		}
		return s
	}

	s.Available = true
	s.VAD = obs.Estimate.VAD

	switch d := obs.Detail.(type) {
	case *face.Result:
		s.Rows = []Row{
			{"Primary emotion", d.Emotion},
			{"Confidence", fmt.Sprintf("%.2f", d.Confidence)},
		}
		s.Rows = append(s.Rows, probabilityRows(d.Probabilities)...)
	case *audio.Result:
		s.Rows = []Row{
			{"Transcript", truncate(d.Transcript, maxTranscript)},
			{"Language", d.Language},
			{"Speech rate", fmt.Sprintf("%.2f", d.Prosody.SpeechRate)},
		}
	case *text.Analysis:
		s.Rows = []Row{
			{"Dominant emotion", d.DominantEmotion},
			{"Emotion intensity", fmt.Sprintf("%.2f", d.EmotionIntensity)},
			{"Words analysed", fmt.Sprint(d.TotalWords)},
			{"Words matched", fmt.Sprint(d.MatchedCount)},
		}
	default:
		if obs.Estimate.Label != "" {
			s.Rows = append(s.Rows, Row{"Label", obs.Estimate.Label})
		}
		s.Rows = append(s.Rows, Row{"Confidence", fmt.Sprintf("%.2f", obs.Estimate.Confidence)})
	}
	return s
}

func sectionTitle(m fusion.Modality) string {
	switch m {
	case fusion.Face:
		return "Facial expression"
	case fusion.Audio:
		return "Voice"
	case fusion.Text:
		return "Text"
	default:
		return string(m)
	}
}

func probabilityRows(probs map[string]float64) []Row {
	labels := make([]string, 0, len(probs))
	for l := range probs {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if probs[labels[i]] != probs[labels[j]] {
			return probs[labels[i]] > probs[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) > 3 {
		labels = labels[:3]
	}

	rows := make([]Row, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, Row{"P(" + l + ")", fmt.Sprintf("%.2f", probs[l])})
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
