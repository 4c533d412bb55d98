// Package analysis runs the multimodal pipeline: collect modality estimates,
// fuse them, map the result to a strategy, generate advice and render a
// report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/justestif/go-affect-fusion/internal/advice"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/metrics"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/report"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Common errors.
var (
	// ErrModalityDisabled is returned when no adapter is configured for a modality.
	ErrModalityDisabled = errors.New("modality not configured")

	// ErrReportsDisabled is returned by Render when no renderer is configured.
	ErrReportsDisabled = errors.New("report rendering not configured")
)

// Pinger checks an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Request is one multimodal analysis request.
type Request struct {
	Input   modality.Input
	Context string
}

// Analysis is the outcome of the full pipeline.
type Analysis struct {
	ID           string
	CreatedAt    time.Time
	Context      string
	Observations modality.Collection
	Fusion       fusion.Result
	Intensity    float64

	// NearestFaceLabel is the facial expression whose prototype lies closest
	// to the fused point.
	NearestFaceLabel string
	Strategy         strategy.Result
	Advice           *advice.Advice
	Report           *report.Report
}

// ReportData converts the analysis for rendering.
func (a *Analysis) ReportData() report.Data {
	st := a.Strategy
	return report.Data{
		ID:         a.ID,
		CreatedAt:  a.CreatedAt,
		Fusion:     a.Fusion,
		Intensity:  a.Intensity,
		Modalities: report.Sections(a.Observations),
		Strategy:   &st,
		Advice:     a.Advice,
	}
}

// Health reports dependency availability.
type Health struct {
	Services     map[string]bool
	LexiconWords int
}

// Service wires the pipeline stages together.
type Service struct {
	collector *modality.Collector
	engine    *fusion.Engine
	mapper    *strategy.Mapper
	advisor   advice.Generator
	renderer  *report.Renderer
	lexicon   *text.Lexicon
	pingers   map[string]Pinger
	render    bool
	logger    zerolog.Logger
	newID     func() string
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEngine sets the fusion engine.
func WithEngine(e *fusion.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithAdvisor sets the advice generator.
func WithAdvisor(g advice.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.advisor = g
		}
	}
}

// WithRenderer enables report rendering. When render is false the renderer
// only serves explicit Render calls.
func WithRenderer(r *report.Renderer, render bool) Option {
	return func(s *Service) {
		s.renderer = r
		s.render = render && r != nil
	}
}

// WithLexicon records the text lexicon for health reporting.
func WithLexicon(l *text.Lexicon) Option {
	return func(s *Service) {
		s.lexicon = l
	}
}

// WithPinger registers a dependency health check under name.
func WithPinger(name string, p Pinger) Option {
	return func(s *Service) {
		if p != nil {
			s.pingers[name] = p
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l.With().Str("component", "analysis").Logger()
	}
}

// New creates a service around collector.
func New(collector *modality.Collector, opts ...Option) *Service {
	s := &Service{
		collector: collector,
		engine:    fusion.NewEngine(),
		mapper:    strategy.NewMapper(),
		advisor:   advice.NewCannedGenerator(),
		pingers:   make(map[string]Pinger),
		logger:    zerolog.Nop(),
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
	if s.collector == nil {
		s.collector = modality.NewCollector(nil)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lexicon != nil {
		metrics.LexiconWords.Set(float64(s.lexicon.Len()))
	}
	return s
}

// Analyze runs every stage for req. Stage failures degrade the result
// instead of failing it; only a cancelled context returns an error.
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	a := &Analysis{
		ID:        s.newID(),
		CreatedAt: s.now(),
		Context:   req.Context,
	}

	a.Observations = s.collector.Collect(ctx, req.Input)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.Fusion, a.Intensity = s.Fuse(a.Observations.Estimates())
	a.NearestFaceLabel = vad.NearestLabel(a.Fusion.FinalVAD, vad.FaceLabels)
	a.Strategy = s.MapStrategy(a.Fusion.EmotionTag, a.Fusion.FinalVAD)

	adv, err := s.Advise(ctx, advice.Request{
		Tag:      a.Fusion.EmotionTag,
		VAD:      a.Fusion.FinalVAD,
		Context:  req.Context,
		Strategy: &a.Strategy,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error().Err(err).Str("analysis_id", a.ID).Msg("advice generation failed")
	}
	a.Advice = adv

	if s.render {
		rep, err := s.Render(a.ReportData())
		if err != nil {
			metrics.RecordFailure("report")
			s.logger.Error().Err(err).Str("analysis_id", a.ID).Msg("report rendering failed")
		}
		a.Report = rep
	}

	metrics.RecordAnalysis(string(a.Fusion.EmotionTag))
	s.logger.Info().
		Str("analysis_id", a.ID).
		Str("emotion_tag", string(a.Fusion.EmotionTag)).
		Strs("modalities", modalityNames(a.Fusion.AvailableModalities)).
		Float64("intensity", a.Intensity).
		Msg("analysis complete")

	return a, nil
}

// Estimate runs a single modality adapter.
func (s *Service) Estimate(ctx context.Context, m fusion.Modality, in modality.Input) (*modality.Observation, error) {
	if !s.collector.Enabled(m) {
		return nil, fmt.Errorf("%s: %w", m, ErrModalityDisabled)
	}
	obs := s.collector.Run(ctx, m, in)
	if obs.Err != nil {
		return obs, obs.Err
	}
	return obs, nil
}

// Fuse combines estimates and returns the fusion result with its intensity.
func (s *Service) Fuse(face, audio, txt *fusion.Estimate) (fusion.Result, float64) {
	res := s.engine.Fuse(face, audio, txt)
	if !res.Success {
		metrics.RecordFailure("fusion")
		s.logger.Error().Str("error", res.Error).Msg("fusion failed")
	}
	return res, vad.Intensity(res.FinalVAD)
}

// MapStrategy maps a tag and VAD point to a strategy.
func (s *Service) MapStrategy(tag vad.Tag, t vad.Triple) strategy.Result {
	res := s.mapper.Map(tag, t)
	if !res.Success {
		metrics.RecordFailure("strategy")
		s.logger.Error().Str("error", res.Error).Str("emotion_tag", string(tag)).Msg("strategy mapping failed")
	}
	return res
}

// Advise generates advice for req.
func (s *Service) Advise(ctx context.Context, req advice.Request) (*advice.Advice, error) {
	a, err := s.advisor.Advise(ctx, req)
	if err != nil {
		metrics.RecordFailure("advice")
		return nil, err
	}
	return a, nil
}

// Ask generates the next conversation question.
func (s *Service) Ask(ctx context.Context, req advice.Request) (*advice.Question, error) {
	q, err := s.advisor.Ask(ctx, req)
	if err != nil {
		metrics.RecordFailure("question")
		return nil, err
	}
	return q, nil
}

// Render renders a report.
func (s *Service) Render(d report.Data) (*report.Report, error) {
	if s.renderer == nil {
		return nil, ErrReportsDisabled
	}
	if d.ID == "" {
		d.ID = s.newID()
	}
	return s.renderer.Render(d)
}

// Health pings every registered dependency.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{Services: make(map[string]bool, len(s.pingers)+1)}
	for name, p := range s.pingers {
		err := p.Ping(ctx)
		if err != nil {
			s.logger.Debug().Err(err).Str("service", name).Msg("health check failed")
		}
		h.Services[name] = err == nil
	}
	if s.lexicon != nil {
		h.LexiconWords = s.lexicon.Len()
	}
	h.Services["text"] = h.LexiconWords > 0
	return h
}

// Enabled reports whether an adapter is configured for m.
func (s *Service) Enabled(m fusion.Modality) bool {
	return s.collector.Enabled(m)
}

func modalityNames(ms []fusion.Modality) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = string(m)
	}
	return names
}
