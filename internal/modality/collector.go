package modality

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/metrics"
)

// DefaultTimeout bounds each adapter call.
const DefaultTimeout = 20 * time.Second

// Collection holds one observation per modality. None of the fields is nil
// after Collect.
type Collection struct {
	Face  *Observation
	Audio *Observation
	Text  *Observation
}

// Estimates returns the fusion inputs in face, audio, text order.
func (c Collection) Estimates() (face, audio, text *fusion.Estimate) {
	return c.Face.EstimatePtr(), c.Audio.EstimatePtr(), c.Text.EstimatePtr()
}

// Get returns the observation for m.
func (c Collection) Get(m fusion.Modality) *Observation {
	switch m {
	case fusion.Face:
		return c.Face
	case fusion.Audio:
		return c.Audio
	case fusion.Text:
		return c.Text
	default:
		return nil
	}
}

// Collector runs the configured estimators for a request.
type Collector struct {
	estimators map[fusion.Modality]Estimator
	timeout    time.Duration
	logger     zerolog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithTimeout sets the per-adapter timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the collector's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Collector) {
		c.logger = l
	}
}

// NewCollector creates a collector over the given estimators. Nil estimators
// are ignored; a modality without an estimator is always unavailable.
func NewCollector(estimators []Estimator, opts ...Option) *Collector {
	c := &Collector{
		estimators: make(map[fusion.Modality]Estimator),
		timeout:    DefaultTimeout,
		logger:     zerolog.Nop(),
	}
	for _, e := range estimators {
		if e != nil {
			c.estimators[e.Modality()] = e
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an estimator is configured for m.
func (c *Collector) Enabled(m fusion.Modality) bool {
	_, ok := c.estimators[m]
	return ok
}

// Collect runs face in parallel with audio. When the request has no text the
// audio transcript is handed to the text adapter. Adapter failures become
// unavailable observations; Collect itself never fails.
func (c *Collector) Collect(ctx context.Context, in Input) Collection {
	var col Collection
	var g errgroup.Group

	g.Go(func() error {
		col.Face = c.Run(ctx, fusion.Face, in)
		return nil
	})
	g.Go(func() error {
		col.Audio = c.Run(ctx, fusion.Audio, in)
		textIn := in
		if textIn.Text == "" && col.Audio.Transcript != "" {
			textIn.Text = col.Audio.Transcript
		}
		col.Text = c.Run(ctx, fusion.Text, textIn)
		return nil
	})

	_ = g.Wait()
	return col
}

// Run invokes a single adapter under the collector's timeout.
func (c *Collector) Run(ctx context.Context, m fusion.Modality, in Input) *Observation {
	est, ok := c.estimators[m]
	if !ok || !in.Has(m) {
		metrics.RecordModality(string(m), metrics.OutcomeSkipped)
		return Unavailable(m, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	obs, err := est.Estimate(ctx, in)
	metrics.ObserveAdapter(string(m), time.Since(start))

	if err == nil && obs == nil {
		err = errors.New("adapter returned no observation")
	}
	if err != nil {
		metrics.RecordModality(string(m), metrics.OutcomeError)
		c.logger.Warn().Err(err).Str("modality", string(m)).Msg("modality unavailable")
		return Unavailable(m, err)
	}

	obs.Modality = m
	metrics.RecordModality(string(m), metrics.OutcomeAvailable)
	return obs
}
