package advice

import (
	"context"

	"github.com/rs/zerolog"
)

// Fallback tries a primary generator and answers from a secondary one when it
// fails.
type Fallback struct {
	primary   Generator
	secondary Generator
	logger    zerolog.Logger
}

// NewFallback wraps primary with secondary.
func NewFallback(primary, secondary Generator, logger zerolog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "advice").Logger(),
	}
}

// Advise implements Generator.
func (f *Fallback) Advise(ctx context.Context, req Request) (*Advice, error) {
	a, err := f.primary.Advise(ctx, req)
	if err == nil {
		return a, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.logger.Warn().Err(err).Str("emotion_tag", string(req.Tag)).Msg("advice generation failed, using fallback")
	return f.secondary.Advise(ctx, req)
}

// Ask implements Generator.
func (f *Fallback) Ask(ctx context.Context, req Request) (*Question, error) {
	q, err := f.primary.Ask(ctx, req)
	if err == nil {
		return q, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.logger.Warn().Err(err).Str("emotion_tag", string(req.Tag)).Msg("question generation failed, using fallback")
	return f.secondary.Ask(ctx, req)
}
