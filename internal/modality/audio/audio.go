// Package audio adapts the external speech service (transcription plus
// prosody extraction) into a modality estimator.
package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/remote"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// ErrInvalidAudio is returned when the payload is not valid base64.
var ErrInvalidAudio = errors.New("invalid audio data")

// Confidence is the fixed confidence given to prosody estimates.
const Confidence = 0.7

const analyzePath = "/analyze"

// Result is the speech service answer projected onto VAD.
type Result struct {
	Transcript string     `json:"transcript"`
	Language   string     `json:"language"`
	Prosody    Prosody    `json:"prosody_features"`
	VAD        vad.Triple `json:"vad_score"`
}

type analyzeRequest struct {
	Audio string `json:"audio"`
}

type analyzeResponse struct {
	Success    *bool   `json:"success,omitempty"`
	Error      string  `json:"error,omitempty"`
	Transcript string  `json:"transcript"`
	Language   string  `json:"language"`
	Prosody    Prosody `json:"prosody_features"`
}

// Client calls the speech service.
type Client struct {
	remote *remote.Client
}

// NewClient creates an audio client on top of a remote client.
func NewClient(rc *remote.Client) *Client {
	return &Client{remote: rc}
}

// Modality implements modality.Estimator.
func (c *Client) Modality() fusion.Modality {
	return fusion.Audio
}

// Analyze transcribes and scores base64-encoded audio.
func (c *Client) Analyze(ctx context.Context, audioB64 string) (*Result, error) {
	audioB64 = modality.StripDataURL(audioB64)
	if audioB64 == "" {
		return nil, modality.ErrNoInput
	}
	if _, err := base64.StdEncoding.DecodeString(audioB64); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	var resp analyzeResponse
	if err := c.remote.PostJSON(ctx, analyzePath, analyzeRequest{Audio: audioB64}, &resp); err != nil {
		return nil, fmt.Errorf("audio analysis: %w", err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("audio analysis: %s", resp.Error)
	}

	language := resp.Language
	if language == "" {
		language = "unknown"
	}

	return &Result{
		Transcript: resp.Transcript,
		Language:   language,
		Prosody:    resp.Prosody,
		VAD:        ProsodyToVAD(resp.Prosody),
	}, nil
}

// Estimate implements modality.Estimator.
func (c *Client) Estimate(ctx context.Context, in modality.Input) (*modality.Observation, error) {
	res, err := c.Analyze(ctx, in.Audio)
	if err != nil {
		return nil, err
	}
	return &modality.Observation{
		Modality: fusion.Audio,
		Estimate: fusion.Estimate{
			VAD:        res.VAD,
			Confidence: Confidence,
			Available:  true,
		},
		Detail:     res,
		Transcript: res.Transcript,
	}, nil
}

// Ping checks the speech service's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.remote.Ping(ctx, "/health")
}
