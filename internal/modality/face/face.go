// Package face adapts the external facial expression classifier into a
// modality estimator.
package face

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/remote"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// Sentinel errors.
var (
	// ErrInvalidImage is returned when the payload is not a decodable image.
	ErrInvalidImage = errors.New("invalid image data")

	// ErrNoFace is returned when the classifier found no face in the image.
	ErrNoFace = errors.New("no face detected")
)

const predictPath = "/predict"

// Prediction is the classifier's answer.
type Prediction struct {
	Emotion       string             `json:"emotion"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Result is a prediction projected onto VAD.
type Result struct {
	Emotion       string             `json:"emotion"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	VAD           vad.Triple         `json:"vad_score"`
}

type predictRequest struct {
	Image string `json:"image"`
}

type predictResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Prediction
}

// Client calls the face classifier service.
type Client struct {
	remote *remote.Client
}

// NewClient creates a face client on top of a remote client.
func NewClient(rc *remote.Client) *Client {
	return &Client{remote: rc}
}

// Modality implements modality.Estimator.
func (c *Client) Modality() fusion.Modality {
	return fusion.Face
}

// Analyze classifies the face in a base64-encoded image.
func (c *Client) Analyze(ctx context.Context, imageB64 string) (*Result, error) {
	if imageB64 == "" {
		return nil, modality.ErrNoInput
	}
	if _, err := base64.StdEncoding.DecodeString(modality.StripDataURL(imageB64)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	var resp predictResponse
	err := c.remote.PostJSON(ctx, predictPath, predictRequest{Image: modality.StripDataURL(imageB64)}, &resp)
	if err != nil {
		return nil, classify(err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, classify(&remote.StatusError{StatusCode: 200, Message: resp.Error})
	}

	if resp.Emotion == "" {
		return nil, fmt.Errorf("face service returned no emotion")
	}
	triple, _ := vad.LabelVAD(vad.FaceLabels, resp.Emotion)

	return &Result{
		Emotion:       resp.Emotion,
		Confidence:    resp.Confidence,
		Probabilities: resp.Probabilities,
		VAD:           triple,
	}, nil
}

// Estimate implements modality.Estimator.
func (c *Client) Estimate(ctx context.Context, in modality.Input) (*modality.Observation, error) {
	res, err := c.Analyze(ctx, in.FaceImage)
	if err != nil {
		return nil, err
	}
	return &modality.Observation{
		Modality: fusion.Face,
		Estimate: fusion.Estimate{
			VAD:        res.VAD,
			Confidence: res.Confidence,
			Available:  true,
			Label:      res.Emotion,
		},
		Detail: res,
	}, nil
}

// Ping checks the classifier's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.remote.Ping(ctx, "/health")
}

// classify maps service error messages onto sentinel errors.
func classify(err error) error {
	var se *remote.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("face analysis: %w", err)
	}
	msg := strings.ToLower(se.Message)
	switch {
	case strings.Contains(msg, "no face"):
		return ErrNoFace
	case strings.Contains(msg, "invalid image"):
		return ErrInvalidImage
	default:
		return fmt.Errorf("face analysis: %w", err)
	}
}
