// Package modality defines the capability interface implemented by the face,
// audio and text adapters and a collector that runs them for one request.
package modality

import (
	"context"
	"errors"
	"strings"

	"github.com/justestif/go-affect-fusion/internal/fusion"
)

// ErrNoInput is returned by an adapter asked to estimate without its payload.
var ErrNoInput = errors.New("no input for modality")

// Input carries the raw payloads of one request. Binary payloads are base64.
type Input struct {
	FaceImage string
	Audio     string
	Text      string
}

// Has reports whether the payload for m is present.
func (in Input) Has(m fusion.Modality) bool {
	switch m {
	case fusion.Face:
		return in.FaceImage != ""
	case fusion.Audio:
		return in.Audio != ""
	case fusion.Text:
		return in.Text != ""
	default:
		return false
	}
}

// Observation is an adapter's answer for one request.
type Observation struct {
	Modality fusion.Modality
	Estimate fusion.Estimate
	// Detail is the adapter-specific payload returned to API clients.
	Detail any
	// Transcript is set by the audio adapter when speech was recognised.
	Transcript string
	// Err is set when the adapter failed; Estimate.Available is then false.
	Err error
	// Skipped is true when the request carried no payload for the modality.
	Skipped bool
}

// Unavailable builds an observation for a modality that contributed nothing.
func Unavailable(m fusion.Modality, err error) *Observation {
	return &Observation{
		Modality: m,
		Estimate: fusion.Estimate{Available: false},
		Err:      err,
		Skipped:  err == nil,
	}
}

// EstimatePtr returns the estimate for fusion, or nil when unavailable.
func (o *Observation) EstimatePtr() *fusion.Estimate {
	if o == nil || !o.Estimate.Available {
		return nil
	}
	est := o.Estimate
	return &est
}

// Available reports whether the observation contributes to fusion.
func (o *Observation) Available() bool {
	return o != nil && o.Estimate.Available
}

// Estimator is implemented by every modality adapter.
type Estimator interface {
	Modality() fusion.Modality
	Estimate(ctx context.Context, in Input) (*Observation, error)
}

// StripDataURL removes a "data:<mime>;base64," prefix if present.
func StripDataURL(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
