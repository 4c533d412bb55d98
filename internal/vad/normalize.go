package vad

import (
	"encoding/json"
	"math"
)

// Dimension keys used by the JSON wire format.
const (
	KeyValence   = "valence"
	KeyArousal   = "arousal"
	KeyDominance = "dominance"
)

// Normalize converts an untyped mapping into a Triple.
// Numeric values are clamped into [0, 1]; missing, non-numeric or NaN values
// resolve to the neutral center. It never fails.
func Normalize(raw map[string]any) Triple {
	return Triple{
		Valence:   component(raw, KeyValence),
		Arousal:   component(raw, KeyArousal),
		Dominance: component(raw, KeyDominance),
	}
}

func component(raw map[string]any, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return Center
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return Center
	}
	return clamp01(f)
}

// toFloat accepts every Go numeric kind plus json.Number.
// Strings and booleans are not numbers here, matching the wire contract.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
