package core

import "math"

// NullableFloat returns nil for NaN and infinities so that undefined
// statistics encode as JSON null instead of failing the encoder
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
