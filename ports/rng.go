package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic RNG stream for one trial.
	// The same (scope, stage, key, seed) always yields the same sequence.
	Stream(ctx context.Context, scope, stageName, key string, baseSeed int64) (*rand.Rand, error)
}
