package testkit

import (
	"context"
	"math/rand"

	"gostreak/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	schedules ScheduleGeneratorConfig
}

// NewTestKit creates a new test kit instance with synthetic data
func NewTestKit() (*TestKit, error) {
	return &TestKit{schedules: DefaultScheduleConfig()}, nil
}

// NewTestKitWithConfig creates a test kit whose schedules follow config
func NewTestKitWithConfig(config ScheduleGeneratorConfig) (*TestKit, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TestKit{schedules: config}, nil
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return &RNGAdapter{}
}

// ScheduleAdapter returns a synthetic schedule source
func (t *TestKit) ScheduleAdapter() ports.SchedulePort {
	return NewScheduleGenerator(t.schedules)
}

// RNGAdapter implements the RNGPort interface with math/rand sources
type RNGAdapter struct{}

// Stream creates a deterministic RNG stream for one scope/stage/key combination
func (r *RNGAdapter) Stream(ctx context.Context, scope, stageName, key string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	for _, part := range [3]string{scope, stageName, key} {
		seed = seed*1000003 ^ int64(hashString(part))
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
