package dynamo

import (
	"math/rand"
	"time"
)

// NoiseSource draws Gaussian samples for the motion model.
type NoiseSource interface {
	NormFloat64(mean, stddev float64) float64
}

// RandSource is a seeded NoiseSource.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a source with the given seed. Seed 0 seeds from the
// clock.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

// NormFloat64 returns a normally distributed number. A zero stddev returns
// mean exactly without consuming the generator.
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	if stddev == 0 {
		return mean
	}
	return r.rng.NormFloat64()*stddev + mean
}

// NoiseFactory builds a fresh source for one trajectory evaluation.
type NoiseFactory func() NoiseSource

// SeededNoise returns a factory whose sources all start from seed, so every
// evaluation sees the same noise sequence. With seed 0 every source is
// clock-seeded instead.
func SeededNoise(seed int64) NoiseFactory {
	return func() NoiseSource { return NewRandSource(seed) }
}
