// Package bandit implements Thompson sampling over Beta-distributed beliefs.
// It is pure computation: arms come in with their persisted α/β counts, one
// sample is drawn per arm from an injected RNG, and the best sample wins.
// Persistence of the counts lives in the user store.
package bandit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Arm is one candidate profile with its Beta(α, β) posterior.
// Alpha counts successes, Beta failures; Beta(1, 1) is the uniform prior.
type Arm struct {
	Name  string
	Alpha float64
	Beta  float64
}

// Selector draws Thompson samples from a seedable RNG. Wire a time-seeded
// source in production and a fixed seed under test. Safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Selector around the given RNG source.
func New(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Select samples x ~ Beta(α, β) for every arm and returns the name of the
// arm with the maximum sample. Arms are visited in sorted-name order and
// exact ties keep the earlier arm, so selection is deterministic under a
// seeded RNG. Arms with unset counts fall back to the uniform prior.
func (s *Selector) Select(arms []Arm) (string, error) {
	if len(arms) == 0 {
		return "", fmt.Errorf("bandit: no candidate arms")
	}

	sorted := make([]Arm, len(arms))
	copy(sorted, arms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	s.mu.Lock()
	defer s.mu.Unlock()

	best := ""
	bestSample := math.Inf(-1)
	for _, arm := range sorted {
		a, b := arm.Alpha, arm.Beta
		if a <= 0 {
			a = 1
		}
		if b <= 0 {
			b = 1
		}
		x := SampleBeta(s.rng, a, b)
		if x > bestSample {
			best = arm.Name
			bestSample = x
		}
	}
	return best, nil
}

// SampleBeta draws Beta(a, b) as Ga/(Ga+Gb) from two gamma variates.
func SampleBeta(rng *rand.Rand, a, b float64) float64 {
	x := sampleGamma(rng, a)
	y := sampleGamma(rng, b)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws Gamma(shape, 1) using Marsaglia–Tsang squeeze; shapes
// below 1 are boosted via Gamma(shape+1) * U^(1/shape).
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
