package bandit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectRequiresArms(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	_, err := s.Select(nil)
	require.Error(t, err)
}

func TestSelectSingleArm(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	got, err := s.Select([]Arm{{Name: "only", Alpha: 1, Beta: 1}})
	require.NoError(t, err)
	require.Equal(t, "only", got)
}

func TestSelectDeterministicUnderSeed(t *testing.T) {
	arms := []Arm{
		{Name: "balanced", Alpha: 3, Beta: 3},
		{Name: "new-heavy", Alpha: 2, Beta: 4},
		{Name: "review-heavy", Alpha: 4, Beta: 2},
	}

	a := New(rand.New(rand.NewSource(7)))
	b := New(rand.New(rand.NewSource(7)))
	for i := 0; i < 100; i++ {
		x, err := a.Select(arms)
		require.NoError(t, err)
		y, err := b.Select(arms)
		require.NoError(t, err)
		require.Equal(t, x, y, "same seed must give same choice at step %d", i)
	}
}

// TestConvergence: after many successes for A and failures for B, Thompson
// sampling picks A with probability approaching 1.
func TestConvergence(t *testing.T) {
	arms := []Arm{
		{Name: "a-strong", Alpha: 101, Beta: 3},  // ~100 successes
		{Name: "b-weak", Alpha: 3, Beta: 101},    // ~100 failures
	}

	s := New(rand.New(rand.NewSource(42)))
	const trials = 2000
	wins := 0
	for i := 0; i < trials; i++ {
		got, err := s.Select(arms)
		require.NoError(t, err)
		if got == "a-strong" {
			wins++
		}
	}
	require.Greater(t, float64(wins)/trials, 0.99, "strong arm should dominate")
}

func TestUniformPriorExploresBoth(t *testing.T) {
	arms := []Arm{
		{Name: "x"}, // zero counts fall back to Beta(1,1)
		{Name: "y"},
	}

	s := New(rand.New(rand.NewSource(3)))
	seen := map[string]int{}
	for i := 0; i < 500; i++ {
		got, err := s.Select(arms)
		require.NoError(t, err)
		seen[got]++
	}
	require.Greater(t, seen["x"], 100, "uniform prior should explore both arms")
	require.Greater(t, seen["y"], 100)
}

func TestSampleBetaBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for _, ab := range [][2]float64{{1, 1}, {0.5, 0.5}, {2, 5}, {50, 2}} {
		for i := 0; i < 200; i++ {
			x := SampleBeta(rng, ab[0], ab[1])
			require.GreaterOrEqual(t, x, 0.0)
			require.LessOrEqual(t, x, 1.0)
		}
	}
}
